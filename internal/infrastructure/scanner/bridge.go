// Package scanner implementa el escáner de un formulario como un puente:
// la librería de cámara corre en el navegador y publica cada código
// decodificado; aquí se filtran repeticiones y se entregan en serie.
package scanner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jhoicas/invoice-entry/internal/application/scanning"
	"github.com/jhoicas/invoice-entry/internal/domain"
	"github.com/jhoicas/invoice-entry/pkg/logger"
)

var _ scanning.Bridge = (*Bridge)(nil)

var (
	errAlreadyRunning = errors.New("escáner ya iniciado")
	errUnknownCamera  = errors.New("cámara desconocida")
)

const frameBuffer = 16

// Config límites del puente.
type Config struct {
	// DecodesPerSecond máximo de códigos aceptados por segundo (<= 0 sin límite).
	DecodesPerSecond float64
	// DuplicateCooldown ignora el mismo texto repetido dentro de esta ventana
	// (la cámara suele leer el mismo código en varios cuadros seguidos).
	DuplicateCooldown time.Duration
}

// Bridge implementa scanning.Bridge.
type Bridge struct {
	mu       sync.Mutex
	cfg      Config
	cameras  []scanning.Camera
	frames   chan string
	cancel   context.CancelFunc
	done     chan struct{}
	limiter  *rate.Limiter
	lastText string
	lastAt   time.Time
	onError  func(error)
	now      func() time.Time
	log      *logger.Logger
}

// NewBridge construye un puente detenido.
func NewBridge(cfg Config, log *logger.Logger) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	return &Bridge{
		cfg: cfg,
		now: time.Now,
		log: log,
	}
}

// SetCameras reemplaza la lista de cámaras que informó el navegador.
func (b *Bridge) SetCameras(cameras []scanning.Camera) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cameras = append([]scanning.Camera(nil), cameras...)
}

// ListCameras devuelve una copia de la lista informada.
func (b *Bridge) ListCameras(_ context.Context) ([]scanning.Camera, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]scanning.Camera(nil), b.cameras...), nil
}

// Start arranca el bucle de entrega. El bucle no depende de ctx: vive hasta Stop.
func (b *Bridge) Start(_ context.Context, cameraID string, _ scanning.Config, onDecode func(string), onError func(error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		return errAlreadyRunning
	}
	if len(b.cameras) > 0 && !b.knownCamera(cameraID) {
		return errUnknownCamera
	}

	limit := rate.Inf
	if b.cfg.DecodesPerSecond > 0 {
		limit = rate.Limit(b.cfg.DecodesPerSecond)
	}
	b.limiter = rate.NewLimiter(limit, 1)
	b.frames = make(chan string, frameBuffer)
	b.done = make(chan struct{})
	b.onError = onError
	b.lastText, b.lastAt = "", time.Time{}

	loopCtx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go b.loop(loopCtx, b.frames, b.done, onDecode)
	return nil
}

func (b *Bridge) loop(ctx context.Context, frames <-chan string, done chan<- struct{}, onDecode func(string)) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-frames:
			if ctx.Err() != nil {
				return
			}
			if onDecode != nil {
				onDecode(text)
			}
		}
	}
}

// Push recibe un texto decodificado. Devuelve accepted = false si se descartó
// por repetido, por límite de ritmo o porque el buffer está lleno.
func (b *Bridge) Push(text string) (bool, error) {
	text = strings.TrimSpace(text)
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel == nil {
		return false, domain.ErrCameraUnavailable
	}
	if text == "" {
		return false, nil
	}
	now := b.now()
	if text == b.lastText && b.cfg.DuplicateCooldown > 0 && now.Sub(b.lastAt) < b.cfg.DuplicateCooldown {
		return false, nil
	}
	if !b.limiter.AllowN(now, 1) {
		return false, nil
	}
	select {
	case b.frames <- text:
		b.lastText, b.lastAt = text, now
		return true, nil
	default:
		b.log.Warn().Str("text", text).Msg("buffer del escáner lleno, código descartado")
		return false, nil
	}
}

// ReportError reenvía un error de cámara informado por el navegador.
func (b *Bridge) ReportError(message string) {
	b.mu.Lock()
	onError := b.onError
	b.mu.Unlock()

	if onError != nil {
		onError(errors.New(strings.TrimSpace(message)))
	}
}

// Stop cancela el bucle y espera a que termine la callback en curso, o hasta que venza ctx.
func (b *Bridge) Stop(ctx context.Context) error {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel = nil
	b.onError = nil
	b.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clear descarta los códigos pendientes y olvida el último leído.
func (b *Bridge) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frames != nil {
	drain:
		for {
			select {
			case <-b.frames:
			default:
				break drain
			}
		}
	}
	b.lastText, b.lastAt = "", time.Time{}
}

// Running indica si el bucle está activo.
func (b *Bridge) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancel != nil
}

func (b *Bridge) knownCamera(id string) bool {
	for _, c := range b.cameras {
		if c.ID == id {
			return true
		}
	}
	return false
}
