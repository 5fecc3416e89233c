// Package scanning controla el ciclo de vida del escáner de un formulario.
//
// Start y Stop son idempotentes: una bandera "running" evita el doble inicio o
// la doble detención cuando el usuario abre y cierra el panel rápidamente.
// Use implementa la adquisición con alcance: la cámara siempre se libera al salir.
package scanning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/invoice-entry/internal/domain"
	"github.com/jhoicas/invoice-entry/pkg/logger"
)

// Session guarda el estado del escáner de un formulario.
type Session struct {
	mu          sync.Mutex
	scanner     Scanner
	cfg         Config
	stopTimeout time.Duration
	onDecode    func(string)
	onError     func(error)
	running     bool
	cameraID    string
	log         *logger.Logger
}

// NewSession construye la sesión. scanner puede ser nil: en ese caso Start
// devuelve ErrCameraUnavailable y el formulario sigue con ingreso manual.
func NewSession(
	scanner Scanner,
	cfg Config,
	stopTimeout time.Duration,
	onDecode func(string),
	onError func(error),
	log *logger.Logger,
) *Session {
	if onError == nil {
		onError = func(error) {}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		scanner:     scanner,
		cfg:         cfg,
		stopTimeout: stopTimeout,
		onDecode:    onDecode,
		onError:     onError,
		log:         log,
	}
}

// Running indica si la cámara está tomada.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// CameraID cámara en uso ("" si está detenido).
func (s *Session) CameraID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameraID
}

// Config parámetros de escaneo.
func (s *Session) Config() Config {
	return s.cfg
}

// Cameras lista las cámaras disponibles.
func (s *Session) Cameras(ctx context.Context) ([]Camera, error) {
	if s.scanner == nil {
		return nil, domain.ErrCameraUnavailable
	}
	cams, err := s.scanner.ListCameras(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}
	return cams, nil
}

// Start inicia la cámara indicada, o la primera disponible si cameraID está vacío.
// Si ya estaba corriendo no hace nada y devuelve started = false.
func (s *Session) Start(ctx context.Context, cameraID string) (started bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false, nil
	}
	if s.scanner == nil {
		return false, domain.ErrCameraUnavailable
	}
	if cameraID == "" {
		cams, err := s.scanner.ListCameras(ctx)
		if err != nil {
			return false, fmt.Errorf("%w: listar cámaras: %v", domain.ErrCameraUnavailable, err)
		}
		if len(cams) == 0 {
			return false, fmt.Errorf("%w: no se detectaron cámaras", domain.ErrCameraUnavailable)
		}
		cameraID = cams[0].ID
	}
	if err := s.scanner.Start(ctx, cameraID, s.cfg, s.onDecode, s.onError); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}
	s.running = true
	s.cameraID = cameraID
	s.log.Info().Str("camera_id", cameraID).Msg("escáner iniciado")
	return true, nil
}

// Stop detiene la cámara y espera a que el escáner termine, con el límite stopTimeout.
// Aunque Stop falle la sesión queda marcada como detenida: no se reintenta sobre
// una cámara en estado desconocido.
func (s *Session) Stop(ctx context.Context) (stopped bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false, nil
	}
	if s.stopTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.stopTimeout)
		defer cancel()
	}
	err = s.scanner.Stop(ctx)
	s.scanner.Clear()
	s.running = false
	s.cameraID = ""
	if err != nil {
		s.log.Warn().Err(err).Msg("detener escáner")
		return true, fmt.Errorf("detener escáner: %w", err)
	}
	s.log.Info().Msg("escáner detenido")
	return true, nil
}

// Use toma la cámara, ejecuta fn y la libera siempre al salir, incluso si ctx
// fue cancelado (navegación forzada) o fn devolvió error.
func (s *Session) Use(ctx context.Context, cameraID string, fn func(ctx context.Context) error) (err error) {
	started, err := s.Start(ctx, cameraID)
	if err != nil {
		return err
	}
	if started {
		defer func() {
			_, stopErr := s.Stop(context.WithoutCancel(ctx))
			err = errors.Join(err, stopErr)
		}()
	}
	return fn(ctx)
}
