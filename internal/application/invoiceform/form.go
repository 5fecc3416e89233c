package invoiceform

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-entry/internal/application/dto"
	"github.com/jhoicas/invoice-entry/internal/application/scanning"
	"github.com/jhoicas/invoice-entry/internal/domain"
	"github.com/jhoicas/invoice-entry/internal/domain/catalog"
	"github.com/jhoicas/invoice-entry/internal/domain/entity"
	"github.com/jhoicas/invoice-entry/internal/domain/ledger"
	"github.com/jhoicas/invoice-entry/pkg/logger"
	"github.com/jhoicas/invoice-entry/pkg/money"
)

const recentScans = 20

// ScanEvent resultado de un código leído por cámara o escrito en el fallback manual.
type ScanEvent struct {
	Text      string
	Matched   bool
	ProductID string
	ItemID    string
	Tier      catalog.Tier
	Err       string
	At        time.Time
}

// Form es un formulario de factura abierto. Todas sus operaciones son seguras
// para uso concurrente; los códigos escaneados llegan desde el bucle del puente.
//
// El escáner se detiene siempre sin tener f.mu tomado: la callback de
// decodificación toma f.mu y Stop espera a que esa callback termine.
// Orden de bloqueo: scanMu antes que mu.
type Form struct {
	id        string
	companyID string
	userID    string
	openedAt  time.Time

	mu       sync.Mutex
	ledger   *ledger.Ledger
	matcher  *catalog.Matcher
	discount decimal.Decimal
	tax      decimal.Decimal
	scans    []ScanEvent
	closed   bool

	bridge  scanning.Bridge
	session *scanning.Session
	scanMu  sync.Mutex
	hold    *cameraHold
	now     func() time.Time
	log     *logger.Logger
}

// cameraHold es la cámara tomada con Session.Use. cancel la suelta y done
// recibe el resultado de la liberación.
type cameraHold struct {
	cancel context.CancelFunc
	done   <-chan error
}

// ID identificador del formulario.
func (f *Form) ID() string { return f.id }

// CompanyID empresa dueña del formulario.
func (f *Form) CompanyID() string { return f.companyID }

// AddBlank agrega una fila vacía.
func (f *Form) AddBlank() (*dto.ItemMutationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, domain.ErrFormClosed
	}
	it := f.ledger.AddBlank()
	return f.mutationLocked(&it), nil
}

// QuickAdd resuelve query contra el catálogo y agrega el producto.
// Sin coincidencia devuelve domain.ErrNoMatch junto con la respuesta que ofrece el alta manual.
func (f *Form) QuickAdd(query string) (*dto.AddItemResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, domain.ErrFormClosed
	}
	m, ok := f.matcher.FindByQuery(query)
	if !ok {
		return &dto.AddItemResponse{
			Query:    strings.TrimSpace(query),
			Fallback: "manual",
			Totals:   f.totalsLocked(),
		}, domain.ErrNoMatch
	}
	return f.addProductLocked(m.Product, m.Tier), nil
}

// AddProduct agrega el producto elegido en el selector.
func (f *Form) AddProduct(productID string) (*dto.AddItemResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, domain.ErrFormClosed
	}
	p, ok := f.matcher.ByID(productID)
	if !ok {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	return f.addProductLocked(p, ""), nil
}

// AddManual agrega una fila sin producto. La descripción es obligatoria;
// cantidad vacía se toma como 1.
func (f *Form) AddManual(in dto.ManualItemRequest) (*dto.ItemMutationResponse, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, fmt.Errorf("descripción requerida: %w", domain.ErrInvalidInput)
	}
	qty := decimal.NewFromInt(1)
	if strings.TrimSpace(in.Quantity) != "" {
		qty = f.parse("quantity", in.Quantity)
	}
	price := f.parse("unit_price", in.UnitPrice)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, domain.ErrFormClosed
	}
	it := f.ledger.AddManual(desc, qty, price)
	return f.mutationLocked(&it), nil
}

// UpdateItem cambia los campos presentes de una fila.
func (f *Form) UpdateItem(itemID string, in dto.UpdateItemRequest) (*dto.ItemMutationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, domain.ErrFormClosed
	}
	if _, ok := f.ledger.Get(itemID); !ok {
		return nil, fmt.Errorf("fila %s: %w", itemID, domain.ErrNotFound)
	}
	if in.Description != nil {
		f.ledger.SetDescription(itemID, *in.Description)
	}
	if in.Quantity != nil {
		f.ledger.SetQuantity(itemID, f.parse("quantity", *in.Quantity))
	}
	if in.UnitPrice != nil {
		f.ledger.SetUnitPrice(itemID, f.parse("unit_price", *in.UnitPrice))
	}
	it, _ := f.ledger.Get(itemID)
	return f.mutationLocked(&it), nil
}

// RemoveItem quita la fila.
func (f *Form) RemoveItem(itemID string) (*dto.ItemMutationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, domain.ErrFormClosed
	}
	if !f.ledger.Remove(itemID) {
		return nil, fmt.Errorf("fila %s: %w", itemID, domain.ErrNotFound)
	}
	return f.mutationLocked(nil), nil
}

// SetAdjustments fija descuento e impuesto. Los campos ausentes no cambian.
func (f *Form) SetAdjustments(in dto.AdjustmentsRequest) (*dto.TotalsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, domain.ErrFormClosed
	}
	if in.Discount != nil {
		f.discount = f.parse("discount", *in.Discount)
	}
	if in.Tax != nil {
		f.tax = f.parse("tax", *in.Tax)
	}
	t := f.totalsLocked()
	return &t, nil
}

// Search filtra el catálogo para el selector.
func (f *Form) Search(term string) *dto.ProductListResponse {
	products := f.matcher.FindBySearchTerm(term)
	out := &dto.ProductListResponse{Items: make([]dto.ProductResponse, 0, len(products)), Total: len(products)}
	for _, p := range products {
		out.Items = append(out.Items, toProductResponse(p))
	}
	return out
}

// View foto del formulario.
func (f *Form) View() *dto.FormResponse {
	f.mu.Lock()
	items := f.ledger.Items()
	totals := f.totalsLocked()
	scans := make([]dto.ScanEventResponse, 0, len(f.scans))
	for _, ev := range f.scans {
		scans = append(scans, toScanEventResponse(ev))
	}
	f.mu.Unlock()

	out := &dto.FormResponse{
		ID:          f.id,
		CompanyID:   f.companyID,
		OpenedAt:    f.openedAt,
		CatalogSize: f.matcher.Len(),
		Items:       make([]dto.ItemResponse, 0, len(items)),
		Totals:      totals,
		Scanner:     f.scannerState(false),
		RecentScans: scans,
	}
	for _, it := range items {
		out.Items = append(out.Items, toItemResponse(it))
	}
	return out
}

// SetCameras registra las cámaras que detectó el navegador.
func (f *Form) SetCameras(in dto.CamerasRequest) (*dto.CamerasResponse, error) {
	if f.bridge == nil {
		return nil, domain.ErrCameraUnavailable
	}
	cams := make([]scanning.Camera, 0, len(in.Cameras))
	for _, c := range in.Cameras {
		if strings.TrimSpace(c.ID) == "" {
			continue
		}
		cams = append(cams, scanning.Camera{ID: c.ID, Label: c.Label})
	}
	f.bridge.SetCameras(cams)
	return toCamerasResponse(cams), nil
}

// Cameras lista las cámaras conocidas.
func (f *Form) Cameras(ctx context.Context) (*dto.CamerasResponse, error) {
	cams, err := f.session.Cameras(ctx)
	if err != nil {
		return nil, err
	}
	return toCamerasResponse(cams), nil
}

// StartScanner toma la cámara. Llamarlo con el escáner ya corriendo no hace nada.
func (f *Form) StartScanner(ctx context.Context, cameraID string) (*dto.ScannerStateResponse, error) {
	f.scanMu.Lock()
	defer f.scanMu.Unlock()
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return nil, domain.ErrFormClosed
	}
	if f.hold != nil {
		st := f.scannerState(false)
		return &st, nil
	}
	hold, err := f.acquire(ctx, strings.TrimSpace(cameraID))
	if err != nil {
		f.recordError(err)
		return nil, err
	}
	f.hold = hold
	st := f.scannerState(true)
	return &st, nil
}

// acquire toma la cámara dentro de Session.Use y la retiene hasta que se
// cancele la toma. La toma no depende del contexto del pedido que la inició.
func (f *Form) acquire(ctx context.Context, cameraID string) (*cameraHold, error) {
	holdCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	acquired := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- f.session.Use(holdCtx, cameraID, func(ctx context.Context) error {
			close(acquired)
			<-ctx.Done()
			return nil
		})
	}()
	select {
	case <-acquired:
		return &cameraHold{cancel: cancel, done: done}, nil
	case err := <-done:
		cancel()
		return nil, err
	}
}

// release suelta la cámara y espera a que Use la libere, o hasta que venza ctx.
// No se llama con f.mu tomado.
func (f *Form) release(ctx context.Context) (released bool, err error) {
	f.scanMu.Lock()
	defer f.scanMu.Unlock()
	if f.hold == nil {
		return false, nil
	}
	hold := f.hold
	f.hold = nil
	hold.cancel()
	select {
	case err = <-hold.done:
		return true, err
	case <-ctx.Done():
		return true, ctx.Err()
	}
}

// StopScanner libera la cámara. Llamarlo con el escáner detenido no hace nada.
func (f *Form) StopScanner(ctx context.Context) (*dto.ScannerStateResponse, error) {
	stopped, err := f.release(ctx)
	if err != nil {
		return nil, err
	}
	st := f.scannerState(stopped)
	return &st, nil
}

// PushFrame entrega un texto decodificado por la cámara del navegador.
// El alta ocurre en el bucle del puente; el resultado aparece en RecentScans.
func (f *Form) PushFrame(text string) (*dto.DecodeResponse, error) {
	if f.bridge == nil {
		return nil, domain.ErrCameraUnavailable
	}
	accepted, err := f.bridge.Push(text)
	if err != nil {
		return nil, err
	}
	return &dto.DecodeResponse{Accepted: accepted}, nil
}

// ReportScannerError registra un error de cámara informado por el navegador.
func (f *Form) ReportScannerError(message string) {
	if f.bridge != nil && f.session.Running() {
		f.bridge.ReportError(message)
		return
	}
	f.recordError(fmt.Errorf("%w: %s", domain.ErrCameraUnavailable, strings.TrimSpace(message)))
}

// ManualBarcode es el fallback sin cámara: el código escrito sigue el mismo
// camino que uno escaneado, pero la respuesta es inmediata.
func (f *Form) ManualBarcode(code string) (*dto.AddItemResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, domain.ErrFormClosed
	}
	out, matched := f.scanLocked(code)
	if !matched {
		return out, domain.ErrNoMatch
	}
	return out, nil
}

// handleDecoded corre en el bucle del puente, de a un código por vez.
func (f *Form) handleDecoded(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.scanLocked(text)
}

func (f *Form) handleScannerError(err error) {
	f.log.Warn().Err(err).Msg("error de cámara")
	f.recordError(err)
}

// submit arma el payload final y cierra el formulario. Las filas sin
// descripción no se envían y los totales se recalculan sin ellas.
func (f *Form) submit(ctx context.Context, header entity.InvoiceHeader) (*dto.SubmissionResponse, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, domain.ErrFormClosed
	}
	var items []entity.LineItem
	for _, it := range f.ledger.Items() {
		it.Description = strings.TrimSpace(it.Description)
		if it.Description == "" {
			continue
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		f.mu.Unlock()
		return nil, fmt.Errorf("la factura no tiene filas con descripción: %w", domain.ErrInvalidInput)
	}
	totals := ledger.ComputeTotals(items, f.discount, f.tax)
	f.closed = true
	f.mu.Unlock()

	f.releaseScanner(ctx)
	f.log.Info().Int("items", len(items)).Str("total", money.Format(totals.Total)).Msg("formulario enviado")
	return toSubmissionResponse(f.id, entity.InvoiceSubmission{
		Header:   header,
		Items:    items,
		Subtotal: totals.Subtotal,
		Discount: totals.Discount,
		Tax:      totals.Tax,
		Total:    totals.Total,
	}), nil
}

// close marca el formulario como cerrado y libera la cámara. Idempotente.
func (f *Form) close(ctx context.Context) {
	f.mu.Lock()
	already := f.closed
	f.closed = true
	f.mu.Unlock()
	if !already {
		f.log.Debug().Msg("formulario cerrado")
	}
	f.releaseScanner(ctx)
}

func (f *Form) releaseScanner(ctx context.Context) {
	if _, err := f.release(ctx); err != nil {
		f.log.Warn().Err(err).Msg("liberar cámara al cerrar")
	}
}

func (f *Form) scanLocked(text string) (*dto.AddItemResponse, bool) {
	text = strings.TrimSpace(text)
	m, ok := f.matcher.FindByQuery(text)
	if !ok {
		f.pushScanLocked(ScanEvent{Text: text, At: f.now()})
		f.log.Debug().Str("text", text).Msg("código sin coincidencia")
		return &dto.AddItemResponse{
			Query:    text,
			Fallback: "manual",
			Totals:   f.totalsLocked(),
		}, false
	}
	out := f.addProductLocked(m.Product, m.Tier)
	f.pushScanLocked(ScanEvent{
		Text:      text,
		Matched:   true,
		ProductID: m.Product.ID,
		ItemID:    out.Item.ID,
		Tier:      m.Tier,
		At:        f.now(),
	})
	return out, true
}

func (f *Form) addProductLocked(p entity.Product, tier catalog.Tier) *dto.AddItemResponse {
	it, merged := f.ledger.AddFromProduct(p)
	item := toItemResponse(it)
	product := toProductResponse(p)
	out := &dto.AddItemResponse{
		Matched:      true,
		Merged:       merged,
		Tier:         string(tier),
		Item:         &item,
		Product:      &product,
		OutOfStock:   p.OutOfStock(),
		ExceedsStock: !p.OutOfStock() && it.Quantity.GreaterThan(p.StockQuantity),
		Totals:       f.totalsLocked(),
	}
	if out.OutOfStock || out.ExceedsStock {
		f.log.Info().Str("product_id", p.ID).Str("stock", p.StockQuantity.String()).Msg("producto agregado sin stock suficiente")
	}
	return out
}

func (f *Form) pushScanLocked(ev ScanEvent) {
	f.scans = append(f.scans, ev)
	if len(f.scans) > recentScans {
		f.scans = append(f.scans[:0], f.scans[len(f.scans)-recentScans:]...)
	}
}

func (f *Form) recordError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushScanLocked(ScanEvent{Err: err.Error(), At: f.now()})
}

func (f *Form) mutationLocked(it *entity.LineItem) *dto.ItemMutationResponse {
	out := &dto.ItemMutationResponse{Items: f.ledger.Len(), Totals: f.totalsLocked()}
	if it != nil {
		item := toItemResponse(*it)
		out.Item = &item
	}
	return out
}

func (f *Form) totalsLocked() dto.TotalsResponse {
	return toTotalsResponse(f.ledger.ComputeTotals(f.discount, f.tax))
}

func (f *Form) scannerState(changed bool) dto.ScannerStateResponse {
	cfg := f.session.Config()
	return dto.ScannerStateResponse{
		Running:  f.session.Running(),
		Changed:  changed,
		CameraID: f.session.CameraID(),
		FPS:      cfg.FPS,
		QRBox:    cfg.QRBox,
	}
}

// parse convierte una entrada numérica; mal formada o negativa queda en 0.
func (f *Form) parse(field, raw string) decimal.Decimal {
	v, coerced := money.ParseNonNegative(raw)
	if coerced {
		f.log.Debug().Str("field", field).Str("raw", raw).Msg("valor numérico inválido, se usa 0")
	}
	return v
}
