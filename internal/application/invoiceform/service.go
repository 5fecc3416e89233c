// Package invoiceform orquesta los formularios de factura abiertos: cada uno
// tiene su ledger, su copia del catálogo de la empresa y su escáner.
package invoiceform

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jhoicas/invoice-entry/internal/application/dto"
	"github.com/jhoicas/invoice-entry/internal/application/scanning"
	"github.com/jhoicas/invoice-entry/internal/domain"
	"github.com/jhoicas/invoice-entry/internal/domain/catalog"
	"github.com/jhoicas/invoice-entry/internal/domain/entity"
	"github.com/jhoicas/invoice-entry/internal/domain/ledger"
	"github.com/jhoicas/invoice-entry/internal/domain/repository"
	"github.com/jhoicas/invoice-entry/pkg/logger"
)

// BridgeFactory crea el escáner de un formulario nuevo.
type BridgeFactory func(log *logger.Logger) scanning.Bridge

// Options parámetros de los formularios.
type Options struct {
	// KeepPlaceholderRow: el formulario abre con una fila vacía y quitar la última la limpia.
	KeepPlaceholderRow bool
	// MaxOpenForms límite de formularios abiertos a la vez (<= 0 sin límite).
	MaxOpenForms int
	Scanner      scanning.Config
	StopTimeout  time.Duration
}

// Service registro de formularios abiertos.
type Service struct {
	catalog   repository.CatalogRepository
	newBridge BridgeFactory
	opts      Options
	validate  *validator.Validate
	now       func() time.Time
	log       *logger.Logger

	mu    sync.Mutex
	forms map[string]*Form
}

// NewService construye el servicio.
func NewService(catalogRepo repository.CatalogRepository, newBridge BridgeFactory, opts Options, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		catalog:   catalogRepo,
		newBridge: newBridge,
		opts:      opts,
		validate:  validator.New(),
		now:       time.Now,
		log:       log.Component("invoiceform"),
		forms:     make(map[string]*Form),
	}
}

// Open abre un formulario con el catálogo de la empresa.
func (s *Service) Open(ctx context.Context, companyID, userID string) (*Form, error) {
	if companyID == "" {
		return nil, domain.ErrUnauthorized
	}
	if s.opts.MaxOpenForms > 0 && s.Count() >= s.opts.MaxOpenForms {
		return nil, domain.ErrTooManyForms
	}
	products, err := s.catalog.ListCatalog(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("cargar catálogo: %w", err)
	}

	id := uuid.New().String()
	log := s.log.WithStr("form_id", id)
	policy := ledger.RemovalEmpty
	if s.opts.KeepPlaceholderRow {
		policy = ledger.RemovalKeepPlaceholder
	}
	f := &Form{
		id:        id,
		companyID: companyID,
		userID:    userID,
		openedAt:  s.now(),
		ledger:    ledger.New(ledger.WithRemovalPolicy(policy)),
		matcher:   catalog.NewMatcher(products),
		now:       s.now,
		log:       log,
	}
	if s.opts.KeepPlaceholderRow {
		f.ledger.AddBlank()
	}
	var scanner scanning.Scanner
	if s.newBridge != nil {
		f.bridge = s.newBridge(log)
		scanner = f.bridge
	}
	f.session = scanning.NewSession(scanner, s.opts.Scanner, s.opts.StopTimeout, f.handleDecoded, f.handleScannerError, log)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.MaxOpenForms > 0 && len(s.forms) >= s.opts.MaxOpenForms {
		return nil, domain.ErrTooManyForms
	}
	s.forms[id] = f
	log.Info().Str("company_id", companyID).Str("user_id", userID).Int("catalog", f.matcher.Len()).Msg("formulario abierto")
	return f, nil
}

// Form devuelve el formulario si pertenece a la empresa.
func (s *Service) Form(companyID, id string) (*Form, error) {
	s.mu.Lock()
	f, ok := s.forms[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("formulario %s: %w", id, domain.ErrNotFound)
	}
	if f.companyID != companyID {
		return nil, domain.ErrForbidden
	}
	return f, nil
}

// Close cierra el formulario y libera su cámara.
func (s *Service) Close(ctx context.Context, companyID, id string) error {
	f, err := s.Form(companyID, id)
	if err != nil {
		return err
	}
	s.remove(id)
	f.close(ctx)
	return nil
}

// Submit valida la cabecera, arma el payload y cierra el formulario.
func (s *Service) Submit(ctx context.Context, companyID, id string, in dto.SubmitInvoiceRequest) (*dto.SubmissionResponse, error) {
	f, err := s.Form(companyID, id)
	if err != nil {
		return nil, err
	}
	header, err := s.header(in)
	if err != nil {
		return nil, err
	}
	out, err := f.submit(ctx, header)
	if err != nil {
		return nil, err
	}
	s.remove(id)
	return out, nil
}

// CloseAll cierra todos los formularios. Se usa al apagar el servidor.
func (s *Service) CloseAll(ctx context.Context) {
	s.mu.Lock()
	forms := make([]*Form, 0, len(s.forms))
	for id, f := range s.forms {
		forms = append(forms, f)
		delete(s.forms, id)
	}
	s.mu.Unlock()

	for _, f := range forms {
		f.close(ctx)
	}
	if len(forms) > 0 {
		s.log.Info().Int("forms", len(forms)).Msg("formularios cerrados")
	}
}

// Count cantidad de formularios abiertos.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

func (s *Service) remove(id string) {
	s.mu.Lock()
	delete(s.forms, id)
	s.mu.Unlock()
}

func (s *Service) header(in dto.SubmitInvoiceRequest) (entity.InvoiceHeader, error) {
	if err := s.validate.Struct(in); err != nil {
		return entity.InvoiceHeader{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	date := s.now()
	if in.InvoiceDate != "" {
		d, err := time.Parse(dateLayout, in.InvoiceDate)
		if err != nil {
			return entity.InvoiceHeader{}, fmt.Errorf("%w: invoice_date", domain.ErrInvalidInput)
		}
		date = d
	}
	mode := in.PaymentMode
	if mode == "" {
		mode = entity.PaymentCash
	}
	return entity.InvoiceHeader{
		Date:             date,
		CustomerName:     strings.TrimSpace(in.CustomerName),
		CustomerPhone:    strings.TrimSpace(in.CustomerPhone),
		CustomerAddress:  strings.TrimSpace(in.CustomerAddress),
		CustomerGSTIN:    strings.TrimSpace(in.CustomerGSTIN),
		PaymentMode:      mode,
		PaymentReference: strings.TrimSpace(in.PaymentReference),
		Notes:            strings.TrimSpace(in.Notes),
	}, nil
}
