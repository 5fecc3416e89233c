package invoiceform_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-entry/internal/application/dto"
	"github.com/jhoicas/invoice-entry/internal/application/invoiceform"
	"github.com/jhoicas/invoice-entry/internal/application/scanning"
	"github.com/jhoicas/invoice-entry/internal/domain"
	"github.com/jhoicas/invoice-entry/internal/domain/entity"
	"github.com/jhoicas/invoice-entry/internal/infrastructure/scanner"
	"github.com/jhoicas/invoice-entry/pkg/logger"
)

type fakeCatalog struct {
	products []entity.Product
	err      error
	calls    []string
}

func (f *fakeCatalog) ListCatalog(_ context.Context, companyID string) ([]entity.Product, error) {
	f.calls = append(f.calls, companyID)
	return f.products, f.err
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func str(s string) *string { return &s }

func sampleCatalog() *fakeCatalog {
	return &fakeCatalog{products: []entity.Product{
		{ID: "p1", Name: "Pen", SKU: entity.Opt("PEN-01"), Barcode: entity.Opt("111"), UnitPrice: d("9.99"), StockQuantity: d("10")},
		{ID: "p2", Name: "Notebook", SKU: entity.Opt("NB-A5"), UnitPrice: d("3.50"), StockQuantity: d("1")},
		{ID: "p3", Name: "Eraser", Barcode: entity.Opt("333"), UnitPrice: d("0.75"), StockQuantity: d("0")},
	}}
}

func newService(t *testing.T, opts invoiceform.Options) *invoiceform.Service {
	t.Helper()
	svc := invoiceform.NewService(sampleCatalog(), func(log *logger.Logger) scanning.Bridge {
		return scanner.NewBridge(scanner.Config{}, log)
	}, opts, nil)
	t.Cleanup(func() { svc.CloseAll(context.Background()) })
	return svc
}

func openForm(t *testing.T, svc *invoiceform.Service) *invoiceform.Form {
	t.Helper()
	f, err := svc.Open(context.Background(), "c1", "u1")
	require.NoError(t, err)
	return f
}

func TestOpen_ConFilaVacia(t *testing.T) {
	svc := newService(t, invoiceform.Options{KeepPlaceholderRow: true})
	f := openForm(t, svc)

	view := f.View()
	require.Len(t, view.Items, 1)
	assert.Equal(t, "", view.Items[0].Description)
	assert.True(t, view.Items[0].Quantity.Equal(d("1")))
	assert.Equal(t, 3, view.CatalogSize)
	assert.Equal(t, "0.00", view.Totals.TotalDisplay)
}

func TestOpen_SinFilaVacia(t *testing.T) {
	svc := newService(t, invoiceform.Options{})
	f := openForm(t, svc)
	assert.Empty(t, f.View().Items)
}

func TestOpen_ErrorDeCatalogo(t *testing.T) {
	boom := errors.New("db caída")
	svc := invoiceform.NewService(&fakeCatalog{err: boom}, nil, invoiceform.Options{}, nil)

	_, err := svc.Open(context.Background(), "c1", "u1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, svc.Count())
}

func TestOpen_SinEmpresa(t *testing.T) {
	svc := newService(t, invoiceform.Options{})
	_, err := svc.Open(context.Background(), "", "u1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestOpen_Limite(t *testing.T) {
	svc := newService(t, invoiceform.Options{MaxOpenForms: 2})
	openForm(t, svc)
	openForm(t, svc)

	_, err := svc.Open(context.Background(), "c1", "u1")
	assert.ErrorIs(t, err, domain.ErrTooManyForms)
}

func TestForm_OtraEmpresa(t *testing.T) {
	svc := newService(t, invoiceform.Options{})
	f := openForm(t, svc)

	_, err := svc.Form("c2", f.ID())
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Form("c1", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.Form("c1", f.ID())
	require.NoError(t, err)
	assert.Same(t, f, got)
}

func TestClose_QuitaDelRegistro(t *testing.T) {
	svc := newService(t, invoiceform.Options{})
	f := openForm(t, svc)

	require.NoError(t, svc.Close(context.Background(), "c1", f.ID()))
	_, err := svc.Form("c1", f.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.AddBlank()
	assert.ErrorIs(t, err, domain.ErrFormClosed)
}

func TestSubmit_FiltraFilasVaciasYCierra(t *testing.T) {
	svc := newService(t, invoiceform.Options{KeepPlaceholderRow: true})
	f := openForm(t, svc)

	_, err := f.QuickAdd("111")
	require.NoError(t, err)
	_, err = f.QuickAdd("111")
	require.NoError(t, err)
	_, err = f.AddManual(dto.ManualItemRequest{Description: "Servicio", Quantity: "", UnitPrice: "5"})
	require.NoError(t, err)
	_, err = f.SetAdjustments(dto.AdjustmentsRequest{Discount: str("1"), Tax: str("0.5")})
	require.NoError(t, err)

	out, err := svc.Submit(context.Background(), "c1", f.ID(), dto.SubmitInvoiceRequest{
		InvoiceDate:  "2026-10-19",
		CustomerName: "  Ana  ",
		PaymentMode:  entity.PaymentUPI,
	})
	require.NoError(t, err)

	require.Len(t, out.Items, 2)
	assert.Equal(t, "Pen (PEN-01)", out.Items[0].Description)
	assert.True(t, out.Items[0].LineTotal.Equal(d("19.98")))
	assert.True(t, out.Subtotal.Equal(d("24.98")))
	assert.True(t, out.Total.Equal(d("24.48")))
	assert.Equal(t, "2026-10-19", out.InvoiceDate)
	assert.Equal(t, "Ana", out.CustomerName)
	assert.Equal(t, "UPI", out.PaymentMode)

	_, err = svc.Form("c1", f.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmit_ValoresPorDefecto(t *testing.T) {
	svc := newService(t, invoiceform.Options{})
	f := openForm(t, svc)
	_, err := f.AddManual(dto.ManualItemRequest{Description: "Algo", UnitPrice: "2"})
	require.NoError(t, err)

	out, err := svc.Submit(context.Background(), "c1", f.ID(), dto.SubmitInvoiceRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCash, out.PaymentMode)
	_, err = time.Parse("2006-01-02", out.InvoiceDate)
	assert.NoError(t, err)
}

func TestSubmit_CabeceraInvalida(t *testing.T) {
	svc := newService(t, invoiceform.Options{})
	f := openForm(t, svc)
	_, _ = f.AddManual(dto.ManualItemRequest{Description: "Algo"})

	cases := []dto.SubmitInvoiceRequest{
		{PaymentMode: "BITCOIN"},
		{InvoiceDate: "19/10/2026"},
	}
	for i, in := range cases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := svc.Submit(context.Background(), "c1", f.ID(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	_, err := svc.Form("c1", f.ID())
	assert.NoError(t, err, "un envío rechazado no cierra el formulario")
}

func TestSubmit_RecortaDescripciones(t *testing.T) {
	svc := newService(t, invoiceform.Options{KeepPlaceholderRow: true})
	f := openForm(t, svc)
	id := f.View().Items[0].ID
	_, err := f.UpdateItem(id, dto.UpdateItemRequest{Description: str("  Flete a domicilio \t"), UnitPrice: str("3")})
	require.NoError(t, err)
	assert.Equal(t, "  Flete a domicilio \t", f.View().Items[0].Description, "la vista conserva lo escrito")

	out, err := svc.Submit(context.Background(), "c1", f.ID(), dto.SubmitInvoiceRequest{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Flete a domicilio", out.Items[0].Description)
}

func TestSubmit_SinFilas(t *testing.T) {
	svc := newService(t, invoiceform.Options{KeepPlaceholderRow: true})
	f := openForm(t, svc)

	_, err := svc.Submit(context.Background(), "c1", f.ID(), dto.SubmitInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCloseAll_LiberaLasCamaras(t *testing.T) {
	svc := newService(t, invoiceform.Options{StopTimeout: time.Second})
	f := openForm(t, svc)
	_, err := f.SetCameras(dto.CamerasRequest{Cameras: []dto.CameraDTO{{ID: "cam-1"}}})
	require.NoError(t, err)
	_, err = f.StartScanner(context.Background(), "")
	require.NoError(t, err)

	svc.CloseAll(context.Background())
	assert.Equal(t, 0, svc.Count())
	assert.False(t, f.View().Scanner.Running)
}
