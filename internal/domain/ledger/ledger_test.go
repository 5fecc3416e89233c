package ledger_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-entry/internal/domain/entity"
	"github.com/jhoicas/invoice-entry/internal/domain/ledger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seqIDs() ledger.Option {
	n := 0
	return ledger.WithIDFunc(func() string {
		n++
		return fmt.Sprintf("row-%d", n)
	})
}

func widget() entity.Product {
	return entity.Product{
		ID:            "1",
		Name:          "Widget",
		SKU:           entity.Opt("W1"),
		Barcode:       entity.Opt("111"),
		UnitPrice:     dec("9.99"),
		StockQuantity: dec("5"),
	}
}

func TestAddBlank(t *testing.T) {
	l := ledger.New(seqIDs())
	it := l.AddBlank()

	assert.Equal(t, "row-1", it.ID)
	assert.Equal(t, "", it.Description)
	assert.True(t, it.Quantity.Equal(dec("1")))
	assert.True(t, it.UnitPrice.IsZero())
	assert.Nil(t, it.ProductID)
	assert.Equal(t, 1, l.Len())
}

func TestAddFromProduct_NuevaFila(t *testing.T) {
	l := ledger.New()
	it, merged := l.AddFromProduct(widget())

	assert.False(t, merged)
	assert.Equal(t, "Widget (W1)", it.Description)
	assert.True(t, it.UnitPrice.Equal(dec("9.99")))
	require.NotNil(t, it.ProductID)
	assert.Equal(t, "1", *it.ProductID)
}

func TestAddFromProduct_SinSKU(t *testing.T) {
	l := ledger.New()
	p := widget()
	p.SKU = nil
	it, _ := l.AddFromProduct(p)
	assert.Equal(t, "Widget", it.Description)
}

func TestAddFromProduct_FusionaEnLugarDeDuplicar(t *testing.T) {
	l := ledger.New()
	first, _ := l.AddFromProduct(widget())
	second, merged := l.AddFromProduct(widget())

	assert.True(t, merged)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, l.Len())
	assert.True(t, second.Quantity.Equal(dec("2")))
}

func TestAddFromProduct_SinStockNoBloquea(t *testing.T) {
	l := ledger.New()
	p := widget()
	p.StockQuantity = decimal.Zero
	_, _ = l.AddFromProduct(p)
	it, _ := l.AddFromProduct(p)
	assert.True(t, it.Quantity.Equal(dec("2")))
}

func TestAddManual_NuncaFusiona(t *testing.T) {
	l := ledger.New()
	a := l.AddManual("Servicio", dec("1"), dec("10"))
	b := l.AddManual("Servicio", dec("1"), dec("10"))

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, l.Len())
	assert.Nil(t, a.ProductID)
}

func TestAddManual_NoFusionaConProducto(t *testing.T) {
	l := ledger.New()
	_ = l.AddManual("Widget (W1)", dec("1"), dec("9.99"))
	_, merged := l.AddFromProduct(widget())
	assert.False(t, merged)
	assert.Equal(t, 2, l.Len())
}

// Escenario: Widget agregado dos veces, descuento 1 e impuesto 0.5.
func TestEscenarioWidget(t *testing.T) {
	l := ledger.New()
	_, _ = l.AddFromProduct(widget())
	it, _ := l.AddFromProduct(widget())

	assert.Equal(t, 1, l.Len())
	assert.Equal(t, "2", it.Quantity.String())
	assert.True(t, it.LineTotal().Equal(dec("19.98")))

	totals := l.ComputeTotals(dec("1"), dec("0.5"))
	assert.True(t, totals.Subtotal.Equal(dec("19.98")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.Total.Equal(dec("19.48")), "total %s", totals.Total)
}

func TestComputeTotals_EsPura(t *testing.T) {
	l := ledger.New()
	_ = l.AddManual("A", dec("3"), dec("1.10"))
	_, _ = l.AddFromProduct(widget())

	first := l.ComputeTotals(dec("0.25"), dec("2"))
	second := l.ComputeTotals(dec("0.25"), dec("2"))
	assert.Equal(t, first, second)
	assert.Equal(t, 2, l.Len())
}

func TestComputeTotals_LedgerVacio(t *testing.T) {
	totals := ledger.New().ComputeTotals(dec("1"), dec("0"))
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.Equal(dec("-1")))
}

func TestRemove_PoliticaVacia(t *testing.T) {
	l := ledger.New()
	it := l.AddBlank()

	assert.True(t, l.Remove(it.ID))
	assert.Equal(t, 0, l.Len())
}

func TestRemove_PoliticaPlaceholder(t *testing.T) {
	l := ledger.New(ledger.WithRemovalPolicy(ledger.RemovalKeepPlaceholder))
	it, _ := l.AddFromProduct(widget())
	_ = l.SetQuantity(it.ID, dec("4"))

	assert.True(t, l.Remove(it.ID))
	require.Equal(t, 1, l.Len())

	got := l.Items()[0]
	assert.Equal(t, it.ID, got.ID)
	assert.Equal(t, "", got.Description)
	assert.True(t, got.Quantity.Equal(dec("1")))
	assert.True(t, got.UnitPrice.IsZero())
	assert.Nil(t, got.ProductID)

	// Tras limpiar, el mismo producto vuelve a crear su propia fila.
	_, merged := l.AddFromProduct(widget())
	assert.False(t, merged)
	assert.Equal(t, 2, l.Len())
}

func TestRemove_PlaceholderConVariasFilasBorra(t *testing.T) {
	l := ledger.New(ledger.WithRemovalPolicy(ledger.RemovalKeepPlaceholder), seqIDs())
	a := l.AddBlank()
	b := l.AddBlank()
	c := l.AddBlank()

	assert.True(t, l.Remove(b.ID))
	items := l.Items()
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, c.ID, items[1].ID)
}

func TestIdDesconocidoEsNoOp(t *testing.T) {
	l := ledger.New()
	_ = l.AddBlank()

	assert.False(t, l.Remove("nope"))
	assert.False(t, l.SetQuantity("nope", dec("2")))
	assert.False(t, l.SetUnitPrice("nope", dec("2")))
	assert.False(t, l.SetDescription("nope", "x"))
	_, ok := l.Get("nope")
	assert.False(t, ok)
	assert.Equal(t, 1, l.Len())
}

func TestSetters_NegativosACero(t *testing.T) {
	l := ledger.New()
	it := l.AddBlank()

	require.True(t, l.SetQuantity(it.ID, dec("-3")))
	require.True(t, l.SetUnitPrice(it.ID, dec("-1")))
	got, _ := l.Get(it.ID)
	assert.True(t, got.Quantity.IsZero())
	assert.True(t, got.UnitPrice.IsZero())
}

func TestSetDescription_ConservaVinculo(t *testing.T) {
	l := ledger.New()
	it, _ := l.AddFromProduct(widget())
	require.True(t, l.SetDescription(it.ID, "Widget azul"))

	_, merged := l.AddFromProduct(widget())
	assert.True(t, merged)
	got, _ := l.Get(it.ID)
	assert.Equal(t, "Widget azul", got.Description)
}

func TestItems_DevuelveCopias(t *testing.T) {
	l := ledger.New()
	it := l.AddBlank()
	items := l.Items()
	items[0].Quantity = dec("99")

	got, _ := l.Get(it.ID)
	assert.True(t, got.Quantity.Equal(dec("1")))
}

// Tras cualquier secuencia de operaciones el subtotal es Σ(cantidad × precio).
func TestInvarianteSubtotal_SecuenciasAleatorias(t *testing.T) {
	catalog := []entity.Product{
		widget(),
		{ID: "2", Name: "Gadget", UnitPrice: dec("0.35"), StockQuantity: dec("0")},
		{ID: "3", Name: "Tornillo", SKU: entity.Opt("T-3"), UnitPrice: dec("12.5"), StockQuantity: dec("100")},
	}
	amounts := []string{"0", "1", "2.5", "3", "0.01", "-4", "7.333"}

	for _, policy := range []ledger.RemovalPolicy{ledger.RemovalEmpty, ledger.RemovalKeepPlaceholder} {
		rng := rand.New(rand.NewSource(42))
		l := ledger.New(ledger.WithRemovalPolicy(policy))

		for step := 0; step < 500; step++ {
			items := l.Items()
			pickID := func() string {
				if len(items) == 0 {
					return "missing"
				}
				return items[rng.Intn(len(items))].ID
			}
			switch rng.Intn(5) {
			case 0:
				l.AddBlank()
			case 1:
				l.AddFromProduct(catalog[rng.Intn(len(catalog))])
			case 2:
				l.Remove(pickID())
			case 3:
				l.SetQuantity(pickID(), dec(amounts[rng.Intn(len(amounts))]))
			case 4:
				l.SetUnitPrice(pickID(), dec(amounts[rng.Intn(len(amounts))]))
			}

			want := decimal.Zero
			for _, it := range l.Items() {
				want = want.Add(it.Quantity.Mul(it.UnitPrice))
				require.False(t, it.Quantity.IsNegative())
				require.False(t, it.UnitPrice.IsNegative())
			}
			got := l.ComputeTotals(decimal.Zero, decimal.Zero)
			require.True(t, got.Subtotal.Equal(want), "step %d: subtotal %s, esperado %s", step, got.Subtotal, want)
			require.True(t, got.Total.Equal(want))
		}
	}
}
