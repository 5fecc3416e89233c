// Package ledger mantiene las filas de una factura en edición y recalcula sus totales.
//
// Invariantes:
//
//	line_total = quantity × unit_price   (se calcula en cada lectura, nunca se guarda)
//	subtotal   = Σ line_total
//	total      = subtotal − discount + tax
//
// Ninguna operación falla: los ids desconocidos son no-ops y se informan con false.
// El Ledger no es seguro para uso concurrente; su dueño serializa el acceso.
package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-entry/internal/domain/entity"
	"github.com/jhoicas/invoice-entry/pkg/money"
)

// RemovalPolicy define qué pasa al quitar la única fila que queda.
type RemovalPolicy int

const (
	// RemovalEmpty: la fila se borra y el ledger puede quedar vacío.
	RemovalEmpty RemovalPolicy = iota
	// RemovalKeepPlaceholder: la última fila se limpia (descripción vacía, cantidad 1, precio 0).
	RemovalKeepPlaceholder
)

// Option configura un Ledger.
type Option func(*Ledger)

// WithRemovalPolicy fija la política de borrado de la última fila.
func WithRemovalPolicy(p RemovalPolicy) Option {
	return func(l *Ledger) { l.policy = p }
}

// WithIDFunc reemplaza el generador de ids de fila (por defecto UUID v4).
func WithIDFunc(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

// Ledger colección ordenada de filas.
type Ledger struct {
	items  []*entity.LineItem
	policy RemovalPolicy
	newID  func() string
}

// New crea un ledger vacío.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		policy: RemovalEmpty,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddBlank agrega una fila vacía: cantidad 1, precio 0, sin producto.
func (l *Ledger) AddBlank() entity.LineItem {
	return l.append(&entity.LineItem{
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.Zero,
	})
}

// AddFromProduct agrega el producto. Si ya hay una fila vinculada a ese producto
// suma 1 a su cantidad (merged = true) en lugar de duplicarla. No valida stock.
func (l *Ledger) AddFromProduct(p entity.Product) (item entity.LineItem, merged bool) {
	if existing := l.findByProduct(p.ID); existing != nil {
		existing.Quantity = existing.Quantity.Add(decimal.NewFromInt(1))
		return *existing, true
	}
	productID := p.ID
	return l.append(&entity.LineItem{
		Description: p.Label(),
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   money.ClampNonNegative(p.UnitPrice),
		ProductID:   &productID,
	}), false
}

// AddManual agrega una fila escrita a mano. Nunca se fusiona con otras.
func (l *Ledger) AddManual(description string, quantity, unitPrice decimal.Decimal) entity.LineItem {
	return l.append(&entity.LineItem{
		Description: description,
		Quantity:    money.ClampNonNegative(quantity),
		UnitPrice:   money.ClampNonNegative(unitPrice),
	})
}

// Remove quita la fila. Con RemovalKeepPlaceholder la única fila restante se limpia.
func (l *Ledger) Remove(id string) bool {
	idx := l.indexOf(id)
	if idx < 0 {
		return false
	}
	if l.policy == RemovalKeepPlaceholder && len(l.items) == 1 {
		it := l.items[0]
		it.Description = ""
		it.Quantity = decimal.NewFromInt(1)
		it.UnitPrice = decimal.Zero
		it.ProductID = nil
		return true
	}
	copy(l.items[idx:], l.items[idx+1:])
	l.items[len(l.items)-1] = nil
	l.items = l.items[:len(l.items)-1]
	return true
}

// SetQuantity cambia la cantidad; negativos se llevan a cero.
func (l *Ledger) SetQuantity(id string, qty decimal.Decimal) bool {
	it := l.find(id)
	if it == nil {
		return false
	}
	it.Quantity = money.ClampNonNegative(qty)
	return true
}

// SetUnitPrice cambia el precio unitario; negativos se llevan a cero.
func (l *Ledger) SetUnitPrice(id string, price decimal.Decimal) bool {
	it := l.find(id)
	if it == nil {
		return false
	}
	it.UnitPrice = money.ClampNonNegative(price)
	return true
}

// SetDescription cambia la descripción. El vínculo al producto se conserva.
func (l *Ledger) SetDescription(id, description string) bool {
	it := l.find(id)
	if it == nil {
		return false
	}
	it.Description = description
	return true
}

// Get devuelve una copia de la fila.
func (l *Ledger) Get(id string) (entity.LineItem, bool) {
	it := l.find(id)
	if it == nil {
		return entity.LineItem{}, false
	}
	return *it, true
}

// Items devuelve copias de las filas en orden.
func (l *Ledger) Items() []entity.LineItem {
	out := make([]entity.LineItem, len(l.items))
	for i, it := range l.items {
		out[i] = *it
	}
	return out
}

// Len cantidad de filas.
func (l *Ledger) Len() int {
	return len(l.items)
}

// ComputeTotals es función pura del estado actual y de los dos escalares.
func (l *Ledger) ComputeTotals(discount, tax decimal.Decimal) entity.Totals {
	return ComputeTotals(l.Items(), discount, tax)
}

// ComputeTotals calcula subtotal y total sobre cualquier conjunto de filas.
func ComputeTotals(items []entity.LineItem, discount, tax decimal.Decimal) entity.Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	return entity.Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal.Sub(discount).Add(tax),
	}
}

func (l *Ledger) append(it *entity.LineItem) entity.LineItem {
	it.ID = l.newID()
	l.items = append(l.items, it)
	return *it
}

func (l *Ledger) indexOf(id string) int {
	for i, it := range l.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) find(id string) *entity.LineItem {
	if i := l.indexOf(id); i >= 0 {
		return l.items[i]
	}
	return nil
}

func (l *Ledger) findByProduct(productID string) *entity.LineItem {
	for _, it := range l.items {
		if it.ProductID != nil && *it.ProductID == productID {
			return it
		}
	}
	return nil
}
