package entity

import "github.com/shopspring/decimal"

// LineItem es una fila de la factura en edición.
// ProductID es solo una clave débil hacia el catálogo; nil para filas manuales.
// El total de línea no se guarda: se calcula en cada lectura con LineTotal.
type LineItem struct {
	ID          string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	ProductID   *string
}

// LineTotal = Quantity × UnitPrice.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Totals resultado del recálculo del formulario.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal // Subtotal - Discount + Tax
}
