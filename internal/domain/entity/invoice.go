package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medios de pago aceptados en la cabecera.
const (
	PaymentCash   = "CASH"
	PaymentCard   = "CARD"
	PaymentUPI    = "UPI"
	PaymentCredit = "CREDIT"
	PaymentBank   = "BANK"
)

// InvoiceHeader datos de cabecera capturados junto con las filas.
type InvoiceHeader struct {
	Date             time.Time
	CustomerName     string
	CustomerPhone    string
	CustomerAddress  string
	CustomerGSTIN    string
	PaymentMode      string
	PaymentReference string
	Notes            string
}

// InvoiceSubmission es lo que el formulario entrega al servicio que crea la factura.
// Solo incluye filas con descripción; los totales se recalculan sobre esas filas.
type InvoiceSubmission struct {
	Header   InvoiceHeader
	Items    []LineItem
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}
