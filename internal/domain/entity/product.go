package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Es inmutable para el formulario:
// se carga una vez al abrirlo y nunca se modifica desde aquí.
// SKU, Barcode y Category son opcionales: nil significa ausente, que no es lo mismo que "".
type Product struct {
	ID            string
	CompanyID     string
	Name          string
	SKU           *string
	Barcode       *string
	Category      *string
	UnitPrice     decimal.Decimal
	StockQuantity decimal.Decimal // <= 0 significa sin stock; solo se informa, no se bloquea
}

// OutOfStock indica si el producto no tiene existencias.
func (p Product) OutOfStock() bool {
	return !p.StockQuantity.IsPositive()
}

// Label es la descripción con la que entra a la factura: nombre y, si hay, SKU entre paréntesis.
func (p Product) Label() string {
	if p.SKU == nil || strings.TrimSpace(*p.SKU) == "" {
		return p.Name
	}
	return p.Name + " (" + strings.TrimSpace(*p.SKU) + ")"
}

// Opt construye un campo opcional presente.
func Opt(s string) *string {
	return &s
}

// OptNonEmpty construye un campo opcional que es ausente si s está vacío tras recortar.
// Útil al leer columnas NULL o claves faltantes de archivos de semilla.
func OptNonEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Deref devuelve el valor o "" si está ausente.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
