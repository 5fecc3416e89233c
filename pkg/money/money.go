// Package money agrupa el parseo tolerante y el formato de importes y cantidades.
//
// Las entradas numéricas del formulario llegan como texto. Un valor vacío o
// mal formado se convierte en cero en vez de devolver un error; ParseLenient
// informa si hubo coerción para que el caller pueda registrarlo.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLenient convierte texto a decimal. Vacío es cero sin coerción;
// texto no numérico es cero con coerced = true.
func ParseLenient(raw string) (value decimal.Decimal, coerced bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, true
	}
	return d, false
}

// ParseNonNegative igual que ParseLenient pero los negativos también se llevan a cero.
func ParseNonNegative(raw string) (value decimal.Decimal, coerced bool) {
	d, coerced := ParseLenient(raw)
	if d.IsNegative() {
		return decimal.Zero, true
	}
	return d, coerced
}

// ClampNonNegative devuelve d, o cero si es negativo.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Format muestra el importe con dos decimales.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
