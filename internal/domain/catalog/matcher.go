// Package catalog resuelve productos a partir de lo que escribe o escanea el usuario.
//
// El mismo Matcher sirve al alta rápida, al selector y al escáner, así las tres
// vías aplican la misma precedencia: código de barras, luego SKU, luego nombre.
// Todas las comparaciones son exactas tras recortar espacios y aplicar case folding.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/invoice-entry/internal/domain/entity"
)

// Tier indica qué campo produjo la coincidencia.
type Tier string

const (
	TierBarcode Tier = "barcode"
	TierSKU     Tier = "sku"
	TierName    Tier = "name"
)

// Match resultado de FindByQuery.
type Match struct {
	Product entity.Product
	Tier    Tier
}

type entry struct {
	name     string
	sku      *string
	barcode  *string
	haystack string
}

// Matcher trabaja sobre una copia inmutable del catálogo; es seguro para lecturas concurrentes.
type Matcher struct {
	products []entity.Product
	entries  []entry
	byID     map[string]int
}

// NewMatcher copia el catálogo y precalcula las claves normalizadas.
func NewMatcher(products []entity.Product) *Matcher {
	m := &Matcher{
		products: make([]entity.Product, len(products)),
		entries:  make([]entry, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	copy(m.products, products)
	for i, p := range m.products {
		e := entry{
			name:    Normalize(p.Name),
			sku:     normalizeOpt(p.SKU),
			barcode: normalizeOpt(p.Barcode),
		}
		parts := []string{e.name}
		for _, s := range []*string{e.sku, e.barcode, normalizeOpt(p.Category)} {
			if s != nil {
				parts = append(parts, *s)
			}
		}
		e.haystack = strings.Join(parts, " ")
		m.entries[i] = e
		if _, dup := m.byID[p.ID]; !dup {
			m.byID[p.ID] = i
		}
	}
	return m
}

// Normalize recorta espacios y aplica case folding Unicode.
func Normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func normalizeOpt(s *string) *string {
	if s == nil {
		return nil
	}
	n := Normalize(*s)
	return &n
}

// FindByQuery devuelve a lo sumo un producto: el primero cuyo código de barras
// coincide; si no hay, el primero por SKU; si no, el primero por nombre.
// Un campo ausente nunca coincide y una consulta vacía no coincide con nada.
func (m *Matcher) FindByQuery(query string) (Match, bool) {
	q := Normalize(query)
	if q == "" {
		return Match{}, false
	}
	for i, e := range m.entries {
		if e.barcode != nil && *e.barcode == q {
			return Match{Product: m.products[i], Tier: TierBarcode}, true
		}
	}
	for i, e := range m.entries {
		if e.sku != nil && *e.sku == q {
			return Match{Product: m.products[i], Tier: TierSKU}, true
		}
	}
	for i, e := range m.entries {
		if e.name == q {
			return Match{Product: m.products[i], Tier: TierName}, true
		}
	}
	return Match{}, false
}

// FindBySearchTerm filtra para el selector: todos los productos cuyo nombre, SKU,
// código de barras o categoría contienen el término. Término vacío devuelve todo.
// Es búsqueda por subcadena, distinta de la coincidencia exacta de FindByQuery.
func (m *Matcher) FindBySearchTerm(term string) []entity.Product {
	t := Normalize(term)
	out := make([]entity.Product, 0, len(m.products))
	for i, e := range m.entries {
		if t == "" || strings.Contains(e.haystack, t) {
			out = append(out, m.products[i])
		}
	}
	return out
}

// ByID busca por id (selector).
func (m *Matcher) ByID(id string) (entity.Product, bool) {
	i, ok := m.byID[id]
	if !ok {
		return entity.Product{}, false
	}
	return m.products[i], true
}

// Len tamaño del catálogo.
func (m *Matcher) Len() int {
	return len(m.products)
}
