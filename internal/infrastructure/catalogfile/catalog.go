// Package catalogfile carga el catálogo desde un archivo JSON o YAML (semilla
// de desarrollo o export del sistema de inventario). El formato se elige por extensión.
package catalogfile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/invoice-entry/internal/domain"
	"github.com/jhoicas/invoice-entry/internal/domain/entity"
	"github.com/jhoicas/invoice-entry/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

type document struct {
	Products []record `json:"products" yaml:"products"`
}

type record struct {
	ID            string          `json:"id" yaml:"id"`
	CompanyID     string          `json:"company_id,omitempty" yaml:"company_id,omitempty"`
	Name          string          `json:"name" yaml:"name"`
	SKU           *string         `json:"sku,omitempty" yaml:"sku,omitempty"`
	Barcode       *string         `json:"barcode,omitempty" yaml:"barcode,omitempty"`
	Category      *string         `json:"category,omitempty" yaml:"category,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price" yaml:"unit_price"`
	StockQuantity decimal.Decimal `json:"stock_quantity" yaml:"stock_quantity"`
}

// CatalogRepo catálogo en memoria leído una sola vez al construirlo.
// Un producto sin company_id es visible para todas las empresas.
type CatalogRepo struct {
	products []entity.Product
}

// Load lee y valida el archivo.
func Load(path string) (*CatalogRepo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	var doc document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &doc)
	default:
		return nil, fmt.Errorf("%w: extensión de catálogo no soportada %q", domain.ErrInvalidInput, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decodificar %s: %w", filepath.Base(path), err)
	}
	return fromRecords(doc.Products)
}

// fromRecords valida los registros: id y nombre obligatorios, id único.
func fromRecords(records []record) (*CatalogRepo, error) {
	seen := make(map[string]struct{}, len(records))
	products := make([]entity.Product, 0, len(records))
	for i, r := range records {
		id := strings.TrimSpace(r.ID)
		if id == "" || strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("%w: producto %d sin id o nombre", domain.ErrInvalidInput, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: id de producto repetido %q", domain.ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
		products = append(products, entity.Product{
			ID:            id,
			CompanyID:     strings.TrimSpace(r.CompanyID),
			Name:          r.Name,
			SKU:           entity.OptNonEmpty(entity.Deref(r.SKU)),
			Barcode:       entity.OptNonEmpty(entity.Deref(r.Barcode)),
			Category:      entity.OptNonEmpty(entity.Deref(r.Category)),
			UnitPrice:     r.UnitPrice,
			StockQuantity: r.StockQuantity,
		})
	}
	return &CatalogRepo{products: products}, nil
}

// ListCatalog devuelve los productos de la empresa más los compartidos.
func (r *CatalogRepo) ListCatalog(ctx context.Context, companyID string) ([]entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []entity.Product
	for _, p := range r.products {
		if p.CompanyID == "" || p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Len cantidad total de productos cargados.
func (r *CatalogRepo) Len() int {
	return len(r.products)
}

// WriteYAML escribe los productos en el formato que lee Load.
func WriteYAML(w io.Writer, products []entity.Product) error {
	doc := document{Products: make([]record, 0, len(products))}
	for _, p := range products {
		doc.Products = append(doc.Products, record{
			ID:            p.ID,
			CompanyID:     p.CompanyID,
			Name:          p.Name,
			SKU:           p.SKU,
			Barcode:       p.Barcode,
			Category:      p.Category,
			UnitPrice:     p.UnitPrice,
			StockQuantity: p.StockQuantity,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("escribir catálogo: %w", err)
	}
	return enc.Close()
}
