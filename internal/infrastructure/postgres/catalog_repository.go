package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-entry/internal/domain/entity"
	"github.com/jhoicas/invoice-entry/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// products no tiene columnas de código de barras ni categoría: se leen de
// attributes ({"barcode": "...", "category": "..."}). El stock es la suma de
// todas las bodegas.
const listCatalogQuery = `
	SELECT p.id, p.company_id, p.name, p.sku,
	       p.attributes->>'barcode', p.attributes->>'category', p.price,
	       COALESCE((SELECT SUM(s.quantity) FROM stock s WHERE s.product_id = p.id), 0)
	FROM products p
	WHERE p.company_id = $1
	ORDER BY p.name, p.id`

// CatalogRepo lee el catálogo de productos de una empresa.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// ListCatalog devuelve los productos de la empresa ordenados por nombre.
func (r *CatalogRepo) ListCatalog(ctx context.Context, companyID string) ([]entity.Product, error) {
	rows, err := r.q.Query(ctx, listCatalogQuery, companyID)
	if err != nil {
		if isSchemaMismatch(err) {
			return nil, fmt.Errorf("list catalog: esquema de productos incompatible: %w", err)
		}
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	var list []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct lee una fila de listCatalogQuery. Las columnas NULL quedan como ausentes.
func scanProduct(row rowScanner) (entity.Product, error) {
	var p entity.Product
	var sku, barcode, category *string
	var price decimal.NullDecimal
	var stock decimal.Decimal
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &sku, &barcode, &category, &price, &stock); err != nil {
		return entity.Product{}, err
	}
	p.SKU = entity.OptNonEmpty(entity.Deref(sku))
	p.Barcode = entity.OptNonEmpty(entity.Deref(barcode))
	p.Category = entity.OptNonEmpty(entity.Deref(category))
	if price.Valid {
		p.UnitPrice = price.Decimal
	}
	p.StockQuantity = stock
	return p, nil
}
