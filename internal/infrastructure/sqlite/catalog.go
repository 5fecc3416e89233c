// Package sqlite lee el catálogo desde una base SQLite con la tabla products
// del sistema de inventario (un catálogo por user_id).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3" // driver sqlite3
	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-entry/internal/domain/entity"
	"github.com/jhoicas/invoice-entry/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

const listCatalogQuery = `
	SELECT id, user_id, name, sku, barcode, category, unit_price, stock_quantity
	FROM products
	WHERE user_id = ?
	ORDER BY name, id`

// CatalogRepo implementa CatalogRepository sobre SQLite. El company_id del token
// se compara contra products.user_id.
type CatalogRepo struct {
	db *sql.DB
}

// Open abre la base en solo lectura y verifica la conexión.
func Open(path string) (*CatalogRepo, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &CatalogRepo{db: db}, nil
}

// NewCatalogRepository usa una conexión ya abierta.
func NewCatalogRepository(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// Close cierra la base.
func (r *CatalogRepo) Close() error {
	return r.db.Close()
}

// ListCatalog devuelve los productos del tenant ordenados por nombre.
func (r *CatalogRepo) ListCatalog(ctx context.Context, companyID string) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, listCatalogQuery, companyID)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	var list []entity.Product
	for rows.Next() {
		var (
			id                     int64
			p                      entity.Product
			sku, barcode, category sql.NullString
			price, stock           sql.NullFloat64
		)
		if err := rows.Scan(&id, &p.CompanyID, &p.Name, &sku, &barcode, &category, &price, &stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.ID = strconv.FormatInt(id, 10)
		p.SKU = nullString(sku)
		p.Barcode = nullString(barcode)
		p.Category = nullString(category)
		p.UnitPrice = decimal.NewFromFloat(price.Float64)
		p.StockQuantity = decimal.NewFromFloat(stock.Float64)
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return list, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return entity.OptNonEmpty(s.String)
}
