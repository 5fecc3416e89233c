package repository

import (
	"context"

	"github.com/jhoicas/invoice-entry/internal/domain/entity"
)

// CatalogRepository define el puerto de lectura del catálogo (DIP).
// Devuelve los productos de la empresa en un orden estable: el primero que
// coincide en el Matcher depende de ese orden.
type CatalogRepository interface {
	ListCatalog(ctx context.Context, companyID string) ([]entity.Product, error)
}
