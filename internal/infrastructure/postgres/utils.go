package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isSchemaMismatch verifica si el error es 42P01 (tabla inexistente) o 42703
// (columna inexistente): la base no tiene el esquema que lee el catálogo.
func isSchemaMismatch(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01" || pgErr.Code == "42703"
	}
	return false
}
