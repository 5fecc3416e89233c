package http

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-entry/internal/domain"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("fila x: %w", domain.ErrNotFound), fiber.StatusNotFound},
		{"forbidden", domain.ErrForbidden, fiber.StatusForbidden},
		{"unauthorized", domain.ErrUnauthorized, fiber.StatusUnauthorized},
		{"validation", fmt.Errorf("cabecera: %w", domain.ErrInvalidInput), fiber.StatusBadRequest},
		{"form closed", domain.ErrFormClosed, fiber.StatusConflict},
		{"camera", fmt.Errorf("%w: NotAllowedError", domain.ErrCameraUnavailable), fiber.StatusConflict},
		{"too many forms", domain.ErrTooManyForms, fiber.StatusTooManyRequests},
		{"desconocido", errors.New("db caída"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
