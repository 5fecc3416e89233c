package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/invoice-entry/internal/application/invoiceform"
)

// LocalForm key del formulario resuelto por RequireForm.
const LocalForm = "invoice_form"

// formResolver es el contrato mínimo que necesita el middleware. Lo implementa *invoiceform.Service.
type formResolver interface {
	Form(companyID, id string) (*invoiceform.Form, error)
}

// RequireForm resuelve el formulario :id de la empresa del token y lo deja en c.Locals.
// Debe usarse DESPUÉS de AuthMiddleware.
//
//   - 404 → el formulario no existe o ya fue enviado.
//   - 403 → el formulario es de otra empresa.
func RequireForm(forms formResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := forms.Form(GetCompanyID(c), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		c.Locals(LocalForm, f)
		return c.Next()
	}
}

// GetForm devuelve el formulario resuelto por RequireForm.
func GetForm(c *fiber.Ctx) *invoiceform.Form {
	f, _ := c.Locals(LocalForm).(*invoiceform.Form)
	return f
}
