package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/invoice-entry/internal/application/dto"
	"github.com/jhoicas/invoice-entry/internal/application/invoiceform"
	"github.com/jhoicas/invoice-entry/internal/domain"
)

// FormHandler maneja los formularios de factura (protegido).
type FormHandler struct {
	svc *invoiceform.Service
}

// NewFormHandler construye el handler.
func NewFormHandler(svc *invoiceform.Service) *FormHandler {
	return &FormHandler{svc: svc}
}

// Open godoc
// @Summary      Abrir formulario de factura
// @Description  Carga el catálogo de la empresa del token y devuelve el formulario vacío.
// @Tags         forms
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.FormResponse
// @Failure      429  {object}  dto.ErrorResponse
// @Router       /api/forms [post]
func (h *FormHandler) Open(c *fiber.Ctx) error {
	f, err := h.svc.Open(c.UserContext(), GetCompanyID(c), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(f.View())
}

// Get godoc
// @Summary      Ver formulario
// @Tags         forms
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del formulario"
// @Success      200  {object}  dto.FormResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/forms/{id} [get]
func (h *FormHandler) Get(c *fiber.Ctx) error {
	return c.JSON(GetForm(c).View())
}

// Close godoc
// @Summary      Cerrar formulario sin enviar
// @Tags         forms
// @Security     Bearer
// @Param        id   path  string  true  "ID del formulario"
// @Success      204
// @Router       /api/forms/{id} [delete]
func (h *FormHandler) Close(c *fiber.Ctx) error {
	if err := h.svc.Close(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddBlank godoc
// @Summary      Agregar fila vacía
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del formulario"
// @Success      201  {object}  dto.ItemMutationResponse
// @Router       /api/forms/{id}/items [post]
func (h *FormHandler) AddBlank(c *fiber.Ctx) error {
	out, err := GetForm(c).AddBlank()
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// QuickAdd godoc
// @Summary      Alta rápida por código de barras, SKU o nombre
// @Description  Sin coincidencia responde 200 con matched=false y fallback=manual.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del formulario"
// @Param        body  body  dto.QuickAddRequest  true  "Texto a buscar"
// @Success      200   {object}  dto.AddItemResponse
// @Router       /api/forms/{id}/items/quick-add [post]
func (h *FormHandler) QuickAdd(c *fiber.Ctx) error {
	var in dto.QuickAddRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := GetForm(c).QuickAdd(in.Query)
	return addResult(c, out, err)
}

// AddManual godoc
// @Summary      Agregar fila manual
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del formulario"
// @Param        body  body  dto.ManualItemRequest  true  "Descripción, cantidad y precio"
// @Success      201   {object}  dto.ItemMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/forms/{id}/items/manual [post]
func (h *FormHandler) AddManual(c *fiber.Ctx) error {
	var in dto.ManualItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := GetForm(c).AddManual(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AddProduct godoc
// @Summary      Agregar producto elegido en el selector
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del formulario"
// @Param        body  body  dto.PickProductRequest  true  "Producto"
// @Success      200   {object}  dto.AddItemResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/forms/{id}/items/product [post]
func (h *FormHandler) AddProduct(c *fiber.Ctx) error {
	var in dto.PickProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id es requerido"})
	}
	out, err := GetForm(c).AddProduct(in.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateItem godoc
// @Summary      Editar fila
// @Description  Valores numéricos inválidos o negativos se toman como 0.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                 true  "ID del formulario"
// @Param        itemId  path  string                 true  "ID de la fila"
// @Param        body    body  dto.UpdateItemRequest  true  "Campos a cambiar"
// @Success      200     {object}  dto.ItemMutationResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/forms/{id}/items/{itemId} [patch]
func (h *FormHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := GetForm(c).UpdateItem(c.Params("itemId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RemoveItem godoc
// @Summary      Quitar fila
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del formulario"
// @Param        itemId  path  string  true  "ID de la fila"
// @Success      200     {object}  dto.ItemMutationResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/forms/{id}/items/{itemId} [delete]
func (h *FormHandler) RemoveItem(c *fiber.Ctx) error {
	out, err := GetForm(c).RemoveItem(c.Params("itemId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetAdjustments godoc
// @Summary      Fijar descuento e impuesto
// @Tags         forms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del formulario"
// @Param        body  body  dto.AdjustmentsRequest  true  "Descuento e impuesto"
// @Success      200   {object}  dto.TotalsResponse
// @Router       /api/forms/{id}/adjustments [put]
func (h *FormHandler) SetAdjustments(c *fiber.Ctx) error {
	var in dto.AdjustmentsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := GetForm(c).SetAdjustments(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SearchProducts godoc
// @Summary      Buscar productos para el selector
// @Tags         forms
// @Security     Bearer
// @Produce      json
// @Param        id  path   string  true   "ID del formulario"
// @Param        q   query  string  false  "Texto (vacío lista todo)"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/forms/{id}/products [get]
func (h *FormHandler) SearchProducts(c *fiber.Ctx) error {
	return c.JSON(GetForm(c).Search(c.Query("q")))
}

// Submit godoc
// @Summary      Enviar factura
// @Description  Valida la cabecera, descarta filas sin descripción, recalcula totales y cierra el formulario.
// @Tags         forms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del formulario"
// @Param        body  body  dto.SubmitInvoiceRequest  true  "Cabecera"
// @Success      200   {object}  dto.SubmissionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/forms/{id}/submit [post]
func (h *FormHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitInvoiceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	out, err := h.svc.Submit(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// addResult responde el resultado de un alta por búsqueda. Sin coincidencia no es un error HTTP.
func addResult(c *fiber.Ctx, out *dto.AddItemResponse, err error) error {
	if errors.Is(err, domain.ErrNoMatch) {
		return c.JSON(out)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
