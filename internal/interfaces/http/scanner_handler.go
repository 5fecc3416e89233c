package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/invoice-entry/internal/application/dto"
)

// ScannerHandler controla el escáner de un formulario. La cámara corre en el
// navegador: aquí llegan las cámaras detectadas, los códigos y los errores.
type ScannerHandler struct{}

// NewScannerHandler construye el handler.
func NewScannerHandler() *ScannerHandler {
	return &ScannerHandler{}
}

// Cameras godoc
// @Summary      Listar cámaras informadas
// @Tags         scanner
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del formulario"
// @Success      200  {object}  dto.CamerasResponse
// @Router       /api/forms/{id}/scanner/cameras [get]
func (h *ScannerHandler) Cameras(c *fiber.Ctx) error {
	out, err := GetForm(c).Cameras(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetCameras godoc
// @Summary      Informar cámaras detectadas por el navegador
// @Tags         scanner
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del formulario"
// @Param        body  body  dto.CamerasRequest  true  "Cámaras"
// @Success      200   {object}  dto.CamerasResponse
// @Router       /api/forms/{id}/scanner/cameras [put]
func (h *ScannerHandler) SetCameras(c *fiber.Ctx) error {
	var in dto.CamerasRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := GetForm(c).SetCameras(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Start godoc
// @Summary      Iniciar escáner
// @Description  Idempotente: con el escáner corriendo responde changed=false.
// @Tags         scanner
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true   "ID del formulario"
// @Param        body  body  dto.StartScannerRequest  false  "Cámara (vacío = la primera)"
// @Success      200   {object}  dto.ScannerStateResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/forms/{id}/scanner/start [post]
func (h *ScannerHandler) Start(c *fiber.Ctx) error {
	var in dto.StartScannerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	out, err := GetForm(c).StartScanner(c.UserContext(), in.CameraID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stop godoc
// @Summary      Detener escáner
// @Tags         scanner
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del formulario"
// @Success      200  {object}  dto.ScannerStateResponse
// @Router       /api/forms/{id}/scanner/stop [post]
func (h *ScannerHandler) Stop(c *fiber.Ctx) error {
	out, err := GetForm(c).StopScanner(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Decode godoc
// @Summary      Entregar un código decodificado por la cámara
// @Description  accepted=false si se descartó por repetido o por ritmo.
// @Tags         scanner
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del formulario"
// @Param        body  body  dto.DecodeRequest  true  "Texto"
// @Success      202   {object}  dto.DecodeResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/forms/{id}/scanner/decode [post]
func (h *ScannerHandler) Decode(c *fiber.Ctx) error {
	var in dto.DecodeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := GetForm(c).PushFrame(in.Text)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// Manual godoc
// @Summary      Ingresar código a mano
// @Description  Fallback sin cámara; mismo resultado que un código escaneado.
// @Tags         scanner
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del formulario"
// @Param        body  body  dto.ManualBarcodeRequest  true  "Código"
// @Success      200   {object}  dto.AddItemResponse
// @Router       /api/forms/{id}/scanner/manual [post]
func (h *ScannerHandler) Manual(c *fiber.Ctx) error {
	var in dto.ManualBarcodeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := GetForm(c).ManualBarcode(in.Barcode)
	return addResult(c, out, err)
}

// ReportError godoc
// @Summary      Informar un error de cámara
// @Tags         scanner
// @Security     Bearer
// @Accept       json
// @Param        id    path  string                   true  "ID del formulario"
// @Param        body  body  dto.ScannerErrorRequest  true  "Mensaje"
// @Success      204
// @Router       /api/forms/{id}/scanner/error [post]
func (h *ScannerHandler) ReportError(c *fiber.Ctx) error {
	var in dto.ScannerErrorRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	GetForm(c).ReportScannerError(in.Message)
	return c.SendStatus(fiber.StatusNoContent)
}
