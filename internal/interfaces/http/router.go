package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/invoice-entry/internal/application/invoiceform"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Forms     *invoiceform.Service
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	formHandler := NewFormHandler(deps.Forms)
	scannerHandler := NewScannerHandler()

	forms := protected.Group("/forms")
	forms.Post("/", formHandler.Open)

	// Todo lo que sigue opera sobre un formulario abierto de la empresa del token
	form := forms.Group("/:id", RequireForm(deps.Forms))
	form.Get("/", formHandler.Get)
	form.Delete("/", formHandler.Close)
	form.Put("/adjustments", formHandler.SetAdjustments)
	form.Get("/products", formHandler.SearchProducts)
	form.Post("/submit", formHandler.Submit)

	items := form.Group("/items")
	items.Post("/", formHandler.AddBlank)
	items.Post("/quick-add", formHandler.QuickAdd)
	items.Post("/manual", formHandler.AddManual)
	items.Post("/product", formHandler.AddProduct)
	items.Patch("/:itemId", formHandler.UpdateItem)
	items.Delete("/:itemId", formHandler.RemoveItem)

	scanner := form.Group("/scanner")
	scanner.Get("/cameras", scannerHandler.Cameras)
	scanner.Put("/cameras", scannerHandler.SetCameras)
	scanner.Post("/start", scannerHandler.Start)
	scanner.Post("/stop", scannerHandler.Stop)
	scanner.Post("/decode", scannerHandler.Decode)
	scanner.Post("/manual", scannerHandler.Manual)
	scanner.Post("/error", scannerHandler.ReportError)
}
