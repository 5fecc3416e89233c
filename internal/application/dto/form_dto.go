package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Los campos numéricos de entrada llegan como texto tal cual los escribió el
// usuario; un valor mal formado se toma como 0.

// QuickAddRequest body para POST /api/forms/:id/items/quick-add.
type QuickAddRequest struct {
	Query string `json:"query"`
}

// ManualItemRequest body para POST /api/forms/:id/items/manual.
// Quantity vacío se toma como 1.
type ManualItemRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// PickProductRequest body para POST /api/forms/:id/items/product.
type PickProductRequest struct {
	ProductID string `json:"product_id"`
}

// UpdateItemRequest body para PATCH /api/forms/:id/items/:itemId. Solo cambian los campos presentes.
type UpdateItemRequest struct {
	Description *string `json:"description,omitempty"`
	Quantity    *string `json:"quantity,omitempty"`
	UnitPrice   *string `json:"unit_price,omitempty"`
}

// AdjustmentsRequest body para PUT /api/forms/:id/adjustments.
type AdjustmentsRequest struct {
	Discount *string `json:"discount,omitempty"`
	Tax      *string `json:"tax,omitempty"`
}

// ItemResponse fila con su total de línea recalculado.
type ItemResponse struct {
	ID               string          `json:"id"`
	Description      string          `json:"description"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineTotal        decimal.Decimal `json:"line_total"`
	LineTotalDisplay string          `json:"line_total_display"`
	ProductID        *string         `json:"product_id,omitempty"`
}

// TotalsResponse subtotal y total del formulario.
type TotalsResponse struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	SubtotalDisplay string          `json:"subtotal_display"`
	TotalDisplay    string          `json:"total_display"`
}

// ProductResponse producto del catálogo para el selector.
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	SKU           *string         `json:"sku,omitempty"`
	Barcode       *string         `json:"barcode,omitempty"`
	Category      *string         `json:"category,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	OutOfStock    bool            `json:"out_of_stock"`
}

// ProductListResponse resultado de la búsqueda del selector.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}

// AddItemResponse resultado de agregar por alta rápida, selector o escáner.
// Si Matched es false, Fallback indica "manual": el texto puede darse de alta a mano.
type AddItemResponse struct {
	Matched      bool             `json:"matched"`
	Merged       bool             `json:"merged"`
	Tier         string           `json:"tier,omitempty"`
	Query        string           `json:"query,omitempty"`
	Fallback     string           `json:"fallback,omitempty"`
	Item         *ItemResponse    `json:"item,omitempty"`
	Product      *ProductResponse `json:"product,omitempty"`
	OutOfStock   bool             `json:"out_of_stock"`
	ExceedsStock bool             `json:"exceeds_stock"`
	Totals       TotalsResponse   `json:"totals"`
}

// ItemMutationResponse respuesta de alta manual, edición o borrado de filas.
type ItemMutationResponse struct {
	Item   *ItemResponse  `json:"item,omitempty"`
	Items  int            `json:"items"`
	Totals TotalsResponse `json:"totals"`
}

// CameraDTO cámara informada por el navegador.
type CameraDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CamerasRequest body para PUT /api/forms/:id/scanner/cameras.
type CamerasRequest struct {
	Cameras []CameraDTO `json:"cameras"`
}

// CamerasResponse lista de cámaras.
type CamerasResponse struct {
	Cameras []CameraDTO `json:"cameras"`
}

// StartScannerRequest body para POST /api/forms/:id/scanner/start.
type StartScannerRequest struct {
	CameraID string `json:"camera_id"`
}

// ScannerStateResponse estado del escáner y parámetros para la librería del navegador.
type ScannerStateResponse struct {
	Running  bool   `json:"running"`
	Changed  bool   `json:"changed"`
	CameraID string `json:"camera_id,omitempty"`
	FPS      int    `json:"fps"`
	QRBox    int    `json:"qrbox"`
}

// DecodeRequest body para POST /api/forms/:id/scanner/decode.
type DecodeRequest struct {
	Text string `json:"text"`
}

// DecodeResponse indica si el código entró a la cola o se descartó (repetido o ritmo).
type DecodeResponse struct {
	Accepted bool `json:"accepted"`
}

// ManualBarcodeRequest body para POST /api/forms/:id/scanner/manual.
type ManualBarcodeRequest struct {
	Barcode string `json:"barcode"`
}

// ScannerErrorRequest body para POST /api/forms/:id/scanner/error.
type ScannerErrorRequest struct {
	Message string `json:"message"`
}

// ScanEventResponse resultado de un código escaneado, para el feed del formulario.
type ScanEventResponse struct {
	Text      string    `json:"text,omitempty"`
	Matched   bool      `json:"matched"`
	ProductID string    `json:"product_id,omitempty"`
	ItemID    string    `json:"item_id,omitempty"`
	Tier      string    `json:"tier,omitempty"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// FormResponse vista completa del formulario.
type FormResponse struct {
	ID          string               `json:"id"`
	CompanyID   string               `json:"company_id"`
	OpenedAt    time.Time            `json:"opened_at"`
	CatalogSize int                  `json:"catalog_size"`
	Items       []ItemResponse       `json:"items"`
	Totals      TotalsResponse       `json:"totals"`
	Scanner     ScannerStateResponse `json:"scanner"`
	RecentScans []ScanEventResponse  `json:"recent_scans"`
}

// SubmitInvoiceRequest cabecera enviada junto con las filas en POST /api/forms/:id/submit.
type SubmitInvoiceRequest struct {
	InvoiceDate      string `json:"invoice_date" validate:"omitempty,datetime=2006-01-02"`
	CustomerName     string `json:"customer_name" validate:"max=255"`
	CustomerPhone    string `json:"customer_phone" validate:"max=50"`
	CustomerAddress  string `json:"customer_address" validate:"max=1000"`
	CustomerGSTIN    string `json:"customer_gstin" validate:"max=50"`
	PaymentMode      string `json:"payment_mode" validate:"omitempty,oneof=CASH CARD UPI CREDIT BANK"`
	PaymentReference string `json:"payment_reference" validate:"max=255"`
	Notes            string `json:"notes" validate:"max=2000"`
}

// SubmissionItem fila tal como la recibe el servicio que crea la factura.
type SubmissionItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	ProductID   *string         `json:"product_id,omitempty"`
}

// SubmissionResponse payload final del formulario.
type SubmissionResponse struct {
	FormID           string           `json:"form_id"`
	InvoiceDate      string           `json:"invoice_date"`
	CustomerName     string           `json:"customer_name,omitempty"`
	CustomerPhone    string           `json:"customer_phone,omitempty"`
	CustomerAddress  string           `json:"customer_address,omitempty"`
	CustomerGSTIN    string           `json:"customer_gstin,omitempty"`
	PaymentMode      string           `json:"payment_mode,omitempty"`
	PaymentReference string           `json:"payment_reference,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	Items            []SubmissionItem `json:"items"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
	Discount         decimal.Decimal  `json:"discount"`
	Tax              decimal.Decimal  `json:"tax"`
	Total            decimal.Decimal  `json:"total"`
}
