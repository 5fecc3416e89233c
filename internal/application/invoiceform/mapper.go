package invoiceform

import (
	"github.com/jhoicas/invoice-entry/internal/application/dto"
	"github.com/jhoicas/invoice-entry/internal/application/scanning"
	"github.com/jhoicas/invoice-entry/internal/domain/entity"
	"github.com/jhoicas/invoice-entry/pkg/money"
)

const dateLayout = "2006-01-02"

func toItemResponse(it entity.LineItem) dto.ItemResponse {
	total := it.LineTotal()
	return dto.ItemResponse{
		ID:               it.ID,
		Description:      it.Description,
		Quantity:         it.Quantity,
		UnitPrice:        it.UnitPrice,
		LineTotal:        total,
		LineTotalDisplay: money.Format(total),
		ProductID:        it.ProductID,
	}
}

func toTotalsResponse(t entity.Totals) dto.TotalsResponse {
	return dto.TotalsResponse{
		Subtotal:        t.Subtotal,
		Discount:        t.Discount,
		Tax:             t.Tax,
		Total:           t.Total,
		SubtotalDisplay: money.Format(t.Subtotal),
		TotalDisplay:    money.Format(t.Total),
	}
}

func toProductResponse(p entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		Category:      p.Category,
		UnitPrice:     p.UnitPrice,
		StockQuantity: p.StockQuantity,
		OutOfStock:    p.OutOfStock(),
	}
}

func toScanEventResponse(ev ScanEvent) dto.ScanEventResponse {
	return dto.ScanEventResponse{
		Text:      ev.Text,
		Matched:   ev.Matched,
		ProductID: ev.ProductID,
		ItemID:    ev.ItemID,
		Tier:      string(ev.Tier),
		Error:     ev.Err,
		At:        ev.At,
	}
}

func toCamerasResponse(cams []scanning.Camera) *dto.CamerasResponse {
	out := &dto.CamerasResponse{Cameras: make([]dto.CameraDTO, 0, len(cams))}
	for _, c := range cams {
		out.Cameras = append(out.Cameras, dto.CameraDTO{ID: c.ID, Label: c.Label})
	}
	return out
}

func toSubmissionResponse(formID string, s entity.InvoiceSubmission) *dto.SubmissionResponse {
	out := &dto.SubmissionResponse{
		FormID:           formID,
		InvoiceDate:      s.Header.Date.Format(dateLayout),
		CustomerName:     s.Header.CustomerName,
		CustomerPhone:    s.Header.CustomerPhone,
		CustomerAddress:  s.Header.CustomerAddress,
		CustomerGSTIN:    s.Header.CustomerGSTIN,
		PaymentMode:      s.Header.PaymentMode,
		PaymentReference: s.Header.PaymentReference,
		Notes:            s.Header.Notes,
		Items:            make([]dto.SubmissionItem, 0, len(s.Items)),
		Subtotal:         s.Subtotal,
		Discount:         s.Discount,
		Tax:              s.Tax,
		Total:            s.Total,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SubmissionItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal(),
			ProductID:   it.ProductID,
		})
	}
	return out
}
