// Package export renders store quotes as PDF and CSV documents.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ferredex/quote-service/internal/money"
	"github.com/ferredex/quote-service/internal/quote"
)

const pdfDisclaimer = "Documento no válido como comprobante de pago. Precios referenciales de la ferretería seleccionada."

// QuotePDF renders one store quote as an A4 PDF.
func QuotePDF(q quote.StoreQuote, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Cotización"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, generatedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, tr(q.StoreName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Distancia: %.1f km", q.DistanceKm)), "", 1, "L", false, 0, "")

	if q.Info != nil {
		infoLine(pdf, tr, "Dirección tienda", q.Info.Address)
		infoLine(pdf, tr, "Cta de abono para la venta", q.Info.PayoutAccount)
		infoLine(pdf, tr, "Persona de contacto", q.Info.ContactPerson)
		infoLine(pdf, tr, "Número de contacto", q.Info.ContactPhone)
		infoLine(pdf, tr, "Yape / Plin", q.Info.WalletCode)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 7, tr("Producto"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, tr("Cant."), "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, tr("P. Unit."), "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, tr("Importe"), "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range q.MatchedItems {
		name := item.Product
		if len(name) > 48 {
			name = name[:48]
		}
		pdf.CellFormat(90, 6, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, tr(money.Format(item.UnitPrice)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, tr(money.Format(item.LineTotal)), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(145, 7, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, tr(money.Format(q.TotalPrice)), "1", 1, "R", false, 0, "")

	if len(q.MissingItems) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, tr("Productos no disponibles en esta tienda:"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, p := range q.MissingItems {
			pdf.CellFormat(0, 5, tr("- "+p), "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.MultiCell(0, 4, tr(pdfDisclaimer), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func infoLine(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	if value == "" {
		return
	}
	pdf.CellFormat(0, 5, tr(label+": "+value), "", 1, "L", false, 0, "")
}
