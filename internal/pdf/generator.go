package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/facturaec/proforma-api/internal/domain"
)

// Generator renders proformas as A4 PDF documents
type Generator struct {
	businessName string
}

// NewGenerator creates a new PDF generator. businessName is printed in the
// document header; an empty value falls back to a generic title.
func NewGenerator(businessName string) *Generator {
	if businessName == "" {
		businessName = "Proforma"
	}
	return &Generator{businessName: businessName}
}

// Render produces the PDF bytes for a proforma. The document carries the
// header fields, the client block, the priced item table, the totals and the
// total spelled out in words.
func (g *Generator) Render(proforma *domain.ProformaDTO, client *domain.ClientDTO) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	// Header
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, tr(g.businessName), "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, tr(fmt.Sprintf("PROFORMA N° %d", proforma.ProformaNumber)), "", 1, "C", false, 0, "")
	doc.Ln(4)

	// Document fields
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr("Fecha: "+proforma.Date), "", 1, "L", false, 0, "")
	if proforma.DeliveryDays != nil {
		doc.CellFormat(0, 6, tr(fmt.Sprintf("Plazo de entrega: %d días", *proforma.DeliveryDays)), "", 1, "L", false, 0, "")
	}
	if proforma.PaymentMethods != "" {
		doc.CellFormat(0, 6, tr("Forma de pago: "+proforma.PaymentMethods), "", 1, "L", false, 0, "")
	}
	doc.Ln(2)

	// Client block
	if client != nil {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(0, 6, tr("Cliente"), "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 6, tr(client.FullName), "", 1, "L", false, 0, "")
		doc.CellFormat(0, 6, tr("C.I./RUC: "+client.CedulaRUC), "", 1, "L", false, 0, "")
		if client.Address != "" {
			doc.CellFormat(0, 6, tr(client.Address), "", 1, "L", false, 0, "")
		}
		if client.Phone != "" {
			doc.CellFormat(0, 6, tr("Tel: "+client.Phone), "", 1, "L", false, 0, "")
		}
		doc.Ln(4)
	}

	// Item table
	colWidths := []float64{75, 20, 20, 25, 25, 25}
	headers := []string{"Descripción", "Unidad", "Cant.", "P. Unit.", "Total", ""}

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(230, 230, 230)
	for i, h := range headers[:5] {
		doc.CellFormat(colWidths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	for _, item := range proforma.Items {
		doc.CellFormat(colWidths[0], 6, tr(item.Description), "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidths[1], 6, tr(item.Unit), "1", 0, "C", false, 0, "")
		doc.CellFormat(colWidths[2], 6, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[3], 6, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[4], 6, fmt.Sprintf("%.2f", item.LineTotal), "1", 1, "R", false, 0, "")
	}
	doc.Ln(2)

	// Totals
	labelWidth := colWidths[0] + colWidths[1] + colWidths[2] + colWidths[3]
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(labelWidth, 6, tr("Subtotal"), "", 0, "R", false, 0, "")
	doc.CellFormat(colWidths[4], 6, fmt.Sprintf("%.2f", proforma.Subtotal), "1", 1, "R", false, 0, "")
	doc.CellFormat(labelWidth, 6, tr(fmt.Sprintf("IVA %.0f%%", proforma.IVAPercentage)), "", 0, "R", false, 0, "")
	doc.CellFormat(colWidths[4], 6, fmt.Sprintf("%.2f", proforma.IVAAmount), "1", 1, "R", false, 0, "")
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(labelWidth, 7, tr("TOTAL"), "", 0, "R", false, 0, "")
	doc.CellFormat(colWidths[4], 7, fmt.Sprintf("%.2f", proforma.Total), "1", 1, "R", false, 0, "")
	doc.Ln(4)

	// Amount in words
	if proforma.TotalInWords != "" {
		doc.SetFont("Helvetica", "I", 9)
		doc.MultiCell(0, 5, tr("SON: "+proforma.TotalInWords), "", "L", false)
	}

	// Observations
	if proforma.Observations != "" {
		doc.Ln(2)
		doc.SetFont("Helvetica", "B", 9)
		doc.CellFormat(0, 5, tr("Observaciones"), "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.MultiCell(0, 5, tr(proforma.Observations), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
