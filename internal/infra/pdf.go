package infra

// pdf.go — invoice PDF generation using go-pdf/fpdf.
// Generates an A4 document with the firm header, invoice number and dates,
// client block, item table (description, hours/qty, unit price, IVA, subtotal)
// and the totals box. The output file is saved to storagePath/{numero}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lexfin/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateFacturaPDF renders an invoice to disk and returns the absolute path.
func GenerateFacturaPDF(factura *model.Factura, cliente *model.Cliente, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := strings.ReplaceAll(factura.Numero, "/", "_") + ".pdf"
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "LexFin — Estudio Jurídico", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Gestión de Tesorería y Facturación", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Invoice info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, "Factura "+factura.Numero, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Emisión: "+factura.FechaEmision.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Vencimiento: "+factura.FechaVencimiento.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Client block ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Cliente", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, cliente.Nombre, "", 1, "L", false, 0, "")
	if cliente.Email != nil && *cliente.Email != "" {
		pdf.CellFormat(contentW, 5, *cliente.Email, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Item table ───────────────────────────────────────────────────────────
	col1 := contentW * 0.44 // description
	col2 := contentW * 0.12 // qty / hours
	col3 := contentW * 0.16 // unit price
	col4 := contentW * 0.10 // IVA %
	col5 := contentW * 0.18 // line subtotal

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Concepto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cant.", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "P. Unit.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "IVA", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range factura.Items {
		descr := item.Descripcion
		if len(descr) > 48 {
			descr = descr[:47] + "…"
		}
		pdf.CellFormat(col1, 6, descr, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, item.Cantidad.StringFixed(2), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "$"+item.PrecioUnitario.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, item.AlicuotaIVA.StringFixed(1)+"%", "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, "$"+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3 + col4
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(labelW, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, "$"+factura.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(labelW, 6, "IVA:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, "$"+factura.MontoIVA.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 8, "$"+factura.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	if factura.Notas != nil && *factura.Notas != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, *factura.Notas, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
