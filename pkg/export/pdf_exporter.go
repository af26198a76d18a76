package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 277.0
	pdfCellMargin = 2.0
)

// PDFExporter writes tables as a landscape A4 document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType reports the MIME type of the rendered output.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension is the filename suffix for rendered output.
func (e *PDFExporter) Extension() string { return ".pdf" }

// Write renders the table to w. Cells wider than their column are truncated.
func (e *PDFExporter) Write(w io.Writer, table Table) error {
	if err := table.validate(); err != nil {
		return err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	colWidth := pdfPageWidth / float64(len(table.Columns))

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, column := range table.Columns {
			pdf.CellFormat(colWidth, 8, fit(pdf, tr(column), colWidth), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if table.Title != "" && pdf.PageNo() == 1 {
			pdf.SetFont("Arial", "B", 13)
			pdf.CellFormat(0, 10, tr(table.Title), "", 1, "L", false, 0, "")
			pdf.Ln(2)
		}
		header()
	})

	pdf.AddPage()
	for _, row := range table.Rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, 7, fit(pdf, tr(cell), colWidth), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// fit shortens text with an ellipsis until it fits inside width.
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	limit := width - pdfCellMargin
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if pdf.GetStringWidth(candidate) <= limit {
			return candidate
		}
	}
	return ""
}
