package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVExporter writes tables as RFC 4180 CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType reports the MIME type of the rendered output.
func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

// Extension is the filename suffix for rendered output.
func (e *CSVExporter) Extension() string { return ".csv" }

// Write renders the table to w. The title is not part of CSV output.
func (e *CSVExporter) Write(w io.Writer, table Table) error {
	if err := table.validate(); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
