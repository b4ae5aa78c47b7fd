package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"reportingest/internal/domain"
)

const sheetName = "Reports"

// XLSXWriter streams reports into a single-sheet workbook. Call Close after
// WriteTo to release the workbook's temp files.
type XLSXWriter struct {
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

// NewXLSXWriter creates a workbook with one "Reports" sheet.
func NewXLSXWriter() (*XLSXWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating stream writer: %w", err)
	}
	return &XLSXWriter{file: f, stream: sw, row: 1}, nil
}

// WriteHeader writes the header row.
func (w *XLSXWriter) WriteHeader() error {
	cells := make([]interface{}, len(columns))
	for i, c := range columns {
		cells[i] = c
	}
	return w.writeRow(cells)
}

// WriteReports appends one row per report. Totale is written as a number.
func (w *XLSXWriter) WriteReports(docs []domain.ReportDocument) error {
	for i := range docs {
		row := reportToRow(&docs[i])
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if total, ok := reportTotal(&docs[i]); ok {
			cells[totalColumn] = total
		}
		if err := w.writeRow(cells); err != nil {
			return err
		}
	}
	return nil
}

// WriteTo flushes the stream and writes the workbook to out.
func (w *XLSXWriter) WriteTo(out io.Writer) (int64, error) {
	if err := w.stream.Flush(); err != nil {
		return 0, fmt.Errorf("flushing sheet: %w", err)
	}
	return w.file.WriteTo(out)
}

// Close releases the workbook.
func (w *XLSXWriter) Close() error {
	return w.file.Close()
}

func (w *XLSXWriter) writeRow(cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.stream.SetRow(cell, cells); err != nil {
		return fmt.Errorf("writing row %d: %w", w.row, err)
	}
	w.row++
	return nil
}

func reportTotal(doc *domain.ReportDocument) (float64, bool) {
	switch f := doc.Fields.(type) {
	case *domain.ChiusuraPOSFields:
		return f.Totale, true
	case *domain.DailySpieloFields:
		return f.Totale, true
	case *domain.NovolineRangeFields:
		return f.Totale, true
	}
	return 0, false
}
