// Package export writes the reminder collection and delivery history to an
// Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dosewatch/internal/history"
	"dosewatch/internal/models"
)

// sheetWriter appends header and data rows to one sheet at a time.
type sheetWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func newSheetWriter() *sheetWriter {
	return &sheetWriter{file: excelize.NewFile()}
}

func (w *sheetWriter) addSheet(name string) error {
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

func (w *sheetWriter) writeHeader(columns []string) error {
	row := make([]interface{}, len(columns))
	for i, col := range columns {
		row[i] = col
	}
	if err := w.writeRow(row); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow-1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow-1)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}
	return nil
}

func (w *sheetWriter) writeRow(row []interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}
	w.currentRow++
	return nil
}

// WriteWorkbook renders reminders and delivery history as a two-sheet .xlsx
// document.
func WriteWorkbook(wr io.Writer, reminders []models.Reminder, deliveries []history.Entry) error {
	w := newSheetWriter()

	if err := w.addSheet("Reminders"); err != nil {
		return err
	}
	if err := w.writeHeader([]string{
		"ID", "Medicine", "Dosage", "Frequency", "Times",
		"Start Date", "End Date", "Notes", "Status",
	}); err != nil {
		return err
	}
	for _, r := range reminders {
		status := "Active"
		if !r.IsActive {
			status = "Paused"
		}
		endDate := r.EndDate
		if endDate == "" {
			endDate = "Ongoing"
		}
		if err := w.writeRow([]interface{}{
			r.ID, r.MedicineName, r.Dosage, r.Frequency.DisplayText(),
			strings.Join(r.Times, ", "), r.StartDate, endDate, r.Notes, status,
		}); err != nil {
			return err
		}
	}

	if err := w.addSheet("Delivery History"); err != nil {
		return err
	}
	if err := w.writeHeader([]string{
		"Time", "Medicine", "Slot", "Channel", "Status", "Error",
	}); err != nil {
		return err
	}
	for _, e := range deliveries {
		if err := w.writeRow([]interface{}{
			e.CreatedAt.Format(time.RFC3339), e.Medicine, e.Slot,
			e.Channel, e.Status, e.Error,
		}); err != nil {
			return err
		}
	}

	return w.file.Write(wr)
}
