// Package report writes meeting records as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"meetlog/internal/models"
	"os"
)

// Header is the fixed first row of every report.
var Header = []string{"Other Person Name", "Other Person Email", "Meeting Date", "Summary"}

// Write serializes records to w in the given order.
func Write(w io.Writer, records []models.MeetingRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		row := []string{r.OtherPersonName, r.OtherPersonEmail, r.MeetingDate, r.Summary}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile creates (or truncates) path and writes the report to it.
func WriteFile(path string, records []models.MeetingRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
