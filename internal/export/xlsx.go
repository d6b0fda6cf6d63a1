package export

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/matsen/citeparse/internal/record"
)

// SheetName is the worksheet holding one row per record.
const SheetName = "References"

// column is one worksheet column and how to read it from a record.
type column struct {
	header string
	width  float64
	value  func(*record.Record) string
}

func opt(get func(*record.Record) *string) func(*record.Record) string {
	return func(r *record.Record) string { return record.Value(get(r)) }
}

var columns = []column{
	{"Reference", 10, func(r *record.Record) string { return r.Publication.ReferenceNumber }},
	{"Type", 14, func(r *record.Record) string { return string(r.Publication.PublicationType) }},
	{"Authors", 28, func(r *record.Record) string { return strings.Join(r.Publication.Auteurs, "; ") }},
	{"Title", 60, opt(func(r *record.Record) *string { return r.Publication.Title })},
	{"Place", 16, opt(func(r *record.Record) *string { return r.Publication.PlaceOfPublication })},
	{"Publisher", 20, opt(func(r *record.Record) *string { return r.Publication.Publisher })},
	{"Dates", 12, opt(func(r *record.Record) *string { return r.Publication.PublicationDates })},
	{"Volume", 8, opt(func(r *record.Record) *string { return r.Publication.Volume })},
	{"Tome", 8, opt(func(r *record.Record) *string { return r.Publication.Tome })},
	{"Pages", 12, opt(func(r *record.Record) *string { return r.Publication.Pages })},
	{"Series", 24, opt(func(r *record.Record) *string { return r.Publication.Series })},
	{"Journal", 28, opt(func(r *record.Record) *string { return r.Publication.JournalTitle })},
	{"Journal Volume", 8, opt(func(r *record.Record) *string { return r.Publication.JournalVolume })},
	{"Journal Issue", 8, opt(func(r *record.Record) *string { return r.Publication.JournalIssue })},
	{"Container", 28, opt(func(r *record.Record) *string { return r.Publication.ContainerTitle })},
	{"Editors", 24, func(r *record.Record) string { return strings.Join(r.Publication.ContainerEditors, "; ") }},
	{"Institution", 28, opt(func(r *record.Record) *string { return r.Content.MainInstitution })},
	{"Mentioned Place", 18, opt(func(r *record.Record) *string { return r.Content.MentionedPlace })},
	{"Region", 16, opt(func(r *record.Record) *string { return r.Content.Region })},
	{"Country", 12, opt(func(r *record.Record) *string { return r.Content.Country })},
	{"Institution Type", 16, opt(func(r *record.Record) *string { return r.Content.InstitutionType })},
	{"Religious Order", 18, opt(func(r *record.Record) *string { return r.Content.ReligiousOrder })},
	{"Temporal Coverage", 18, opt(func(r *record.Record) *string { return r.Content.TemporalCoverage })},
	{"Document Type", 14, opt(func(r *record.Record) *string { return r.Content.DocumentType })},
	{"Remarks", 40, opt(func(r *record.Record) *string { return r.Remarks })},
}

// Headers returns the worksheet header row.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

// WriteXLSX writes recs as a workbook with a single frozen-header sheet.
func WriteXLSX(w io.Writer, recs []*record.Record, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet rather than leaving an empty "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	for i, c := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, c.header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, name, name, c.width)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, bold)
	}
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for row, rec := range recs {
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = c.value(rec)
		}
		cell, _ := excelize.CoordinatesToCellName(1, row+2)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row for reference %s: %w", rec.Publication.ReferenceNumber, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
