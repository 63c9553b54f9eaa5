package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// AuditHistoryHeader column order of the history worksheet.
var AuditHistoryHeader = []string{
	"Completed At",
	"Audited By",
	"Compliant",
	"Non-Compliant",
	"Not Applicable",
	"Checked",
	"Total Items",
	"Overall Notes",
	"Next Audit Due",
}

// GenerateAuditHistory renders a template's completed audits as a styled
// xlsx worksheet, newest first as passed in.
func GenerateAuditHistory(template *domain.AuditTemplate, responses []*domain.AuditResponse) ([]byte, error) {
	f := excelize.NewFile()
	// Note: don't defer Close() here, WriteTo needs the file open

	sheetName := "Audit History"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// Template name above the table
	if err := f.SetCellValue(sheetName, "A1", template.Name); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set title cell: %w", err)
	}

	headerRow := 2
	for col, header := range AuditHistoryHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	columnWidths := []float64{
		20, // Completed At
		20, // Audited By
		12, // Compliant
		14, // Non-Compliant
		14, // Not Applicable
		10, // Checked
		12, // Total Items
		40, // Overall Notes
		20, // Next Audit Due
	}
	for i := range AuditHistoryHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if i < len(columnWidths) && columnWidths[i] > 0 {
			if err := f.SetColWidth(sheetName, col, col, columnWidths[i]); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	for rowIdx, response := range responses {
		row := headerRow + 1 + rowIdx
		counts := countItemStatuses(response.Items)

		values := []any{
			formatTime(response.CompletedAt),
			response.AuditedBy,
			counts[domain.ItemCompliant],
			counts[domain.ItemNonCompliant],
			counts[domain.ItemNotApplicable],
			counts[domain.ItemChecked],
			len(response.Items),
			response.OverallNotes,
			formatTime(response.NextAuditDue),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	// Freeze the header rows
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      headerRow,
		TopLeftCell: "A3",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}

	return buf.Bytes(), nil
}

func countItemStatuses(items []domain.ResponseItem) map[string]int {
	counts := map[string]int{}
	for _, item := range items {
		counts[item.Status]++
	}
	return counts
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
