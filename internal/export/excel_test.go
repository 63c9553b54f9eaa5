package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

func TestGenerateAuditHistoryRoundTrip(t *testing.T) {
	completedAt := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	nextDue := completedAt.Add(30 * 24 * time.Hour)

	template := &domain.AuditTemplate{
		TemplateID: "tpl-1",
		Name:       "Fire Safety Audit",
	}
	responses := []*domain.AuditResponse{
		{
			ResponseID:   "resp-1",
			AuditedBy:    "Jane Murphy",
			OverallNotes: "two extinguishers overdue for service",
			CompletedAt:  &completedAt,
			NextAuditDue: &nextDue,
			Items: []domain.ResponseItem{
				{ItemID: "i1", ItemName: "Extinguishers serviced", Status: domain.ItemNonCompliant},
				{ItemID: "i2", ItemName: "Exits clear", Status: domain.ItemCompliant},
				{ItemID: "i3", ItemName: "Alarm tested", Status: domain.ItemCompliant},
			},
		},
	}

	data, err := GenerateAuditHistory(template, responses)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Audit History", "A1")
	require.NoError(t, err)
	require.Equal(t, "Fire Safety Audit", title)

	header, err := f.GetCellValue("Audit History", "A2")
	require.NoError(t, err)
	require.Equal(t, "Completed At", header)

	auditedBy, err := f.GetCellValue("Audit History", "B3")
	require.NoError(t, err)
	require.Equal(t, "Jane Murphy", auditedBy)

	compliant, err := f.GetCellValue("Audit History", "C3")
	require.NoError(t, err)
	require.Equal(t, "2", compliant)

	nonCompliant, err := f.GetCellValue("Audit History", "D3")
	require.NoError(t, err)
	require.Equal(t, "1", nonCompliant)

	notes, err := f.GetCellValue("Audit History", "H3")
	require.NoError(t, err)
	require.Equal(t, "two extinguishers overdue for service", notes)
}

func TestGenerateAuditHistoryEmpty(t *testing.T) {
	template := &domain.AuditTemplate{TemplateID: "tpl-1", Name: "Empty"}

	data, err := GenerateAuditHistory(template, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Audit History")
	require.NoError(t, err)
	require.Len(t, rows, 2) // title row + header row only
}
