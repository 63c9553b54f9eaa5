package pdf

import (
	"html"
	"strings"
	"time"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// AuditHTML renders a completed audit response as the archival PDF document
// produced by the background worker.
func AuditHTML(template *domain.AuditTemplate, response *domain.AuditResponse) string {
	title := template.Name
	if title == "" {
		title = "Audit"
	}

	var b strings.Builder
	writeSection(&b, "Audit Details")
	writeField(&b, "Audited By", response.AuditedBy)
	writeField(&b, "Completed At", formatDate(response.CompletedAt))
	writeField(&b, "Next Audit Due", formatDate(response.NextAuditDue))
	if response.Supersedes != "" {
		writeField(&b, "Corrects Previous Version", response.Supersedes)
	}

	writeSection(&b, "Checklist")
	b.WriteString(`<table class="items"><tr><th>Item</th><th>Status</th><th>Notes</th></tr>`)
	for _, item := range response.Items {
		b.WriteString("<tr><td>")
		b.WriteString(html.EscapeString(item.ItemName))
		b.WriteString(`</td><td class="status-`)
		b.WriteString(html.EscapeString(item.Status))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(item.Status))
		b.WriteString("</td><td>")
		b.WriteString(html.EscapeString(item.Notes))
		b.WriteString("</td></tr>")
	}
	b.WriteString("</table>\n")

	if response.OverallNotes != "" {
		writeSection(&b, "Overall Notes")
		b.WriteString(`<div class="field"><span class="value">`)
		b.WriteString(html.EscapeString(response.OverallNotes))
		b.WriteString("</span></div>\n")
	}

	body := b.String() + auditTableCSS
	return document(title, body)
}

// AuditFilename builds the stored file name for a completed audit PDF.
func AuditFilename(template *domain.AuditTemplate, response *domain.AuditResponse) string {
	name := sanitizeFilenamePart(template.Name)
	if name == "form" {
		name = "audit"
	}
	if response.CompletedAt != nil {
		return name + "-" + response.CompletedAt.Format("2006-01-02") + ".pdf"
	}
	return name + ".pdf"
}

const auditTableCSS = `<style>
table.items { width: 100%; border-collapse: collapse; font-size: 12px; }
table.items th, table.items td { border: 1px solid #bbb; padding: 4px 6px; text-align: left; }
table.items th { background: #f0f0f0; }
td.status-non-compliant { color: #a40000; font-weight: bold; }
td.status-compliant { color: #006400; }
</style>`

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2 January 2006")
}
