package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kunal1274/fms-dev-sub000/internal/records"
	"github.com/kunal1274/fms-dev-sub000/report"
)

// Renderer converts HTML to PDF.
type Renderer interface {
	RenderHTML(ctx context.Context, html string, opts report.RenderOptions) ([]byte, error)
}

// PDFExporter renders a projection as a landscape PDF table.
type PDFExporter struct {
	Renderer Renderer
	Now      func() time.Time
}

// Render returns the PDF bytes of rows under title.
func (p *PDFExporter) Render(ctx context.Context, title string, cols []Column, rows []records.Record) ([]byte, error) {
	if p == nil || p.Renderer == nil {
		return nil, fmt.Errorf("pdf exporter not initialised")
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	html := buildHTML(title, now().UTC(), cols, rows)
	return p.Renderer.RenderHTML(ctx, html, report.RenderOptions{Landscape: true, WaitDelay: "500ms"})
}

func buildHTML(title string, generated time.Time, cols []Column, rows []records.Record) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;font-size:11px;}h1{font-size:18px;margin-bottom:4px;}p.meta{color:#666;margin-top:0;}table{width:100%;border-collapse:collapse;}th,td{border:1px solid #ddd;padding:4px 6px;text-align:left;}th{background:#f5f5f5;}")
	b.WriteString("</style></head><body>")
	b.WriteString(fmt.Sprintf("<h1>%s</h1>", templateEscape(title)))
	b.WriteString(fmt.Sprintf("<p class=\"meta\">%d records, generated %s</p>", len(rows), generated.Format(time.RFC1123)))

	b.WriteString("<table><thead><tr>")
	for _, c := range cols {
		b.WriteString("<th>")
		b.WriteString(templateEscape(c.Header))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, rec := range rows {
		b.WriteString("<tr>")
		for _, cell := range Row(cols, rec) {
			b.WriteString("<td>")
			b.WriteString(templateEscape(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}

func templateEscape(v string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(v)
}
