package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Table writes rows under headers: a box table in text mode and a pipe
// table otherwise. JSON callers should use JSON instead.
func (r *Renderer) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		r.Muted("(0 rows)")
		return
	}

	t := table.NewWriter()

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeText {
		t.SetStyle(table.StyleLight)
		r.Println(t.Render())
		return
	}
	r.Println(t.RenderMarkdown())
}

// Count formats n with a noun, pluralized naively.
func Count(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
