package templates

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

// PreviewLimit caps the rows shown in the browser. Exports always carry
// the full table.
const PreviewLimit = 200

// PreviewData feeds the processed-table partial.
type PreviewData struct {
	SessionID string
	Table     *manifest.Table
	NextName  string
	Elapsed   time.Duration
}

// Preview renders a processed table with its export actions.
func Preview(p PreviewData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="preview" data-session="%s"><p>`, esc(p.SessionID)); err != nil {
			return err
		}
		if err := LayoutBadge(p.Table.Layout).Render(ctx, w); err != nil {
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, ` %s · %d linhas · %s</p>`, esc(p.Table.Source), p.Table.Len(), formatDuration(p.Elapsed))

		if p.Table.Empty() {
			b.WriteString(`<p class="muted">Nenhuma nota válida encontrada.</p></div>`)
			_, err := io.WriteString(w, b.String())
			return err
		}

		base := "/api/sessions/" + esc(p.SessionID)
		fmt.Fprintf(&b, `<p><a href="%s/export.csv">CSV</a> · <a href="%s/export.xlsx">XLSX</a> · `, base, base)
		fmt.Fprintf(&b, `<button hx-post="%s/save" hx-target="#preview">Salvar '%s'</button></p>`, base, esc(p.NextName))

		b.WriteString(`<table><thead><tr><th>Item</th>`)
		for _, t := range manifest.ColumnTitles {
			fmt.Fprintf(&b, `<th>%s</th>`, esc(t))
		}
		b.WriteString(`</tr></thead><tbody>`)
		for i, r := range p.Table.Records {
			if i == PreviewLimit {
				fmt.Fprintf(&b, `<tr><td colspan="4" class="muted">… mais %d linhas</td></tr>`, p.Table.Len()-PreviewLimit)
				break
			}
			fmt.Fprintf(&b, `<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				r.Item, esc(r.DocNumber), esc(r.ExpectedDate), esc(r.ActualDate))
		}
		b.WriteString(`</tbody></table></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Saved confirms a written export.
func Saved(name, path string, number int) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert"><strong>Salvo: %s</strong><p class="muted">%s · nº %d</p></div>`,
			esc(name), esc(path), number)
		return err
	})
}

// Classified renders the detection result of an uploaded file.
func Classified(file string, kind manifest.LayoutKind) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<p class="classified">%s: `, esc(file)); err != nil {
			return err
		}
		if err := LayoutBadge(kind).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</p>`)
		return err
	})
}
