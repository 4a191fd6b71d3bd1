package templates

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/manifestnorm/internal/history"
	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

// IndexData feeds the upload page.
type IndexData struct {
	EngineState string
	NextNumber  int
	Layouts     []manifest.LayoutKind
	Runs        []history.Run
}

// Index renders the upload page.
func Index(data IndexData) templ.Component {
	return page("Limpeza de Manifestos", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<header><h1>Limpeza de Manifestos</h1></header><main>`)

		fmt.Fprintf(&b, `<section id="status" class="muted">Motor de planilhas: <span data-state="%s">%s</span> · Próximo arquivo nº %d</section>`,
			esc(data.EngineState), esc(data.EngineState), data.NextNumber)

		b.WriteString(`<section><form hx-post="/api/process" hx-target="#preview" hx-encoding="multipart/form-data">`)
		b.WriteString(`<input type="file" name="file" accept=".xls,.xlsx,.csv,.txt" required> `)
		b.WriteString(`<select name="layout"><option value="">Detectar automaticamente</option>`)
		for _, k := range data.Layouts {
			fmt.Fprintf(&b, `<option value="%s">%s %s</option>`, esc(string(k)), LayoutIcon(k), esc(LayoutLabel(k)))
		}
		b.WriteString(`</select> <button type="submit">Processar</button></form></section>`)
		b.WriteString(`<section id="preview"></section>`)

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := HistoryTable(data.Runs).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main>`)
		return err
	}))
}

// HistoryTable renders recent processing runs.
func HistoryTable(runs []history.Run) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section id="history"><h2>Histórico</h2>`)
		if len(runs) == 0 {
			b.WriteString(`<p class="muted">Nenhum arquivo processado.</p></section>`)
			_, err := io.WriteString(w, b.String())
			return err
		}
		b.WriteString(`<table><thead><tr><th>Quando</th><th>Arquivo</th><th>Layout</th><th>Linhas</th><th>Status</th></tr></thead><tbody>`)
		for _, r := range runs {
			fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%s %s</td><td>%d</td><td title="%s">%s</td></tr>`,
				r.CreatedAt.Local().Format("02/01/2006 15:04"),
				esc(r.FileName),
				LayoutIcon(r.Layout), esc(LayoutLabel(r.Layout)),
				r.Rows,
				esc(r.Error), esc(string(r.Status)))
		}
		b.WriteString(`</tbody></table></section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// formatDuration is used for run timings in the preview header.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1f s", d.Seconds())
}
