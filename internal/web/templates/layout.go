// Package templates renders the upload UI as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

// layoutInfo is the display label and icon of a layout kind.
type layoutInfo struct {
	Label string
	Icon  string
}

var layoutInfos = map[manifest.LayoutKind]layoutInfo{
	manifest.LayoutAlfa:          {"Alfa Transportes", "🚛"},
	manifest.LayoutTNT:           {"TNT Mercúrio", "📦"},
	manifest.LayoutLT:            {"LT (Donizete)", "📑"},
	manifest.LayoutAGE:           {"AGE / MH Logística", "📝"},
	manifest.LayoutTxtExcellence: {"Excellence (Texto)", "📄"},
	manifest.LayoutListaCargas:   {"Lista de Cargas", "📋"},
	manifest.LayoutPendingInit:   {"Aguardando motor de planilhas", "⏳"},
	manifest.LayoutError:         {"Arquivo ilegível", "⛔"},
	manifest.LayoutUnknown:       {"Layout desconhecido", "❓"},
}

// LayoutLabel returns the display name of kind.
func LayoutLabel(kind manifest.LayoutKind) string {
	if info, ok := layoutInfos[kind]; ok {
		return info.Label
	}
	return string(kind)
}

// LayoutIcon returns the badge icon of kind.
func LayoutIcon(kind manifest.LayoutKind) string {
	if info, ok := layoutInfos[kind]; ok {
		return info.Icon
	}
	return "⚪"
}

// LayoutBadge renders the detected layout as an icon and label.
func LayoutBadge(kind manifest.LayoutKind) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		class := "badge"
		if kind.Extractable() {
			class += " badge-ok"
		}
		_, err := fmt.Fprintf(w, `<span class="%s" data-layout="%s">%s %s</span>`,
			class, esc(string(kind)), LayoutIcon(kind), esc(LayoutLabel(kind)))
		return err
	})
}

// ErrorAlert renders a dismissable error box for HTMX swaps. A non-empty
// columns list is shown so the operator can compare it with the layout.
func ErrorAlert(message, action, code string, columns []string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert alert-error" role="alert">`)
		fmt.Fprintf(&b, `<strong>%s</strong>`, esc(message))
		if action != "" {
			fmt.Fprintf(&b, `<p>%s</p>`, esc(action))
		}
		if len(columns) > 0 {
			b.WriteString(`<p class="columns">Colunas no arquivo: `)
			for i, c := range columns {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, `<code>%s</code>`, esc(c))
			}
			b.WriteString(`</p>`)
		}
		fmt.Fprintf(&b, `<small>Código: %s</small></div>`, esc(code))
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// page wraps body in the document shell.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<script src="https://unpkg.com/htmx.org@2.0.4"></script>
<style>%s</style>
</head>
<body>
`, esc(title), styles); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</body>\n</html>\n")
		return err
	})
}

func esc(s string) string {
	return templ.EscapeString(s)
}

const styles = `
body{font-family:"Segoe UI",sans-serif;margin:0;background:#ECF0F1;color:#2C3E50}
header{background:#2C3E50;color:#fff;padding:12px 24px}
main{padding:24px;max-width:1100px;margin:auto}
section{background:#fff;border-radius:6px;padding:16px;margin-bottom:16px}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #ddd;padding:4px 8px;text-align:left}
.badge{padding:2px 8px;border-radius:4px;background:#95A5A6;color:#fff}
.badge-ok{background:#27AE60}
.alert-error{background:#FADBD8;border:1px solid #E74C3C;padding:8px;border-radius:4px}
.muted{color:#7F8C8D}
`
