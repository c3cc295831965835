// Package web renders the server-side pages from embedded templates.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages lists every page template; each is parsed with the layout and partials.
var Pages = []string{
	"index",
	"login",
	"join",
	"simulations",
	"new",
	"detail",
	"edit",
	"settings",
	"error",
}

var printer = message.NewPrinter(language.French)

// FormatCurrency renders a salary as whole euros the French way, e.g. "49 000 €".
func FormatCurrency(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v))) + "\u00a0€"
}

// FormatWeight renders a weight for a number input without trailing zeros.
func FormatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var funcs = template.FuncMap{
	"currency": FormatCurrency,
	"weight":   FormatWeight,
	"dict": func(pairs ...any) (map[string]any, error) {
		if len(pairs)%2 != 0 {
			return nil, fmt.Errorf("dict: odd number of arguments")
		}
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
}

type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout together with every page.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, name := range Pages {
		t, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Static serves the embedded stylesheet and script.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
