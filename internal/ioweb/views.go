package ioweb

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pages = []string{
	"countries",
	"country",
	"detainee",
	"longest",
	"stats",
	"error",
}

// views holds one template set per page, each combined with the layout.
type views map[string]*template.Template

func loadViews() (views, error) {
	res := make(views, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(
			templateFiles,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("cannot parse template %s: %w", page, err)
		}
		res[page] = tmpl
	}
	return res, nil
}

// render executes a page into a buffer first, so a template failure
// does not leave a half written response.
func (v views) render(
	w http.ResponseWriter,
	status int,
	page string,
	data any,
) error {
	tmpl, ok := v[page]
	if !ok {
		return fmt.Errorf("unknown page %s", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("cannot render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
