package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

//go:embed web/templates/*.html
var templateFS embed.FS

//go:embed web/static
var staticFS embed.FS

// staticHandler serves the embedded stylesheet and scripts under /static/.
func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "web/static")
	if err != nil {
		// The subtree is part of the binary; failure here is a build defect.
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// renderer holds one parsed template set per page, each paired with the
// shared layout.
type renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

func newRenderer(logger *slog.Logger) (*renderer, error) {
	pageNames := []string{"list.html", "form.html", "notfound.html"}

	rd := &renderer{
		pages:  make(map[string]*template.Template, len(pageNames)),
		logger: logger,
	}
	funcs := template.FuncMap{
		"add1": func(i int) int { return i + 1 },
	}
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS,
			"web/templates/layout.html",
			"web/templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		rd.pages[name] = tmpl
	}
	return rd, nil
}

// render writes the page to a buffer first so a template failure produces a
// clean 500 instead of a half-written body.
func (rd *renderer) render(w http.ResponseWriter, status int, page string, data interface{}) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.logger.Error("Unknown template requested", "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		rd.logger.Error("Failed to render template", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// --- Flash messages ---

const flashCookieName = "phonebook_flash"

// flash is a one-shot toast shown on the next page render.
type flash struct {
	Kind    string // "success" or "error"
	Message string
}

func setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(kind + "|" + message),
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60,
	})
}

// popFlash reads and clears the flash cookie.
func popFlash(w http.ResponseWriter, r *http.Request) *flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:   flashCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	kind, message, found := strings.Cut(value, "|")
	if !found {
		return nil
	}
	return &flash{Kind: kind, Message: message}
}
