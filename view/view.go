// Package view renders html/template files from an fs.FS with a shared
// layout, a parsed-template cache and the common func map.
package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/invoice-wemaad/i18n"
)

const layoutName = "layout.html"

// Renderer parses templates lazily and caches them per (language, name).
type Renderer struct {
	fsys  fs.FS
	extra template.FuncMap

	mu    sync.RWMutex
	cache map[string]*template.Template
}

type Option func(*Renderer)

// WithFuncs merges extra helpers into every template's func map.
func WithFuncs(f template.FuncMap) Option {
	return func(r *Renderer) {
		for k, v := range f {
			r.extra[k] = v
		}
	}
}

func New(fsys fs.FS, opts ...Option) *Renderer {
	r := &Renderer{fsys: fsys, extra: template.FuncMap{}, cache: map[string]*template.Template{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Funcs returns the standard func map for lang.
func Funcs(lang string) template.FuncMap {
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"year": func() int { return time.Now().Year() },
	}
}

// Render executes name into w. Pages that do not carry their own doctype are
// wrapped in layout.html when the filesystem provides one; the page then
// defines a "content" block.
func (r *Renderer) Render(w io.Writer, lang, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	t, err := r.lookup(lang, name)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}

// RenderString is Render into a string.
func (r *Renderer) RenderString(lang, name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, lang, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) lookup(lang, name string) (*template.Template, error) {
	key := lang + "/" + name
	r.mu.RLock()
	t, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}
	t, err := r.parse(lang, name)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.cache[key] = t
	r.mu.Unlock()
	return t, nil
}

func (r *Renderer) parse(lang, name string) (*template.Template, error) {
	content, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("view: read %s: %w", name, err)
	}
	funcs := Funcs(lang)
	for k, v := range r.extra {
		funcs[k] = v
	}
	useLayout := !strings.Contains(strings.ToLower(string(content)), "<!doctype")
	if useLayout {
		if _, statErr := fs.Stat(r.fsys, layoutName); statErr != nil {
			useLayout = false
		}
	}
	if useLayout {
		t, err := template.New(layoutName).Funcs(funcs).ParseFS(r.fsys, layoutName, name)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", name, err)
		}
		return t, nil
	}
	t, err := template.New(name).Funcs(funcs).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("view: parse %s: %w", name, err)
	}
	if t == nil {
		return nil, errors.New("view: template not parsed")
	}
	return t, nil
}

