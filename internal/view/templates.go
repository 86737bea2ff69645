package view

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gestion-users/gestion-users/web"
)

// Page names served by the application.
const (
	PageLogin = "login.html"
	PageUsers = "users.html"
)

// Engine serves the embedded HTML pages verbatim.
type Engine struct {
	pages map[string][]byte
}

// NewEngine loads every known page from the embedded filesystem.
func NewEngine() (*Engine, error) {
	return newEngine(web.Pages, "pages")
}

func newEngine(fsys fs.FS, dir string) (*Engine, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}
	pages := make(map[string][]byte, 2)
	for _, name := range []string{PageLogin, PageUsers} {
		data, err := fs.ReadFile(sub, name)
		if err != nil {
			return nil, fmt.Errorf("view: load %s: %w", name, err)
		}
		pages[name] = data
	}
	return &Engine{pages: pages}, nil
}

// Render writes the named page with a 200 status.
func (e *Engine) Render(w http.ResponseWriter, name string) error {
	if e == nil {
		return fmt.Errorf("page engine not initialised")
	}
	data, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := w.Write(data)
	return err
}
