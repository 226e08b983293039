// Package site serves the embedded single page app.
package site

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"
)

// Error constants
var (
	ErrServe = errors.New("site serve failed")
)

// Register attaches the SPA at / on mux. It must be registered after the
// API so the more specific patterns win.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler())
}

// RootHandler serves embedded assets and falls back to the page shell for
// client side routes.
type RootHandler struct {
	files http.Handler
	fsys  http.FileSystem
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	fsys := FS()
	return &RootHandler{files: http.FileServer(fsys), fsys: fsys}
}

// ServeHTTP implements http.Handler.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	name := path.Clean("/" + r.URL.Path)
	if name != "/" && !h.exists(name) {
		if path.Ext(name) != "" || strings.HasPrefix(name, "/api/") {
			http.NotFound(w, r)
			return
		}
		h.serveShell(w, r)
		return
	}
	h.files.ServeHTTP(w, r)
}

func (h *RootHandler) exists(name string) bool {
	f, err := h.fsys.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

func (h *RootHandler) serveShell(w http.ResponseWriter, r *http.Request) {
	f, err := h.fsys.Open("/index.html")
	if err != nil {
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", info.ModTime(), f)
}
