// Package web serves the embedded single-page dashboard.
package web

import (
	"embed"
	"net/http"
)

//go:embed static
var staticFS embed.FS

//go:embed static/index.html
var indexHTML []byte

// HandleIndex serves the dashboard page at /.
func HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// StaticHandler serves embedded dashboard assets under /static/.
func StaticHandler() http.Handler {
	return http.FileServer(http.FS(staticFS))
}
