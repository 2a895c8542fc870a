package view

import (
	"embed"
	"net/http"
)

// Asset paths inside the FS keep their static/ prefix, so the handler
// answers /static/... without stripping anything.
//
//go:embed static
var staticFS embed.FS

// Static serves the embedded assets. Mount it under /static/.
func Static() http.Handler {
	return http.FileServer(http.FS(staticFS))
}
