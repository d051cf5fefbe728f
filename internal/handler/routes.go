package handler

import (
	"net/http"
	"strings"

	"github.com/msomdec/portfolio-api/internal/service"
)

// StaticFiles maps a URL prefix onto a directory served read-only.
type StaticFiles struct {
	Prefix string // e.g. "/static/uploads/"
	Dir    string
}

// RegisterRoutes sets up all HTTP routes on the given mux.
// static and metrics are optional.
func RegisterRoutes(mux *http.ServeMux, uploads *service.UploadService, orders *service.OrderService, static *StaticFiles, metrics http.Handler) {
	uploadHandler := NewUploadHandler(uploads)
	orderHandler := NewOrderHandler(orders)

	mux.HandleFunc("GET /{$}", HandleRoot)
	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /orders", orderHandler.HandleCreate)
	mux.HandleFunc("GET /orders", orderHandler.HandleList)
	mux.HandleFunc("PATCH /orders/{id}", orderHandler.HandleUpdate)

	mux.HandleFunc("POST /uploads", uploadHandler.HandleCreate)
	mux.HandleFunc("GET /uploads", uploadHandler.HandleList)
	mux.HandleFunc("DELETE /uploads/{id}", uploadHandler.HandleDelete)

	if static != nil {
		mux.Handle("GET "+static.Prefix, http.StripPrefix(static.Prefix, noDirListing(http.FileServer(http.Dir(static.Dir)))))
	}
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

// noDirListing hides directory indexes so only stored files are reachable.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
