package management

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers file management routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/management/files", func(r chi.Router) {
		r.Get("/", h.ListFiles)
		r.Post("/", h.UploadFile)
		r.Delete("/{file_name}", h.RemoveFile)
	})
}
