package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oncoverse/oncoverse/internal/upload"
)

// RegisterUploadRoutes wires file upload and download.
func RegisterUploadRoutes(r fiber.Router, h *upload.Handler, requireAuth, accessScope fiber.Handler) {
	r.Post("/upload", requireAuth, accessScope, h.Upload)
	r.Get("/files/:id", h.Download)
}
