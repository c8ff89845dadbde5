package upload

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/oncoverse/oncoverse/internal/apperr"
	"github.com/oncoverse/oncoverse/internal/middleware"
	"github.com/oncoverse/oncoverse/internal/respond"
)

// FileURLPrefix is where stored files are served from.
const FileURLPrefix = "/api/v1/files/"

// Handler exposes multipart upload and download endpoints.
type Handler struct {
	store    Store
	maxFiles int
	maxBytes int64
	logger   *slog.Logger
}

// NewHandler constructs the upload HTTP handler.
func NewHandler(store Store, maxFiles int, maxBytes int64, logger *slog.Logger) *Handler {
	if maxFiles < 1 {
		maxFiles = 10
	}
	if maxBytes < 1 {
		maxBytes = 10 << 20
	}
	return &Handler{store: store, maxFiles: maxFiles, maxBytes: maxBytes, logger: logger}
}

// fileResult is one uploaded file in the response payload.
type fileResult struct {
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
}

// Upload stores every file in the multipart "files" field and returns their
// serving URLs.
func (h *Handler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperr.Invalid("No files uploaded")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return apperr.Invalid("No files uploaded")
	}
	if len(files) > h.maxFiles {
		return apperr.Invalid(fmt.Sprintf("At most %d files per upload", h.maxFiles))
	}

	uploadedBy := middleware.SubjectID(c)
	results := make([]fileResult, 0, len(files))
	for _, fh := range files {
		if fh.Size > h.maxBytes {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge,
				fmt.Sprintf("File %s exceeds the %d byte limit", fh.Filename, h.maxBytes))
		}

		f, err := fh.Open()
		if err != nil {
			return apperr.Internal(fmt.Errorf("open upload %s: %w", fh.Filename, err))
		}
		content, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
		f.Close()
		if err != nil {
			return apperr.Internal(fmt.Errorf("read upload %s: %w", fh.Filename, err))
		}
		if int64(len(content)) > h.maxBytes {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge,
				fmt.Sprintf("File %s exceeds the %d byte limit", fh.Filename, h.maxBytes))
		}

		contentType := fh.Header.Get(fiber.HeaderContentType)
		if contentType == "" {
			contentType = fiber.MIMEOctetStream
		}
		meta := Metadata{
			ID:          uuid.New().String(),
			FileName:    fh.Filename,
			ContentType: contentType,
			Size:        int64(len(content)),
			UploadedBy:  uploadedBy,
			CreatedAt:   time.Now().UTC(),
		}
		if err := h.store.Save(c.UserContext(), meta, content); err != nil {
			return apperr.Internal(fmt.Errorf("store upload %s: %w", fh.Filename, err))
		}

		results = append(results, fileResult{
			OriginalName: fh.Filename,
			URL:          FileURLPrefix + meta.ID,
			Size:         meta.Size,
			Type:         meta.ContentType,
		})
	}

	h.logger.Info("files uploaded", slog.Int("count", len(results)), slog.String("uploaded_by", uploadedBy))
	return respond.Data(c, http.StatusOK, "Files uploaded successfully", fiber.Map{"files": results})
}

// Download serves a stored file by id.
func (h *Handler) Download(c *fiber.Ctx) error {
	meta, content, err := h.store.Open(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, meta.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", meta.FileName))
	return c.Status(http.StatusOK).Send(content)
}
