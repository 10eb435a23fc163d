package handlers

import (
	"path/filepath"
	"strings"

	"socios/internal/middleware"
	"socios/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DocumentHandler handles HTTP requests for member documents.
type DocumentHandler struct {
	documents *services.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// RegisterRoutes registers the document routes on router, which is mounted at /members
// and requires authentication.
func (h *DocumentHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/:id/status", h.HandleStatus)
	router.Post("/:id/documents", h.HandleUpload)
	router.Get("/:id/documents/:docID/file", h.HandleDownload)
}

// HandleUpload stores a multipart file under the field "document" with the label in "doc_type".
func (h *DocumentHandler) HandleUpload(c *fiber.Ctx) error {
	docType := strings.TrimSpace(c.FormValue("doc_type"))
	if docType == "" {
		return respondError(c, services.NewValidationError("doc_type", "doc_type is required"), "Upload failed")
	}
	file, err := c.FormFile("document")
	if err != nil {
		return respondError(c, services.NewValidationError("document", "a file is required"), "Upload failed")
	}

	body, err := file.Open()
	if err != nil {
		return respondError(c, err, "Upload failed")
	}
	defer body.Close()

	doc, err := h.documents.Upload(c.UserContext(), middleware.UserID(c), c.Params("id"), services.UploadInput{
		DocType:     docType,
		Filename:    file.Filename,
		Size:        file.Size,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Body:        body,
	})
	if err != nil {
		return respondError(c, err, "Upload failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

// HandleStatus reports which documents the member still has to submit.
func (h *DocumentHandler) HandleStatus(c *fiber.Ctx) error {
	member, status, err := h.documents.Status(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not evaluate member")
	}
	return c.JSON(fiber.Map{
		"member_id": member.ID,
		"complete":  status.Complete(),
		"status":    status,
	})
}

// HandleDownload streams the stored file of a document.
func (h *DocumentHandler) HandleDownload(c *fiber.Ctx) error {
	rc, doc, err := h.documents.Open(c.UserContext(), middleware.UserID(c), c.Params("id"), c.Params("docID"))
	if err != nil {
		return respondError(c, err, "Could not retrieve document")
	}

	c.Attachment(downloadName(doc.FilePath))
	// fasthttp closes rc once the body is written.
	return c.SendStream(rc)
}

// downloadName strips the storage prefix and the unique tag from a stored key.
func downloadName(key string) string {
	name := filepath.Base(key)
	if _, rest, ok := strings.Cut(name, "_"); ok && rest != "" {
		return rest
	}
	return name
}
