package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/case-intake/dto"
	"github.com/Aashish23092/case-intake/service"
)

type DocumentHandler struct {
	workflowService *service.WorkflowService
	previews        *service.PreviewRegistry
}

func NewDocumentHandler(workflowService *service.WorkflowService, previews *service.PreviewRegistry) *DocumentHandler {
	return &DocumentHandler{
		workflowService: workflowService,
		previews:        previews,
	}
}

// Upload handles POST /applications/:id/exhibits/:exhibit/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}

	headers := form.File["files[]"]
	if len(headers) == 0 {
		h.sendError(c, http.StatusBadRequest, "No files provided", nil)
		return
	}

	files := make([]service.RawFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			h.sendError(c, http.StatusBadRequest, "Failed to open uploaded file", err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.sendError(c, http.StatusBadRequest, "Failed to read uploaded file", err)
			return
		}

		files = append(files, service.RawFile{
			Name:     header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	log.Printf("Ingesting %d files for exhibit %s", len(files), c.Param("exhibit"))

	resp, err := h.workflowService.UploadDocuments(c.Param("id"), c.Param("exhibit"), files)
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to ingest documents", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Remove handles DELETE /applications/:id/exhibits/:exhibit/documents/:docId
func (h *DocumentHandler) Remove(c *gin.Context) {
	resp, err := h.workflowService.RemoveDocument(c.Param("id"), c.Param("exhibit"), c.Param("docId"))
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to remove document", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Preview handles GET /previews/:token
func (h *DocumentHandler) Preview(c *gin.Context) {
	data, mimeType, ok := h.previews.Get(c.Param("token"))
	if !ok {
		h.sendError(c, http.StatusNotFound, "Preview not found or revoked", nil)
		return
	}
	c.Data(http.StatusOK, mimeType, data)
}

// sendError sends a structured error response
func (h *DocumentHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "DOCUMENT_ERROR",
		Message: errorMsg,
		Code:    statusCode,
	})
}
