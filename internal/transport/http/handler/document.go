package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"multimodal-knowledge-assistant/internal/app"
	"multimodal-knowledge-assistant/internal/extract"
	"multimodal-knowledge-assistant/internal/transport/http/response"
)

const maxUploadSize = 50 << 20 // 50 MB

type DocumentHandler struct {
	ingest *app.IngestService
}

func NewDocumentHandler(ingest *app.IngestService) *DocumentHandler {
	return &DocumentHandler{ingest: ingest}
}

type IngestTextRequest struct {
	Name    string `json:"name"`
	Content string `json:"content" binding:"required"`
}

// Upload accepts a multipart form with "file", extracts its text, and
// ingests it into the knowledge base.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 50MB)")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	result, err := h.ingest.IngestFile(c.Request.Context(), file.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedKind):
			response.Error(c, http.StatusBadRequest, response.CodeUnsupportedKind, err.Error())
		case errors.Is(err, app.ErrEmptyDocument):
			response.Error(c, http.StatusBadRequest, response.CodeEmptyDocument, "file contains no extractable text")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed: "+err.Error())
		}
		return
	}

	response.OK(c, result)
}

// IngestText ingests raw text without a file upload.
func (h *DocumentHandler) IngestText(c *gin.Context) {
	var req IngestTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.ingest.IngestText(c.Request.Context(), req.Name, req.Content)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed: "+err.Error())
		}
		return
	}

	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.ingest.ListDocuments(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	docID := c.Param("doc_id")
	if err := h.ingest.DeleteDocument(c.Request.Context(), docID); err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_doc_id": docID})
}
