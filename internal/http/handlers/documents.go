package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-docchat/internal/http/response"
)

type DocumentHandler struct {
	backend     Backend
	maxFileSize int64
	allowed     func(contentType string) bool
	readLimit   int64
}

// NewDocumentHandler serves document routes. readLimit caps how many bytes
// of each upload are handed to the backend.
func NewDocumentHandler(backend Backend, maxFileSize, readLimit int64, allowed func(contentType string) bool) *DocumentHandler {
	return &DocumentHandler{backend: backend, maxFileSize: maxFileSize, allowed: allowed, readLimit: readLimit}
}

// POST /documents/upload/ (multipart field "file")
func (h *DocumentHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
		response.RespondError(c, http.StatusBadRequest, "file_too_large",
			fmt.Errorf("file exceeds the %d byte limit", h.maxFileSize))
		return
	}
	ct := fh.Header.Get("Content-Type")
	if h.allowed != nil && !h.allowed(ct) {
		response.RespondError(c, http.StatusBadRequest, "unsupported_file_type",
			fmt.Errorf("file type %q is not supported", ct))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()
	head, err := io.ReadAll(io.LimitReader(f, h.readLimit))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	doc, err := h.backend.AddDocument(fh.Filename, ct, fh.Size, head)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

// GET /documents/
func (h *DocumentHandler) List(c *gin.Context) {
	response.RespondOK(c, h.backend.ListDocuments())
}

// DELETE /documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.backend.DeleteDocument(c.Param("id")); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Document deleted"})
}

// GET /documents/:id/status
func (h *DocumentHandler) Status(c *gin.Context) {
	doc, err := h.backend.DocumentStatus(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, doc)
}
