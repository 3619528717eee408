package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/PhilipWidoff/SmartPDF/service"
	"github.com/PhilipWidoff/SmartPDF/types"
)

type DocumentHandler struct {
	documents service.DocumentStore
	staticDir string
}

func NewDocumentHandler(documents service.DocumentStore, staticDir string) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		staticDir: staticDir,
	}
}

// HandleList returns the identifiers of every available document.
func (h *DocumentHandler) HandleList(c *gin.Context) {
	documents, err := h.documents.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   types.DocumentListResponse{Documents: documents},
	})
}

// ServeDocument streams a raw PDF to the client.
func (h *DocumentHandler) ServeDocument(c *gin.Context) {
	requestedName := c.Query("file")
	if requestedName == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "File parameter is required",
		})
		return
	}

	path, err := h.documents.Path(requestedName)
	if err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "File not found",
		})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", filepath.Base(path)))
	c.File(path)
}

// ServeBackground serves the frontend background image from the static dir.
func (h *DocumentHandler) ServeBackground(c *gin.Context) {
	c.File(filepath.Join(h.staticDir, "background.jpg"))
}
