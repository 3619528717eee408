package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PhilipWidoff/SmartPDF/service"
	"github.com/PhilipWidoff/SmartPDF/types"
)

type UploadHandler struct {
	fileService *service.FileService
}

func NewUploadHandler(fileService *service.FileService) *UploadHandler {
	return &UploadHandler{
		fileService: fileService,
	}
}

const maxUploadSize = 50 << 20

func (h *UploadHandler) HandleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid file",
		})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "File too large",
		})
		return
	}

	storedName, err := h.fileService.SaveUpload(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.UploadResponse{
			OriginalName: file.Filename,
			Document:     storedName,
		},
	})
}
