package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PhilipWidoff/SmartPDF/types"
)

// QueryService is the orchestration entry point the handler delegates to.
type QueryService interface {
	Answer(ctx context.Context, document, question string, history []types.ConversationTurn, isNewConversation bool) (*types.QueryResult, error)
}

type QueryHandler struct {
	queryService QueryService
}

func NewQueryHandler(queryService QueryService) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
	}
}

// HandleQuery answers one question about one document. Missing question or
// document is a client error and is rejected before any index work happens.
func (h *QueryHandler) HandleQuery(c *gin.Context) {
	var req types.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}

	if req.Question == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "No question provided",
		})
		return
	}
	if req.Document == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "No document provided",
		})
		return
	}

	result, err := h.queryService.Answer(c.Request.Context(), req.Document, req.Question, req.History, req.NewConversation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   result,
	})
}
