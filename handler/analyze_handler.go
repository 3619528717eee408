package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PhilipWidoff/SmartPDF/types"
)

var analysisKinds = map[string]bool{
	types.AnalysisTopics:      true,
	types.AnalysisEntities:    true,
	types.AnalysisReadability: true,
	types.AnalysisSummary:     true,
	types.AnalysisSentiment:   true,
	types.AnalysisKeywords:    true,
	types.AnalysisQA:          true,
}

type AnalysisService interface {
	Analyze(ctx context.Context, document, kind, question string) (interface{}, error)
}

type AnalyzeHandler struct {
	analysisService AnalysisService
}

func NewAnalyzeHandler(analysisService AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{
		analysisService: analysisService,
	}
}

func (h *AnalyzeHandler) HandleAnalyze(c *gin.Context) {
	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
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
	if !analysisKinds[req.Kind] {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Unknown analysis kind: " + req.Kind,
		})
		return
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), req.Document, req.Kind, req.Question)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.AnalyzeResponse{
			Document: req.Document,
			Kind:     req.Kind,
			Result:   result,
		},
	})
}
