package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhilipWidoff/SmartPDF/types"
)

type fakeQueryService struct {
	result *types.QueryResult
	err    error
	calls  int
}

func (f *fakeQueryService) Answer(ctx context.Context, document, question string, history []types.ConversationTurn, isNewConversation bool) (*types.QueryResult, error) {
	f.calls++
	return f.result, f.err
}

func newQueryRouter(svc *fakeQueryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/query", NewQueryHandler(svc).HandleQuery)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleQuery_Success(t *testing.T) {
	svc := &fakeQueryService{result: &types.QueryResult{
		Question:     "q",
		Answer:       "a",
		HasCitations: true,
		Citations:    []types.Citation{{Page: 2, Preview: "Referenced on page 2"}},
	}}
	router := newQueryRouter(svc)

	w := postJSON(t, router, "/api/v1/query", types.QueryRequest{
		Question: "q",
		Document: "rules.pdf",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status string            `json:"status"`
		Data   types.QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "a", resp.Data.Answer)
	assert.True(t, resp.Data.HasCitations)
}

func TestHandleQuery_MissingQuestion(t *testing.T) {
	svc := &fakeQueryService{}
	router := newQueryRouter(svc)

	w := postJSON(t, router, "/api/v1/query", types.QueryRequest{Document: "rules.pdf"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.calls, "no processing on a client error")
}

func TestHandleQuery_MissingDocument(t *testing.T) {
	svc := &fakeQueryService{}
	router := newQueryRouter(svc)

	w := postJSON(t, router, "/api/v1/query", types.QueryRequest{Question: "q"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.calls)
}

func TestHandleQuery_InvalidBody(t *testing.T) {
	svc := &fakeQueryService{}
	router := newQueryRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.calls)
}

func TestHandleQuery_ServiceFailure(t *testing.T) {
	svc := &fakeQueryService{err: errors.New("index build failed")}
	router := newQueryRouter(svc)

	w := postJSON(t, router, "/api/v1/query", types.QueryRequest{
		Question: "q",
		Document: "rules.pdf",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
