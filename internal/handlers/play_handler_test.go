package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CityQuest-2025/quest-service/internal/repositories/memory"
	"github.com/CityQuest-2025/quest-service/internal/services"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

func newScanRouter(t *testing.T) (*memory.Store, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assignments := services.NewAssignmentService(store, nil, logger, rand.New(rand.NewSource(1)))

	handler := NewPlayHandler(assignments, nil, nil, nil, nil, nil, nil, logger)
	router := gin.New()
	router.POST("/api/scan", handler.Scan)
	return store, router
}

func postScan(t *testing.T, router *gin.Engine, sessionID, code string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(gin.H{"session_id": sessionID, "code": code})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestScan_UnknownSessionUnauthorized(t *testing.T) {
	_, router := newScanRouter(t)

	recorder := postScan(t, router, "ghost", "1")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "Unknown session", response.Message)
}

func TestScan_MissingFieldsBadRequest(t *testing.T) {
	_, router := newScanRouter(t)

	recorder := postScan(t, router, "", "1")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
