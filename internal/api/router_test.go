package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/mobility-metrics-go/internal/analysis"
	"github.com/jengzang/mobility-metrics-go/internal/config"
	"github.com/jengzang/mobility-metrics-go/internal/database"
	"github.com/jengzang/mobility-metrics-go/internal/middleware"
	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/repository"
	"github.com/jengzang/mobility-metrics-go/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	svc    *service.DatasetService
	token  string
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := database.Open(database.Config{Path: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	logger := zaptest.NewLogger(t)
	require.NoError(t, database.Migrate(conn, logger))

	cfg := &config.Config{
		JWTSecret: testSecret,
		RateLimit: rateLimit,
		CacheSize: 4,
		Defaults: models.Params{
			DistanceThreshold:    5,
			TimeThreshold:        10,
			RadiusThreshold:      3,
			ContactTimeThreshold: 10,
			QuadrantParts:        4,
		},
	}

	store := repository.NewStore(conn)
	svc, err := service.NewDatasetService(store, analysis.NewPipeline(store, logger, 2), cfg.Defaults, cfg.CacheSize, logger)
	require.NoError(t, err)

	router, limiter := SetupRouter(cfg, svc, logger)
	if limiter != nil {
		t.Cleanup(limiter.Close)
	}

	token, err := middleware.IssueToken(testSecret, "tester", time.Hour)
	require.NoError(t, err)

	return &testServer{router: router, svc: svc, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, auth bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func uploadBody() map[string]any {
	var points []map[string]any
	for _, ts := range []float64{0, 5, 10} {
		points = append(points,
			map[string]any{"id": 1, "x": 0, "y": 0, "time": ts},
			map[string]any{"id": 2, "x": 1, "y": 0, "time": ts},
			map[string]any{"id": 3, "x": 100, "y": 100, "time": ts},
		)
	}
	return map[string]any{
		"params": map[string]any{"dataset_name": "walk", "label": "walkers"},
		"points": points,
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestDatasetLifecycle(t *testing.T) {
	s := newTestServer(t, 0)

	w, _ := s.do(t, http.MethodPost, "/api/v1/datasets", uploadBody(), false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/v1/datasets", uploadBody(), true)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var run models.ProcessingRun
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.Equal(t, "walk", run.Dataset)
	s.svc.Wait()

	w, env = s.do(t, http.MethodGet, "/api/v1/runs/"+run.ID, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.Equal(t, models.RunStatusCompleted, run.Status)

	w, env = s.do(t, http.MethodGet, "/api/v1/runs?dataset=walk&status=completed", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var runs struct {
		Runs []models.ProcessingRun `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &runs))
	assert.Len(t, runs.Runs, 1)

	w, env = s.do(t, http.MethodGet, "/api/v1/datasets/walk/global", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var global models.GlobalMetrics
	require.NoError(t, json.Unmarshal(env.Data, &global))
	assert.Equal(t, 1, global.NumContacts)
	assert.Equal(t, 2, global.NumStayPoints)
	assert.Equal(t, "walkers", global.Label)

	w, env = s.do(t, http.MethodGet, "/api/v1/datasets/walk/metrics?entity_id=1", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var metrics struct {
		Metrics []models.EntityMetrics `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &metrics))
	require.Len(t, metrics.Metrics, 1)
	assert.Equal(t, 1, metrics.Metrics[0].NumContacts)

	w, env = s.do(t, http.MethodGet, "/api/v1/datasets/walk/quadrants", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var quadrants struct {
		Quadrants []models.QuadrantCell `json:"quadrants"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &quadrants))
	assert.Len(t, quadrants.Quadrants, 2)

	for _, path := range []string{"config", "staypoints", "visits", "journeys", "contacts"} {
		w, _ = s.do(t, http.MethodGet, "/api/v1/datasets/walk/"+path, nil, false)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w, env = s.do(t, http.MethodGet, "/api/v1/datasets", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"dataset_name":"walk"`)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/datasets/walk", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/datasets/walk", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/datasets/walk/global", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, env.Code)
}

func TestSubmitValidation(t *testing.T) {
	s := newTestServer(t, 0)

	body := uploadBody()
	body["params"] = map[string]any{"dataset_name": "walk", "quadrant_parts": -1}
	w, env := s.do(t, http.MethodPost, "/api/v1/datasets", body, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "quadrant_parts")

	w, _ = s.do(t, http.MethodPost, "/api/v1/datasets", "not an object", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/datasets/walk/metrics?entity_id=abc", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/runs/does-not-exist", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		w, _ := s.do(t, http.MethodGet, "/api/v1/datasets", nil, false)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w, _ := s.do(t, http.MethodGet, "/api/v1/datasets", nil, false)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
