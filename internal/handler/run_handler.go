package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/service"
	"github.com/jengzang/mobility-metrics-go/pkg/response"
)

// RunHandler handles HTTP requests for processing runs
type RunHandler struct {
	service *service.DatasetService
}

// NewRunHandler creates a new run handler
func NewRunHandler(service *service.DatasetService) *RunHandler {
	return &RunHandler{service: service}
}

// GetRun retrieves a run by ID
// GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, run)
}

// ListRuns retrieves runs
// GET /api/v1/runs?dataset=&status=&limit=&offset=
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}

	filter := models.RunFilter{
		Dataset: c.Query("dataset"),
		Status:  c.Query("status"),
		Limit:   limit,
		Offset:  offset,
	}
	runs, err := h.service.ListRuns(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"runs":   runs,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}
