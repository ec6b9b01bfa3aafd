package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/repository"
	"github.com/jengzang/mobility-metrics-go/internal/service"
	"github.com/jengzang/mobility-metrics-go/pkg/response"
)

// DatasetHandler handles HTTP requests for datasets and their results
type DatasetHandler struct {
	service *service.DatasetService
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{service: service}
}

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidParams):
		response.BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, err.Error())
	default:
		c.Error(err)
		response.InternalError(c, err.Error())
	}
}

// entityFilter reads the optional entity_id query parameter
func entityFilter(c *gin.Context) (models.EntityFilter, bool) {
	raw := c.Query("entity_id")
	if raw == "" {
		return models.EntityFilter{}, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid entity_id")
		return models.EntityFilter{}, false
	}
	return models.EntityFilter{EntityID: &id}, true
}

// Submit uploads a dataset and starts processing it
// POST /api/v1/datasets
func (h *DatasetHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	run, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Accepted(c, run)
}

// List lists the processed datasets
// GET /api/v1/datasets
func (h *DatasetHandler) List(c *gin.Context) {
	configs, err := h.service.ListDatasets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"datasets": configs})
}

// GetConfig returns a dataset's parameters
// GET /api/v1/datasets/:name/config
func (h *DatasetHandler) GetConfig(c *gin.Context) {
	cfg, err := h.service.GetConfig(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, cfg)
}

// GetGlobal returns a dataset's global metrics
// GET /api/v1/datasets/:name/global
func (h *DatasetHandler) GetGlobal(c *gin.Context) {
	g, err := h.service.GetGlobal(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, g)
}

// ListMetrics returns per-entity metrics
// GET /api/v1/datasets/:name/metrics?entity_id=
func (h *DatasetHandler) ListMetrics(c *gin.Context) {
	filter, ok := entityFilter(c)
	if !ok {
		return
	}
	metrics, err := h.service.ListMetrics(c.Request.Context(), c.Param("name"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"metrics": metrics})
}

// ListStayPoints returns the stay points
// GET /api/v1/datasets/:name/staypoints
func (h *DatasetHandler) ListStayPoints(c *gin.Context) {
	points, err := h.service.ListStayPoints(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"stay_points": points})
}

// ListVisits returns the visits
// GET /api/v1/datasets/:name/visits?entity_id=
func (h *DatasetHandler) ListVisits(c *gin.Context) {
	filter, ok := entityFilter(c)
	if !ok {
		return
	}
	visits, err := h.service.ListVisits(c.Request.Context(), c.Param("name"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"visits": visits})
}

// ListJourneys returns the journeys
// GET /api/v1/datasets/:name/journeys?entity_id=
func (h *DatasetHandler) ListJourneys(c *gin.Context) {
	filter, ok := entityFilter(c)
	if !ok {
		return
	}
	journeys, err := h.service.ListJourneys(c.Request.Context(), c.Param("name"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"journeys": journeys})
}

// ListContacts returns the contacts
// GET /api/v1/datasets/:name/contacts?entity_id=
func (h *DatasetHandler) ListContacts(c *gin.Context) {
	filter, ok := entityFilter(c)
	if !ok {
		return
	}
	contacts, err := h.service.ListContacts(c.Request.Context(), c.Param("name"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"contacts": contacts})
}

// ListQuadrants returns the quadrant cells. Without entity_id only the
// dataset-wide grid is returned.
// GET /api/v1/datasets/:name/quadrants?entity_id=
func (h *DatasetHandler) ListQuadrants(c *gin.Context) {
	ef, ok := entityFilter(c)
	if !ok {
		return
	}
	filter := models.QuadrantFilter{EntityID: ef.EntityID, Global: ef.EntityID == nil}

	cells, err := h.service.ListQuadrants(c.Request.Context(), c.Param("name"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"quadrants": cells})
}

// Delete removes a dataset and its results
// DELETE /api/v1/datasets/:name
func (h *DatasetHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.service.DeleteDataset(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"dataset": name, "deleted": true})
}
