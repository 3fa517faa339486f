package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/election-map-backend-go/internal/election"
	"github.com/jengzang/election-map-backend-go/internal/logging"
	"github.com/jengzang/election-map-backend-go/internal/middleware"
	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/service"
	"github.com/jengzang/election-map-backend-go/internal/spatial"
	"github.com/jengzang/election-map-backend-go/pkg/response"
)

// MapHandler handles HTTP requests for the choropleth
type MapHandler struct {
	mapService *service.MapService
	log        logging.Logger
}

// NewMapHandler creates a new map handler
func NewMapHandler(mapService *service.MapService, log logging.Logger) *MapHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MapHandler{
		mapService: mapService,
		log:        log,
	}
}

// labelQuery is the viewport part of a labels request
type labelQuery struct {
	Zoom   *float64 `form:"zoom"`
	South  *float64 `form:"south"`
	West   *float64 `form:"west"`
	North  *float64 `form:"north"`
	East   *float64 `form:"east"`
	Labels *bool    `form:"labels"`
}

func (q labelQuery) viewport() (spatial.Viewport, bool) {
	if q.Zoom == nil || q.South == nil || q.West == nil || q.North == nil || q.East == nil {
		return spatial.Viewport{}, false
	}
	b := spatial.Bounds{South: *q.South, West: *q.West, North: *q.North, East: *q.East}
	if !b.Valid() {
		return spatial.Viewport{}, false
	}
	return spatial.NewViewport(b, *q.Zoom), true
}

// bindParams reads mode parameters from the query string
func bindParams(c *gin.Context) (models.ModeParams, bool) {
	var params models.ModeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return params, false
	}
	if err := election.ValidateParams(params); err != nil {
		response.BadRequest(c, err.Error())
		return params, false
	}
	return params, true
}

// fail maps service errors onto HTTP statuses
func (h *MapHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, election.ErrUnknownMode), errors.Is(err, election.ErrUnknownGranularity):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrDatasetNotLoaded):
		response.ServiceUnavailable(c, "Dataset not loaded")
	default:
		h.log.Error("map request failed", logging.String("path", c.Request.URL.Path), logging.Err(err))
		_ = c.Error(err)
		response.InternalError(c, err.Error())
	}
}

// GetParties handles GET /api/v1/parties
func (h *MapHandler) GetParties(c *gin.Context) {
	parties, err := h.mapService.Parties()
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, parties)
}

// GetDatasetInfo handles GET /api/v1/dataset
func (h *MapHandler) GetDatasetInfo(c *gin.Context) {
	info, err := h.mapService.Info()
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, info)
}

// GetFeatures handles GET /api/v1/map/features
func (h *MapHandler) GetFeatures(c *gin.Context) {
	params, ok := bindParams(c)
	if !ok {
		return
	}
	res, err := h.mapService.Render(params)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, res)
}

// GetScale handles GET /api/v1/map/scale
func (h *MapHandler) GetScale(c *gin.Context) {
	params, ok := bindParams(c)
	if !ok {
		return
	}
	scale, err := h.mapService.Scale(params)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, scale)
}

// GetSummary handles GET /api/v1/map/summary
func (h *MapHandler) GetSummary(c *gin.Context) {
	params, ok := bindParams(c)
	if !ok {
		return
	}
	sum, err := h.mapService.Summary(params)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, sum)
}

// GetLegend handles GET /api/v1/map/legend
func (h *MapHandler) GetLegend(c *gin.Context) {
	params, ok := bindParams(c)
	if !ok {
		return
	}
	legend, err := h.mapService.Legend(params)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, legend)
}

// GetLabels handles GET /api/v1/map/labels
func (h *MapHandler) GetLabels(c *gin.Context) {
	params, ok := bindParams(c)
	if !ok {
		return
	}
	var q labelQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid viewport parameters: "+err.Error())
		return
	}
	vp, ok := q.viewport()
	if !ok {
		response.BadRequest(c, "zoom, south, west, north and east are required")
		return
	}
	visible := q.Labels == nil || *q.Labels

	labels, err := h.mapService.Labels(params, vp, visible)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, labels)
}

// Reload handles POST /api/v1/admin/reload
func (h *MapHandler) Reload(c *gin.Context) {
	info, err := h.mapService.Reload(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info("dataset reloaded via API", logging.String("subject", c.GetString(middleware.ClaimsKey)))
	response.Success(c, info)
}
