package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evcharge/internal/realstations"
)

// RealStationFinder abstracts the open-data station proxy.
type RealStationFinder interface {
	ByLocation(ctx context.Context, lat, lon, radiusKM float64) ([]realstations.RealStation, error)
	ByBounds(ctx context.Context, north, south, east, west float64) ([]realstations.RealStation, error)
}

type RealStationHandler struct {
	client RealStationFinder
	logger *zap.Logger
}

func NewRealStationHandler(client RealStationFinder, logger *zap.Logger) *RealStationHandler {
	return &RealStationHandler{client: client, logger: logger}
}

func (h *RealStationHandler) Register(router *gin.RouterGroup) {
	router.GET("/by-location", h.byLocation)
	router.GET("/by-bounds", h.byBounds)
}

func (h *RealStationHandler) byLocation(c *gin.Context) {
	lat, ok := floatQuery(c, "lat")
	if !ok {
		return
	}
	lon, ok := floatQuery(c, "lon")
	if !ok {
		return
	}
	radius := 50.0
	if raw := c.Query("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius"})
			return
		}
		radius = parsed
	}

	stations, err := h.client.ByLocation(c.Request.Context(), lat, lon, radius)
	if err != nil {
		h.logger.Error("open-data station lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream station provider unavailable"})
		return
	}
	c.JSON(http.StatusOK, stations)
}

func (h *RealStationHandler) byBounds(c *gin.Context) {
	north, ok := floatQuery(c, "north")
	if !ok {
		return
	}
	south, ok := floatQuery(c, "south")
	if !ok {
		return
	}
	east, ok := floatQuery(c, "east")
	if !ok {
		return
	}
	west, ok := floatQuery(c, "west")
	if !ok {
		return
	}

	stations, err := h.client.ByBounds(c.Request.Context(), north, south, east, west)
	if err != nil {
		h.logger.Error("open-data station lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream station provider unavailable"})
		return
	}
	c.JSON(http.StatusOK, stations)
}

func floatQuery(c *gin.Context, name string) (float64, bool) {
	val, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " query parameter is required"})
		return 0, false
	}
	return val, true
}
