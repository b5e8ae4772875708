package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evcharge/internal/domain"
	"evcharge/internal/service/availability"
	"evcharge/internal/service/station"
)

type StationHandler struct {
	service      station.StationUseCase
	availability availability.AvailabilityUseCase
	logger       *zap.Logger
}

type chargerResponse struct {
	ID            int64   `json:"id"`
	ConnectorType string  `json:"connectorType"`
	PowerKW       float64 `json:"powerKW"`
	Status        string  `json:"status"`
}

type stationResponse struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Address  string            `json:"address"`
	Location locationResponse  `json:"location"`
	Chargers []chargerResponse `json:"chargers"`
}

type locationResponse struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude]
}

type recommendationRequest struct {
	CurrentLocation struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"currentLocation"`
	CarRange float64 `json:"carRange"`
}

type recommendationResponse struct {
	stationResponse
	DistanceKM        float64 `json:"distanceKm"`
	AvailableChargers int     `json:"availableChargers"`
}

func NewStationHandler(service station.StationUseCase, availabilitySvc availability.AvailabilityUseCase, logger *zap.Logger) *StationHandler {
	return &StationHandler{service: service, availability: availabilitySvc, logger: logger}
}

func (h *StationHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/slots", h.slots)
	router.POST("/recommendations", h.recommend)
}

func (h *StationHandler) list(c *gin.Context) {
	stations, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]stationResponse, 0, len(stations))
	for i := range stations {
		resp = append(resp, toStationResponse(&stations[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StationHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	st, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStationResponse(st))
}

// slots serves the per-charger available-time map for a station and date.
func (h *StationHandler) slots(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	slots, err := h.availability.StationSlots(c.Request.Context(), id, date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *StationHandler) recommend(c *gin.Context) {
	var req recommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recs, err := h.service.Recommend(c.Request.Context(), req.CurrentLocation.Lat, req.CurrentLocation.Lon, req.CarRange)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]recommendationResponse, 0, len(recs))
	for i := range recs {
		resp = append(resp, recommendationResponse{
			stationResponse:   toStationResponse(&recs[i].Station),
			DistanceKM:        recs[i].DistanceKM,
			AvailableChargers: recs[i].AvailableChargers,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func toStationResponse(st *domain.Station) stationResponse {
	chargers := make([]chargerResponse, 0, len(st.Chargers))
	for _, ch := range st.Chargers {
		chargers = append(chargers, chargerResponse{
			ID:            ch.ID,
			ConnectorType: string(ch.ConnectorType),
			PowerKW:       ch.PowerKW,
			Status:        string(ch.Status),
		})
	}
	return stationResponse{
		ID:      st.ID,
		Name:    st.Name,
		Address: st.Address,
		Location: locationResponse{
			Type:        "Point",
			Coordinates: []float64{st.Longitude, st.Latitude},
		},
		Chargers: chargers,
	}
}

// parseDateParam reads the date query parameter as a UTC calendar day.
func parseDateParam(c *gin.Context) (time.Time, bool) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}
