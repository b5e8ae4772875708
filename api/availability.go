package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evcharge/internal/service/availability"
)

type AvailabilityHandler struct {
	service availability.AvailabilityUseCase
	logger  *zap.Logger
}

func NewAvailabilityHandler(service availability.AvailabilityUseCase, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{service: service, logger: logger}
}

func (h *AvailabilityHandler) Register(router *gin.RouterGroup) {
	router.GET("/slots", h.slots)
	router.GET("/booked", h.booked)
}

func (h *AvailabilityHandler) slots(c *gin.Context) {
	stationID, date, ok := h.params(c)
	if !ok {
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), stationID, date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":           c.Query("date"),
		"stationId":      stationID,
		"availableSlots": slots,
		"totalSlots":     len(slots),
	})
}

func (h *AvailabilityHandler) booked(c *gin.Context) {
	stationID, date, ok := h.params(c)
	if !ok {
		return
	}

	booked, err := h.service.BookedSlots(c.Request.Context(), stationID, date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":        c.Query("date"),
		"stationId":   stationID,
		"bookedSlots": booked,
		"totalBooked": len(booked),
	})
}

func (h *AvailabilityHandler) params(c *gin.Context) (int64, time.Time, bool) {
	stationID, err := strconv.ParseInt(c.Query("stationId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stationId query parameter is required"})
		return 0, time.Time{}, false
	}
	date, ok := parseDateParam(c)
	if !ok {
		return 0, time.Time{}, false
	}
	return stationID, date, true
}
