package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"evcharge/internal/domain"
	"evcharge/internal/service/availability"
)

func TestAvailabilityHandler_slots(t *testing.T) {
	mockService := &MockAvailabilityUseCase{}
	handler := NewAvailabilityHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/availability/slots?stationId=1&date=2026-03-10", nil)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	slots := []availability.Slot{
		{ChargerID: 10, ConnectorType: domain.ConnectorType2, PowerKW: 22, Time: date.Add(8 * time.Hour), Hour: 8, DisplayTime: "08:00 AM"},
		{ChargerID: 10, ConnectorType: domain.ConnectorType2, PowerKW: 22, Time: date.Add(9 * time.Hour), Hour: 9, DisplayTime: "09:00 AM"},
	}
	mockService.On("AvailableSlots", c.Request.Context(), int64(1), date).Return(slots, nil)

	handler.slots(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Date           string              `json:"date"`
		StationID      int64               `json:"stationId"`
		AvailableSlots []availability.Slot `json:"availableSlots"`
		TotalSlots     int                 `json:"totalSlots"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-03-10", resp.Date)
	assert.Equal(t, int64(1), resp.StationID)
	assert.Equal(t, 2, resp.TotalSlots)
	assert.Equal(t, "08:00 AM", resp.AvailableSlots[0].DisplayTime)
	mockService.AssertExpectations(t)
}

func TestAvailabilityHandler_slots_MissingStationID(t *testing.T) {
	mockService := &MockAvailabilityUseCase{}
	handler := NewAvailabilityHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/availability/slots?date=2026-03-10", nil)

	handler.slots(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "stationId")
	mockService.AssertNotCalled(t, "AvailableSlots")
}

func TestAvailabilityHandler_slots_InvalidDate(t *testing.T) {
	mockService := &MockAvailabilityUseCase{}
	handler := NewAvailabilityHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/availability/slots?stationId=1&date=03-10-2026", nil)

	handler.slots(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
	mockService.AssertNotCalled(t, "AvailableSlots")
}

func TestAvailabilityHandler_booked(t *testing.T) {
	mockService := &MockAvailabilityUseCase{}
	handler := NewAvailabilityHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/availability/booked?stationId=1&date=2026-03-10", nil)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	booked := []availability.BookedSlot{
		{ChargerID: 10, StartTime: date.Add(9 * time.Hour), EndTime: date.Add(11 * time.Hour), Status: domain.BookingStatusConfirmed},
	}
	mockService.On("BookedSlots", c.Request.Context(), int64(1), date).Return(booked, nil)

	handler.booked(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalBooked":1`)
}

func TestAvailabilityHandler_StationNotFound(t *testing.T) {
	mockService := &MockAvailabilityUseCase{}
	handler := NewAvailabilityHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/availability/slots?stationId=99&date=2026-03-10", nil)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mockService.On("AvailableSlots", c.Request.Context(), int64(99), date).Return(nil, domain.ErrNotFound)

	handler.slots(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
