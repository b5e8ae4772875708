package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"evcharge/internal/domain"
	"evcharge/internal/service/booking"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CompleteBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CompleteEndedBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	body, _ := json.Marshal(createBookingRequest{
		StationID: 1,
		ChargerID: 10,
		StartTime: start.Format(time.RFC3339),
		EndTime:   start.Add(2 * time.Hour).Format(time.RFC3339),
	})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(userIDContextKey, int64(7))

	created := &domain.Booking{
		ID:            1,
		UserID:        7,
		StationID:     1,
		ChargerID:     10,
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
		Status:        domain.BookingStatusConfirmed,
		AmountCents:   1000,
		PaymentStatus: domain.PaymentStatePending,
	}
	mockService.On("CreateBooking", c.Request.Context(), mock.AnythingOfType("booking.CreateBookingInput")).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, int64(1000), resp.AmountCents)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_Conflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	body, _ := json.Marshal(createBookingRequest{
		StationID: 1,
		ChargerID: 10,
		StartTime: start.Format(time.RFC3339),
	})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(userIDContextKey, int64(7))

	mockService.On("CreateBooking", c.Request.Context(), mock.Anything).Return(nil, domain.ErrSlotConflict)

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "slot is already booked")
}

func TestBookingHandler_create_InvalidStartTime(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := []byte(`{"stationId":1,"chargerId":10,"startTime":"10 o'clock"}`)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(userIDContextKey, int64(7))

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking")
}

func TestBookingHandler_create_Unauthenticated(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader([]byte(`{}`)))

	handler.create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking")
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/bookings/3", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	c.Set(userIDContextKey, int64(7))

	cancelled := &domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusCancelled}
	mockService.On("CancelBooking", c.Request.Context(), int64(3), int64(7)).Return(cancelled, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CANCELLED")
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_Forbidden(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/bookings/3", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	c.Set(userIDContextKey, int64(99))

	mockService.On("CancelBooking", c.Request.Context(), int64(3), int64(99)).Return(nil, domain.ErrForbidden)

	handler.cancel(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingHandler_complete(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/bookings/4/complete", nil)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	c.Set(userIDContextKey, int64(7))

	completed := &domain.Booking{ID: 4, UserID: 7, Status: domain.BookingStatusCompleted}
	mockService.On("CompleteBooking", c.Request.Context(), int64(4), int64(7)).Return(completed, nil)

	handler.complete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "COMPLETED")
}

func TestBookingHandler_myBookings(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/users/me/bookings", nil)
	c.Set(userIDContextKey, int64(7))

	bookings := []domain.Booking{
		{ID: 1, UserID: 7, Status: domain.BookingStatusConfirmed},
		{ID: 2, UserID: 7, Status: domain.BookingStatusConfirmed},
	}
	mockService.On("ListUserBookings", c.Request.Context(), int64(7)).Return(bookings, nil)

	handler.myBookings(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}
