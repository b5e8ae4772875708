package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evcharge/internal/domain"
	"evcharge/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
	logger  *zap.Logger
}

type createBookingRequest struct {
	StationID   int64  `json:"stationId"`
	ChargerID   int64  `json:"chargerId"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	VehicleInfo string `json:"vehicleInfo"`
}

type bookingResponse struct {
	ID            int64  `json:"id"`
	StationID     int64  `json:"stationId"`
	ChargerID     int64  `json:"chargerId"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	VehicleInfo   string `json:"vehicleInfo,omitempty"`
	Status        string `json:"status"`
	AmountCents   int64  `json:"amountCents"`
	PaymentStatus string `json:"paymentStatus"`
}

func NewBookingHandler(service booking.BookingUseCase, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, logger: logger}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.DELETE("/:id", h.cancel)
	router.POST("/:id/complete", h.complete)
}

// RegisterUserRoutes mounts the booking listing under /users/me.
func (h *BookingHandler) RegisterUserRoutes(router *gin.RouterGroup) {
	router.GET("/me/bookings", h.myBookings)
}

func (h *BookingHandler) create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startTime, expected RFC3339"})
		return
	}
	var end time.Time
	if req.EndTime != "" {
		end, err = time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endTime, expected RFC3339"})
			return
		}
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:      userID,
		StationID:   req.StationID,
		ChargerID:   req.ChargerID,
		StartTime:   start,
		EndTime:     end,
		VehicleInfo: req.VehicleInfo,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	cancelled, err := h.service.CancelBooking(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func (h *BookingHandler) complete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	completed, err := h.service.CompleteBooking(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(completed))
}

func (h *BookingHandler) myBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookings, err := h.service.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		StationID:     b.StationID,
		ChargerID:     b.ChargerID,
		StartTime:     b.StartTime.Format(time.RFC3339),
		EndTime:       b.EndTime.Format(time.RFC3339),
		VehicleInfo:   b.VehicleInfo,
		Status:        string(b.Status),
		AmountCents:   b.AmountCents,
		PaymentStatus: string(b.PaymentStatus),
	}
}
