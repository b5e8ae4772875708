package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evcharge/internal/service/review"
)

type ReviewHandler struct {
	service review.ReviewUseCase
	logger  *zap.Logger
}

type createReviewRequest struct {
	BookingID int64  `json:"bookingId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type reviewResponse struct {
	ID        int64  `json:"id"`
	StationID int64  `json:"stationId"`
	BookingID int64  `json:"bookingId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func NewReviewHandler(service review.ReviewUseCase, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{service: service, logger: logger}
}

func (h *ReviewHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
}

func (h *ReviewHandler) create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateReview(c.Request.Context(), review.CreateReviewInput{
		UserID:    userID,
		BookingID: req.BookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, reviewResponse{
		ID:        created.ID,
		StationID: created.StationID,
		BookingID: created.BookingID,
		Rating:    created.Rating,
		Comment:   created.Comment,
		CreatedAt: created.CreatedAt.Format(time.RFC3339),
	})
}
