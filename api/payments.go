package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evcharge/internal/domain"
	"evcharge/internal/service/payment"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
	logger  *zap.Logger
}

type createIntentRequest struct {
	BookingID int64 `json:"bookingId"`
}

type confirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

type paymentResponse struct {
	ID              int64  `json:"id"`
	BookingID       int64  `json:"bookingId"`
	AmountCents     int64  `json:"amountCents"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	PaymentIntentID string `json:"paymentIntentId"`
	CreatedAt       string `json:"createdAt"`
}

func NewPaymentHandler(service payment.PaymentUseCase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, logger: logger}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/create-intent", h.createIntent)
	router.POST("/confirm", h.confirm)
	router.GET("/history", h.history)
}

func (h *PaymentHandler) createIntent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateIntent(c.Request.Context(), userID, req.BookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) confirm(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	confirmed, err := h.service.Confirm(c.Request.Context(), userID, req.PaymentIntentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"msg":     "payment confirmed",
		"payment": toPaymentResponse(confirmed),
	})
}

func (h *PaymentHandler) history(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	payments, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]paymentResponse, 0, len(payments))
	for i := range payments {
		resp = append(resp, toPaymentResponse(&payments[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func toPaymentResponse(p *domain.Payment) paymentResponse {
	return paymentResponse{
		ID:              p.ID,
		BookingID:       p.BookingID,
		AmountCents:     p.AmountCents,
		Currency:        p.Currency,
		Status:          string(p.Status),
		PaymentIntentID: p.PaymentIntentID,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
}
