package http_api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tonpay/solvere/internal/models"
	"github.com/tonpay/solvere/internal/solvere"
)

// CreateIntentRequest represents the JSON body for intent creation
type CreateIntentRequest struct {
	PlanID string `json:"planId" binding:"required"`
	Asset  string `json:"asset" binding:"required"`
}

// IntentResponse is the client view of a freshly created intent. Audit-only
// fields (payer history, raw events) are excluded.
type IntentResponse struct {
	IntentID       string               `json:"intent_id"`
	PlanUSD        decimal.Decimal      `json:"plan_usd"`
	Asset          models.PaymentAsset  `json:"asset"`
	AmountExpected decimal.Decimal      `json:"amount_expected"`
	QuoteRate      *decimal.Decimal     `json:"quote_rate,omitempty"`
	QuoteExpiresAt *time.Time           `json:"quote_expires_at,omitempty"`
	WalletAddress  string               `json:"wallet_address"`
	Status         models.PaymentStatus `json:"status"`
}

// IntentStatusResponse is the client view of a stored intent's state.
type IntentStatusResponse struct {
	IntentID       string               `json:"intent_id"`
	Status         models.PaymentStatus `json:"status"`
	TxHash         string               `json:"tx_hash,omitempty"`
	AmountExpected decimal.Decimal      `json:"amount_expected"`
	Asset          models.PaymentAsset  `json:"asset"`
	PaidAt         *time.Time           `json:"paid_at,omitempty"`
}

// createIntent is the handler for POST /api/v1/payments/intents.
func (s *HTTPServer) createIntent(c *gin.Context) {
	var req CreateIntentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing planId or asset: " + err.Error(),
		})
		return
	}

	intent, err := s.solvere.CreateIntent(req.PlanID, models.PaymentAsset(req.Asset))
	if err != nil {
		switch {
		case errors.Is(err, solvere.ErrUnknownPlan):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid planId: " + req.PlanID})
		case errors.Is(err, solvere.ErrMissingAsset):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset: " + req.Asset})
		default:
			s.logger.Error("Failed to create payment intent", "error", err, "plan", req.PlanID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment intent"})
		}
		return
	}

	c.JSON(http.StatusOK, IntentResponse{
		IntentID:       intent.ID,
		PlanUSD:        intent.PlanUSD,
		Asset:          intent.Asset,
		AmountExpected: intent.AmountExpected,
		QuoteRate:      intent.QuoteRate,
		QuoteExpiresAt: intent.QuoteExpiresAt,
		WalletAddress:  intent.WalletAddress,
		Status:         intent.Status,
	})
}

// getIntent is the handler for GET /api/v1/payments/intents/:id.
func (s *HTTPServer) getIntent(c *gin.Context) {
	intent, err := s.solvere.GetIntent(c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrIntentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment intent not found"})
			return
		}
		s.logger.Error("Failed to fetch payment intent", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment intent"})
		return
	}

	c.JSON(http.StatusOK, IntentStatusResponse{
		IntentID:       intent.ID,
		Status:         intent.Status,
		TxHash:         intent.TxHash,
		AmountExpected: intent.AmountExpected,
		Asset:          intent.Asset,
		PaidAt:         intent.PaidAt,
	})
}

// verify is the handler for POST /api/v1/payments/verify/:id.
func (s *HTTPServer) verify(c *gin.Context) {
	result, err := s.solvere.Verify(c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrIntentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment intent not found"})
			return
		}
		s.logger.Error("Failed to verify payment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify payment"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// listPlans is the handler for GET /api/v1/plans.
func (s *HTTPServer) listPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": models.Plans()})
}
