package solvere

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tonpay/solvere/internal/config"
	"github.com/tonpay/solvere/internal/models"
	"github.com/tonpay/solvere/internal/pricing"
	"github.com/tonpay/solvere/pkg/logger"
)

const (
	// quoteWindow is how long a volatile-asset quote stays valid.
	quoteWindow = 10 * time.Minute
	// sweepInterval is the cadence of the expiry sweep.
	sweepInterval = time.Minute
)

// donationAmount is the flat settlement amount for the donation plan,
// regardless of asset or catalog price.
var donationAmount = decimal.NewFromFloat(0.001)

var (
	// ErrUnknownPlan rejects a planId that is not in the catalog.
	ErrUnknownPlan = errors.New("unknown plan id")
	// ErrMissingAsset rejects an absent or unsupported asset selector.
	ErrMissingAsset = errors.New("missing or unsupported asset")
)

// PriceSource supplies the TON/USD rate. Implementations must always
// return a positive rate (falling back to a constant on failure).
type PriceSource interface {
	TONPrice() decimal.Decimal
}

// Solvere is the main struct for the checkout core. It owns intent
// creation, settlement verification and quote-expiry maintenance.
type Solvere struct {
	logger *logger.Logger
	config *config.Config

	repo        models.Repository
	chain       models.ChainClient
	prices      PriceSource
	notificator models.NotificationService
}

// NewSolvere creates a new Solvere instance
func NewSolvere(
	repo models.Repository,
	chain models.ChainClient,
	prices PriceSource,
	notificator models.NotificationService,
	logger *logger.Logger,
	config *config.Config,
) *Solvere {
	return &Solvere{
		repo:        repo,
		chain:       chain,
		prices:      prices,
		notificator: notificator,
		logger:      logger,
		config:      config,
	}
}

// Start runs the expiry sweep until the process exits. Verification has no
// server-side scheduler; its retry cadence is client-driven.
func (s *Solvere) Start() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		swept, err := s.repo.SweepExpired(time.Now().UTC())
		if err != nil {
			s.logger.Error("Failed to sweep expired intents", "error", err)
			continue
		}
		if swept > 0 {
			s.logger.Info("Expired stale quotes", "count", swept)
		}
	}
}

// CreateIntent validates the plan and asset, quotes the settlement amount
// and persists a fresh idle intent. The quoted amount is frozen here and
// never recomputed (quote lock).
func (s *Solvere) CreateIntent(planID string, asset models.PaymentAsset) (*models.PaymentIntent, error) {
	if !asset.Valid() {
		return nil, ErrMissingAsset
	}
	plan, ok := models.PlanByID(planID)
	if !ok {
		return nil, ErrUnknownPlan
	}

	now := time.Now().UTC()
	intent := &models.PaymentIntent{
		ID:            fmt.Sprintf("intent_%s", uuid.NewString()),
		PlanID:        plan.ID,
		PlanUSD:       plan.PriceUSD,
		Asset:         asset,
		Chain:         "TON",
		WalletAddress: s.config.WalletAddress,
		Status:        models.StatusIdle,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	switch {
	case plan.ID == models.PlanDonate:
		intent.AmountExpected = donationAmount
		if asset == models.AssetTON {
			expiresAt := now.Add(quoteWindow)
			intent.QuoteExpiresAt = &expiresAt
		}
	case asset == models.AssetTON:
		rate := s.prices.TONPrice()
		amount, err := pricing.SettlementAmount(plan.PriceUSD, rate, pricing.DefaultSlippage)
		if err != nil {
			return nil, fmt.Errorf("failed to quote settlement amount: %w", err)
		}
		expiresAt := now.Add(quoteWindow)
		intent.AmountExpected = amount
		intent.QuoteRate = &rate
		intent.QuoteExpiresAt = &expiresAt
	default:
		// Stable asset: direct map from the USD price, no expiry.
		intent.AmountExpected = plan.PriceUSD
	}

	if err := s.repo.SaveIntent(intent); err != nil {
		return nil, fmt.Errorf("failed to persist payment intent: %w", err)
	}

	s.logger.Info("Payment intent created",
		"intent", intent.ID, "plan", plan.ID, "asset", asset, "amount", intent.AmountExpected)
	return intent, nil
}

// GetIntent returns models.ErrIntentNotFound when the id is absent.
func (s *Solvere) GetIntent(id string) (*models.PaymentIntent, error) {
	return s.repo.GetIntent(id)
}
