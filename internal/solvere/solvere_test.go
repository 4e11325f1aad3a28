package solvere

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonpay/solvere/internal/config"
	"github.com/tonpay/solvere/internal/models"
	"github.com/tonpay/solvere/internal/repository"
	"github.com/tonpay/solvere/pkg/logger"
)

const testWallet = "0:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

// fixedPrice is a PriceSource pinned to a constant rate.
type fixedPrice struct {
	rate decimal.Decimal
}

func (p fixedPrice) TONPrice() decimal.Decimal { return p.rate }

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	store, err := repository.NewStore(sqlite.Open(dsn), logger.NewNop())
	require.NoError(t, err)
	return store
}

func newTestSolvere(t *testing.T, chain models.ChainClient, rate decimal.Decimal) (*Solvere, *repository.Store) {
	t.Helper()
	store := newTestStore(t)
	cfg := &config.Config{
		WalletAddress:    testWallet,
		Network:          "testnet",
		USDTJettonMaster: "0:bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
	}
	return NewSolvere(store, chain, fixedPrice{rate: rate}, nil, logger.NewNop(), cfg), store
}

func TestCreateIntentStableAsset(t *testing.T) {
	s, store := newTestSolvere(t, nil, decimal.NewFromInt(6))

	intent, err := s.CreateIntent("standard", models.AssetUSDT)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(intent.ID, "intent_"))
	assert.Equal(t, "standard", intent.PlanID)
	assert.Equal(t, models.StatusIdle, intent.Status)
	assert.Equal(t, testWallet, intent.WalletAddress)
	assert.Equal(t, "30", intent.AmountExpected.String(), "stable asset maps the USD price directly")
	assert.Nil(t, intent.QuoteRate)
	assert.Nil(t, intent.QuoteExpiresAt)

	persisted, err := store.GetIntent(intent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, persisted.Status)
}

func TestCreateIntentVolatileAssetQuote(t *testing.T) {
	s, _ := newTestSolvere(t, nil, decimal.NewFromInt(6))

	intent, err := s.CreateIntent("standard", models.AssetTON)
	require.NoError(t, err)

	assert.Equal(t, "5.1", intent.AmountExpected.String(), "30 / 6 with the 2% buffer")
	require.NotNil(t, intent.QuoteRate)
	assert.Equal(t, "6", intent.QuoteRate.String())
	require.NotNil(t, intent.QuoteExpiresAt)

	window := intent.QuoteExpiresAt.Sub(intent.CreatedAt)
	assert.Equal(t, quoteWindow, window)
}

func TestCreateIntentDonationOverride(t *testing.T) {
	s, _ := newTestSolvere(t, nil, decimal.NewFromInt(6))

	ton, err := s.CreateIntent(models.PlanDonate, models.AssetTON)
	require.NoError(t, err)
	assert.Equal(t, "0.001", ton.AmountExpected.String())
	assert.Nil(t, ton.QuoteRate, "the donation amount is flat, not quoted")
	assert.NotNil(t, ton.QuoteExpiresAt)

	usdt, err := s.CreateIntent(models.PlanDonate, models.AssetUSDT)
	require.NoError(t, err)
	assert.Equal(t, "0.001", usdt.AmountExpected.String())
	assert.Nil(t, usdt.QuoteExpiresAt)
}

func TestCreateIntentUnknownPlan(t *testing.T) {
	s, _ := newTestSolvere(t, nil, decimal.NewFromInt(6))

	_, err := s.CreateIntent("platinum", models.AssetTON)
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestCreateIntentInvalidAsset(t *testing.T) {
	s, _ := newTestSolvere(t, nil, decimal.NewFromInt(6))

	_, err := s.CreateIntent("standard", "")
	assert.ErrorIs(t, err, ErrMissingAsset)

	_, err = s.CreateIntent("standard", "DOGE")
	assert.ErrorIs(t, err, ErrMissingAsset)
}

func TestCreateIntentQuoteIsLocked(t *testing.T) {
	price := &mutablePrice{rate: decimal.NewFromInt(6)}
	store := newTestStore(t)
	cfg := &config.Config{WalletAddress: testWallet, Network: "testnet"}
	s := NewSolvere(store, nil, price, nil, logger.NewNop(), cfg)

	intent, err := s.CreateIntent("standard", models.AssetTON)
	require.NoError(t, err)

	// A later rate move must not touch the stored quote.
	price.rate = decimal.NewFromInt(3)
	persisted, err := s.GetIntent(intent.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.1", persisted.AmountExpected.String())
}

func TestGetIntentAbsent(t *testing.T) {
	s, _ := newTestSolvere(t, nil, decimal.NewFromInt(6))

	_, err := s.GetIntent("intent_missing")
	assert.ErrorIs(t, err, models.ErrIntentNotFound)
}

// mutablePrice lets a test move the rate between calls.
type mutablePrice struct {
	rate decimal.Decimal
}

func (p *mutablePrice) TONPrice() decimal.Decimal { return p.rate }
