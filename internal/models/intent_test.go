package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaymentAssetValid(t *testing.T) {
	assert.True(t, AssetTON.Valid())
	assert.True(t, AssetUSDT.Valid())
	assert.False(t, PaymentAsset("").Valid())
	assert.False(t, PaymentAsset("DOGE").Valid())
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to PaymentStatus
		ok       bool
	}{
		{StatusIdle, StatusPending, true},
		{StatusIdle, StatusSuccess, true},
		{StatusIdle, StatusExpired, true},
		{StatusPending, StatusSuccess, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusIdle, false},
		{StatusSuccess, StatusFailed, false},
		{StatusSuccess, StatusExpired, false},
		{StatusExpired, StatusSuccess, false},
		{StatusFailed, StatusIdle, false},
		// Same-status writes keep concurrent verifications idempotent.
		{StatusSuccess, StatusSuccess, true},
		{StatusIdle, StatusIdle, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusIdle.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusExpired.Terminal())
}

func TestQuoteExpired(t *testing.T) {
	now := time.Now().UTC()

	var intent PaymentIntent
	assert.False(t, intent.QuoteExpired(now), "no quote window means no expiry")

	past := now.Add(-time.Second)
	intent.QuoteExpiresAt = &past
	assert.True(t, intent.QuoteExpired(now))

	future := now.Add(time.Minute)
	intent.QuoteExpiresAt = &future
	assert.False(t, intent.QuoteExpired(now))
}

func TestPlanCatalog(t *testing.T) {
	plans := Plans()
	assert.Len(t, plans, 4)

	donate, ok := PlanByID(PlanDonate)
	assert.True(t, ok)
	assert.Equal(t, "0.001", donate.PriceUSD.String())

	standard, ok := PlanByID("standard")
	assert.True(t, ok)
	assert.Equal(t, "30", standard.PriceUSD.String())

	_, ok = PlanByID("platinum")
	assert.False(t, ok)
}
