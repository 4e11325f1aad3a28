package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentAsset selects the settlement asset for an intent.
type PaymentAsset string

const (
	// AssetTON settles in native TON, quoted against USD at creation time.
	AssetTON PaymentAsset = "TON"
	// AssetUSDT settles in the USDT jetton, pegged 1:1 to the plan price.
	AssetUSDT PaymentAsset = "USDT"
)

// Valid reports whether the asset selector names a supported asset.
func (a PaymentAsset) Valid() bool {
	return a == AssetTON || a == AssetUSDT
}

// PaymentStatus is the lifecycle state of a payment intent.
//
// "idle" is the canonical initial status. Transitions only move forward:
// idle -> pending -> {success, failed, expired}. A terminal intent is never
// resurrected; a retry requires a fresh intent.
type PaymentStatus string

const (
	StatusIdle    PaymentStatus = "idle"
	StatusPending PaymentStatus = "pending"
	StatusSuccess PaymentStatus = "success"
	StatusFailed  PaymentStatus = "failed"
	StatusExpired PaymentStatus = "expired"
)

var statusRank = map[PaymentStatus]int{
	StatusIdle:    0,
	StatusPending: 1,
	StatusSuccess: 2,
	StatusFailed:  2,
	StatusExpired: 2,
}

// Terminal reports whether the status is final.
func (s PaymentStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusExpired
}

// CanTransition reports whether moving from s to next is a legal forward
// transition. Rewriting the same status is allowed so that concurrent
// verifications stay idempotent.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	return statusRank[next] > statusRank[s]
}

// PaymentIntent is a priced, time-bounded request for the payer to transfer
// funds to the deployment wallet. AmountExpected is computed exactly once at
// creation (quote lock) and never recomputed, even if the market rate moves.
type PaymentIntent struct {
	// ID is the unique identifier, generated at creation.
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// PlanID references the catalog plan the payer selected.
	PlanID string `json:"plan_id" gorm:"column:plan_id;index;not null"`
	// PlanUSD is the USD price fixed from the catalog at creation time.
	PlanUSD decimal.Decimal `json:"plan_usd" gorm:"column:plan_usd;type:decimal(20,4);not null"`
	// Asset is the settlement asset selector, immutable once created.
	Asset PaymentAsset `json:"asset" gorm:"column:asset;not null"`
	// Chain names the settlement chain.
	Chain string `json:"chain" gorm:"column:chain;default:TON"`
	// AmountExpected is the asset-denominated amount the payer must send.
	AmountExpected decimal.Decimal `json:"amount_expected" gorm:"column:amount_expected;type:decimal(20,9);not null"`
	// QuoteRate is the USD rate the amount was quoted at. Only set for
	// volatile assets.
	QuoteRate *decimal.Decimal `json:"quote_rate,omitempty" gorm:"column:quote_rate;type:decimal(20,9)"`
	// QuoteExpiresAt bounds the validity of AmountExpected.
	QuoteExpiresAt *time.Time `json:"quote_expires_at,omitempty" gorm:"column:quote_expires_at;index"`
	// WalletAddress is the receiving address for this deployment.
	WalletAddress string `json:"wallet_address" gorm:"column:wallet_address;not null"`
	// Status is the lifecycle state, see PaymentStatus.
	Status PaymentStatus `json:"status" gorm:"column:status;index;not null"`
	// TxHash is the hash of the matched settlement transaction.
	TxHash string `json:"tx_hash,omitempty" gorm:"column:tx_hash"`
	// PayerAddress is the sender of the matched transaction.
	PayerAddress string `json:"payer_address,omitempty" gorm:"column:payer_address"`
	// PaidAt is the on-chain timestamp of the matched transaction.
	PaidAt *time.Time `json:"paid_at,omitempty" gorm:"column:paid_at"`
	// CreatedAt is also the lower bound of the settlement search window.
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (PaymentIntent) TableName() string {
	return "payment_intents"
}

// QuoteExpired reports whether the intent carries a quote window that has
// already passed.
func (i *PaymentIntent) QuoteExpired(now time.Time) bool {
	return i.QuoteExpiresAt != nil && i.QuoteExpiresAt.Before(now)
}
