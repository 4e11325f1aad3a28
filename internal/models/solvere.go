package models

import "time"

// VerifyResult is the normalized outcome of a settlement verification.
type VerifyResult struct {
	IntentID string        `json:"intent_id"`
	Status   PaymentStatus `json:"status"`
	Message  string        `json:"message"`
	TxHash   string        `json:"tx_hash,omitempty"`
	PaidAt   *time.Time    `json:"paid_at,omitempty"`
}

type SolvereI interface {
	// Start runs background maintenance (the expiry sweep) until the
	// process exits.
	Start()

	// CreateIntent validates the plan and asset, quotes the settlement
	// amount and persists a fresh intent.
	CreateIntent(planID string, asset PaymentAsset) (*PaymentIntent, error)

	// GetIntent returns ErrIntentNotFound when the id is absent.
	GetIntent(id string) (*PaymentIntent, error)

	// Verify checks the chain for a settlement matching the intent and
	// transitions its status on a match.
	Verify(id string) (*VerifyResult, error)
}

// APIServer is the boundary HTTP server.
type APIServer interface {
	Start()
	Shutdown() error
}
