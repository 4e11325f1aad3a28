package models

import (
	"errors"
	"time"
)

// ErrIntentNotFound is returned when an intent id has no stored record.
var ErrIntentNotFound = errors.New("payment intent not found")

// IntentUpdate carries the settlement fields merged into an intent on a
// status transition. Zero fields are left untouched.
type IntentUpdate struct {
	TxHash       string
	PayerAddress string
	PaidAt       *time.Time
}

type Repository interface {
	// SaveIntent upserts an intent, overwriting on id conflict.
	SaveIntent(intent *PaymentIntent) error
	// GetIntent returns ErrIntentNotFound when the id is absent.
	GetIntent(id string) (*PaymentIntent, error)
	// UpdateIntent merges fields, applies the status transition and stamps
	// updated_at. It is a no-op when the id is absent or when the transition
	// would move backwards.
	UpdateIntent(id string, status PaymentStatus, update IntentUpdate) error
	// ListIntentsByStatus returns all intents currently in the given status.
	ListIntentsByStatus(status PaymentStatus) ([]*PaymentIntent, error)
	// SweepExpired transitions every idle intent whose quote window has
	// passed to expired. Safe to call repeatedly and concurrently. Returns
	// the number of intents transitioned.
	SweepExpired(now time.Time) (int64, error)
}
