package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// ChainMessage is the inbound message carried by a transaction.
type ChainMessage struct {
	// Source is the sender address. Empty for external (non-internal)
	// messages, which never carry value.
	Source string
	// Destination is the receiving address.
	Destination string
	// ValueNano is the attached native value in nanoton.
	ValueNano decimal.Decimal
	// Comment is the decoded text comment, when the message body was a
	// plain text payload.
	Comment string
	// RawBody is the undecoded message body (BOC bytes) for structured
	// payloads such as jetton transfer notifications.
	RawBody []byte
}

// ChainTransaction is one transaction on the receiving account.
type ChainTransaction struct {
	Hash string
	// Time is the on-chain unix timestamp.
	Time int64
	In   *ChainMessage
}

// Inbound reports whether the transaction carries an internal inbound
// message, i.e. one that can bear value.
func (t *ChainTransaction) Inbound() bool {
	return t.In != nil && t.In.Source != ""
}

// ChainClient reads recent transactions for an account from the blockchain.
type ChainClient interface {
	GetTransactions(ctx context.Context, address string, limit int) ([]*ChainTransaction, error)
}
