package solvere

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tonpay/solvere/internal/blockchain"
	"github.com/tonpay/solvere/internal/models"
)

const (
	// searchLimit is how many recent transactions are scanned per attempt.
	searchLimit = 100
	// verifyTimeout bounds a single chain query.
	verifyTimeout = 30 * time.Second

	messageConfirmed        = "Payment verified successfully"
	messageAlreadyConfirmed = "Payment already confirmed"
	messageQuoteExpired     = "Payment quote expired. Create a new payment intent to retry."
	// messageNotFound is pattern-matched by callers; the "not found on
	// blockchain" substring is part of the contract.
	messageNotFound = "Payment verification failed. Transaction not found on blockchain."
)

// settlementTolerance is the accepted shortfall below the expected amount,
// mirroring the quote slippage buffer. It only ever widens acceptance
// downward to ~98% of expected; overpayment always matches.
var settlementTolerance = decimal.NewFromFloat(0.02)

// nanotonFactor converts nanoton to TON.
const nanotonDecimals = 9

// usdtDecimals is the jetton's token precision.
const usdtDecimals = 6

// MatchOutcome distinguishes "confirmed absent" from "could not check".
type MatchOutcome int

const (
	// OutcomeNoMatch means the search window was scanned and nothing
	// qualified.
	OutcomeNoMatch MatchOutcome = iota
	// OutcomeMatch means a qualifying settlement was found.
	OutcomeMatch
	// OutcomeTransient means the chain could not be consulted; the caller
	// should retry.
	OutcomeTransient
)

// matchResult is the outcome of one settlement scan.
type matchResult struct {
	Outcome MatchOutcome
	TxHash  string
	Payer   string
	PaidAt  time.Time
	Err     error
}

// settlementMatcher decides whether a single transaction settles an
// intent. One implementation per asset class.
type settlementMatcher interface {
	matches(intent *models.PaymentIntent, tx *models.ChainTransaction) bool
}

// nativeMatcher matches native TON transfers: value-bearing inbound
// message, amount within tolerance, comment containing the intent id.
// Containment rather than equality tolerates wallet wrapping/padding.
type nativeMatcher struct{}

func (nativeMatcher) matches(intent *models.PaymentIntent, tx *models.ChainTransaction) bool {
	amount := tx.In.ValueNano.Shift(-nanotonDecimals)
	minAmount := intent.AmountExpected.Mul(decimal.NewFromInt(1).Sub(settlementTolerance))
	if amount.LessThan(minAmount) {
		return false
	}

	comment := tx.In.Comment
	if comment == "" && len(tx.In.RawBody) > 0 {
		decoded, err := blockchain.ParseComment(tx.In.RawBody)
		if err != nil {
			return false
		}
		comment = decoded
	}
	return strings.Contains(comment, intent.ID)
}

// tokenMatcher matches jetton transfer notifications by operation code and
// amount threshold. There is no memo to correlate a specific intent, so
// concurrent intents with identical amounts can be misattributed; accepted
// as a low-volume limitation rather than silently changing the policy.
type tokenMatcher struct{}

func (tokenMatcher) matches(intent *models.PaymentIntent, tx *models.ChainTransaction) bool {
	if len(tx.In.RawBody) == 0 {
		return false
	}
	note, err := blockchain.ParseJettonNotification(tx.In.RawBody)
	if err != nil {
		return false
	}

	amount := decimal.NewFromBigInt(note.Amount, 0).Shift(-usdtDecimals)
	minAmount := intent.AmountExpected.Mul(decimal.NewFromInt(1).Sub(settlementTolerance))
	return amount.GreaterThanOrEqual(minAmount)
}

// Verify checks the chain for a settlement matching the intent.
//
// Already-successful intents short-circuit without a chain query and return
// the cached transaction. A stale quote is expired before any chain work.
// Chain faults degrade to a retryable failed result; they are never
// propagated to the caller.
func (s *Solvere) Verify(id string) (*models.VerifyResult, error) {
	intent, err := s.repo.GetIntent(id)
	if err != nil {
		return nil, err
	}

	// Terminal intents are answered from the store alone. A dead quote must
	// never trigger a chain query, even if a matching payment landed late.
	switch intent.Status {
	case models.StatusSuccess:
		return &models.VerifyResult{
			IntentID: intent.ID,
			Status:   models.StatusSuccess,
			Message:  messageAlreadyConfirmed,
			TxHash:   intent.TxHash,
			PaidAt:   intent.PaidAt,
		}, nil
	case models.StatusExpired:
		return s.expiredResult(intent), nil
	case models.StatusFailed:
		return s.failedResult(intent), nil
	}

	if intent.QuoteExpired(time.Now().UTC()) {
		if err := s.repo.UpdateIntent(intent.ID, models.StatusExpired, models.IntentUpdate{}); err != nil {
			s.logger.Error("Failed to expire stale intent", "intent", intent.ID, "error", err)
		}
		return s.expiredResult(intent), nil
	}

	matcher, err := s.matcherFor(intent.Asset)
	if err != nil {
		// Misconfiguration is an operator problem, not a caller error.
		s.logger.Error("Settlement verification unavailable", "intent", intent.ID, "error", err)
		return s.failedResult(intent), nil
	}

	result := s.scanForSettlement(intent, matcher)
	switch result.Outcome {
	case OutcomeMatch:
		paidAt := result.PaidAt
		update := models.IntentUpdate{
			TxHash:       result.TxHash,
			PayerAddress: result.Payer,
			PaidAt:       &paidAt,
		}
		if err := s.repo.UpdateIntent(intent.ID, models.StatusSuccess, update); err != nil {
			s.logger.Error("Failed to persist settlement", "intent", intent.ID, "error", err)
			return s.failedResult(intent), nil
		}

		// The guarded update refuses backward transitions, so confirm the
		// write landed before reporting success. Losing the race to the
		// expiry sweep means the quote died mid-scan.
		persisted, err := s.repo.GetIntent(intent.ID)
		if err != nil {
			s.logger.Error("Failed to reload intent after settlement", "intent", intent.ID, "error", err)
			return s.failedResult(intent), nil
		}
		if persisted.Status != models.StatusSuccess {
			s.logger.Warn("Settlement found after the quote expired",
				"intent", intent.ID, "tx", result.TxHash, "status", persisted.Status)
			return s.expiredResult(persisted), nil
		}

		s.logger.Info("Settlement confirmed",
			"intent", persisted.ID, "tx", persisted.TxHash, "payer", persisted.PayerAddress)
		if s.notificator != nil {
			go s.notificator.SettlementConfirmed(persisted)
		}

		return &models.VerifyResult{
			IntentID: persisted.ID,
			Status:   models.StatusSuccess,
			Message:  messageConfirmed,
			TxHash:   persisted.TxHash,
			PaidAt:   persisted.PaidAt,
		}, nil

	case OutcomeTransient:
		s.logger.Error("Chain query failed, verification degraded to no-match",
			"intent", intent.ID, "error", result.Err)
		return s.failedResult(intent), nil

	default:
		return s.failedResult(intent), nil
	}
}

// scanForSettlement fetches the recent transactions on the receiving wallet
// and returns the first one that qualifies. No disambiguation when several
// qualify; first wins.
func (s *Solvere) scanForSettlement(intent *models.PaymentIntent, matcher settlementMatcher) matchResult {
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	txs, err := s.chain.GetTransactions(ctx, intent.WalletAddress, searchLimit)
	if err != nil {
		return matchResult{Outcome: OutcomeTransient, Err: err}
	}

	createdAt := intent.CreatedAt.Unix()
	for _, tx := range txs {
		// Transactions before the intent existed never qualify, even on a
		// coincidental amount/memo match.
		if tx.Time < createdAt {
			continue
		}
		if !tx.Inbound() {
			continue
		}
		if matcher.matches(intent, tx) {
			return matchResult{
				Outcome: OutcomeMatch,
				TxHash:  tx.Hash,
				Payer:   tx.In.Source,
				PaidAt:  time.Unix(tx.Time, 0).UTC(),
			}
		}
	}
	return matchResult{Outcome: OutcomeNoMatch}
}

func (s *Solvere) matcherFor(asset models.PaymentAsset) (settlementMatcher, error) {
	switch asset {
	case models.AssetTON:
		return nativeMatcher{}, nil
	case models.AssetUSDT:
		if s.config.USDTJettonMaster == "" {
			return nil, errors.New("USDT_JETTON_MASTER is not configured")
		}
		return tokenMatcher{}, nil
	}
	return nil, fmt.Errorf("no settlement matcher for asset %q", asset)
}

// failedResult is the retryable non-match response. The intent keeps its
// current status so the caller can poll again.
func (s *Solvere) failedResult(intent *models.PaymentIntent) *models.VerifyResult {
	return &models.VerifyResult{
		IntentID: intent.ID,
		Status:   models.StatusFailed,
		Message:  messageNotFound,
	}
}

// expiredResult reports a dead quote. Retrying requires a fresh intent.
func (s *Solvere) expiredResult(intent *models.PaymentIntent) *models.VerifyResult {
	return &models.VerifyResult{
		IntentID: intent.ID,
		Status:   models.StatusExpired,
		Message:  messageQuoteExpired,
	}
}
