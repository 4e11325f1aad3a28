package notificator

import (
	"fmt"
	"runtime/debug"

	"github.com/tonpay/solvere/internal/models"
	"github.com/tonpay/solvere/pkg/logger"
)

// Notificator fans settlement events out to the configured channels. It is
// fire-and-forget: failures are logged, never surfaced to verification.
type Notificator struct {
	logger *logger.Logger

	TelegramNotificator *TelegramNotificator
}

func NewNotificator(logger *logger.Logger, telegram *TelegramNotificator) *Notificator {
	return &Notificator{logger: logger, TelegramNotificator: telegram}
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// SettlementConfirmed announces a confirmed settlement to the operator.
func (n *Notificator) SettlementConfirmed(intent *models.PaymentIntent) {
	if n.TelegramNotificator == nil {
		return
	}

	message := fmt.Sprintf(
		"Payment confirmed\nIntent: %s\nPlan: %s\nAmount: %s %s\nTx: %s\nPayer: %s",
		intent.ID, intent.PlanID, intent.AmountExpected, intent.Asset, intent.TxHash, intent.PayerAddress,
	)
	n.safeCall(func() { n.TelegramNotificator.SendNotification(message) }, "telegramNotification")
}
