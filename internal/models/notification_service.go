package models

// NotificationService announces settlement events to the operator. It must
// never influence verification outcomes.
type NotificationService interface {
	SettlementConfirmed(intent *PaymentIntent)
}
