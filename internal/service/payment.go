package service

import "github.com/techversity/crm-api/internal/models"

// DeriveBalance computes the remaining amount and coarse payment state from a
// course fee and the payment log. Overpayment clamps the balance at zero.
func DeriveBalance(courseFee float64, payments []models.PaymentEntry) (float64, string) {
	total := 0.0
	for _, payment := range payments {
		total += payment.PaidAmount
	}

	balance := courseFee - total
	if balance < 0 {
		balance = 0
	}

	switch {
	case balance == 0:
		return balance, models.PaymentStatusFullyPaid
	case total > 0:
		return balance, models.PaymentStatusPartiallyPaid
	default:
		return balance, models.PaymentStatusUnpaid
	}
}
