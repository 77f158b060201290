package models

import (
	"time"

	"gorm.io/datatypes"
)

// Pipeline statuses an enquiry moves through.
const (
	StatusPending  = "Pending"
	StatusFollowUp = "Follow up"
	StatusLoss     = "Loss"
	StatusSuccess  = "Success"
)

// Coarse payment states derived from the payment log.
const (
	PaymentStatusUnpaid        = "Unpaid"
	PaymentStatusPartiallyPaid = "Partially Paid"
	PaymentStatusFullyPaid     = "Fully Paid"
)

// HistoryEntry captures the enquiry state *before* a transition was applied.
// Entries are append-only; only ReminderSent is ever flipped afterwards.
type HistoryEntry struct {
	UpdatedAt    time.Time  `json:"updated_at"`
	Status       string     `json:"status"`
	Attender     string     `json:"attender,omitempty"`
	Note         string     `json:"note,omitempty"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`
	ReminderSent bool       `json:"reminder_sent"`
}

// PaymentEntry records a single received payment.
type PaymentEntry struct {
	PaidAmount  float64   `json:"paid_amount"`
	PaymentMode string    `json:"payment_mode"`
	PaymentDate time.Time `json:"payment_date"`
}

// StudentEnquiry is a prospective student's record tracked through the sales
// pipeline. History and Payments are embedded JSON columns owned exclusively
// by the row, so every mutation persists as a single document-style write.
type StudentEnquiry struct {
	ID                 uint                              `gorm:"primaryKey" json:"id"`
	Name               string                            `gorm:"size:255;not null" json:"name"`
	Phone              string                            `gorm:"size:32;not null" json:"phone"`
	Course             string                            `gorm:"size:255;not null" json:"course"`
	AreYou             string                            `gorm:"size:32" json:"are_you"`
	CurrentlyWorkingIn string                            `gorm:"size:32" json:"currently_working_in"`
	LearningMode       string                            `gorm:"size:16" json:"learning_mode"`
	Source             string                            `gorm:"size:32;default:Instagram" json:"source"`
	Status             string                            `gorm:"size:16;default:Pending;index" json:"status"`
	Attender           string                            `gorm:"size:255" json:"attender,omitempty"`
	History            datatypes.JSONSlice[HistoryEntry] `json:"history"`
	Payments           datatypes.JSONSlice[PaymentEntry] `json:"payments"`
	CourseFee          float64                           `json:"course_fee"`
	BalanceAmount      float64                           `json:"balance_amount"`
	NextDueDate        *time.Time                        `json:"next_due_date,omitempty"`
	PaymentStatus      string                            `gorm:"size:16;default:Unpaid" json:"payment_status"`
	CreatedAt          time.Time                         `json:"created_at"`
	UpdatedAt          time.Time                         `gorm:"index" json:"updated_at"`
}

// TotalPaid sums all received payments.
func (e StudentEnquiry) TotalPaid() float64 {
	total := 0.0
	for _, payment := range e.Payments {
		total += payment.PaidAmount
	}
	return total
}
