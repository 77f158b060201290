package dto

import (
	"time"

	"github.com/techversity/crm-api/internal/models"
)

// StudentCreateRequest describes the payload for the manual create form.
type StudentCreateRequest struct {
	Name               string  `json:"name" validate:"required"`
	Phone              string  `json:"phone" validate:"required"`
	Course             string  `json:"course" validate:"required"`
	CourseFee          float64 `json:"course_fee" validate:"omitempty,gte=0"`
	AreYou             string  `json:"are_you" validate:"omitempty,oneof=Fresher Experienced"`
	CurrentlyWorkingIn string  `json:"currently_working_in" validate:"omitempty,oneof=IT 'Non IT'"`
	LearningMode       string  `json:"learning_mode" validate:"omitempty,oneof=Online Offline"`
	Source             string  `json:"source" validate:"omitempty,oneof=Meta Instagram Website Referral Direct"`
	Status             string  `json:"status" validate:"omitempty,oneof=Pending 'Follow up' Loss Success"`
	Attender           string  `json:"attender"`
}

// LeadRow is one raw row from the Meta lead export, keyed by form labels.
type LeadRow struct {
	FullName      string `json:"Full name"`
	PhoneNumber   string `json:"Phone number"`
	FormName      string `json:"Form Name"`
	AreYou        string `json:"Are you?"`
	WorkingIn     string `json:"Are you currently working in?"`
	PreferredMode string `json:"Which is your preferred mode of learning?"`
	CreatedTime   string `json:"Created Time"`
}

// StudentUploadRequest wraps the bulk lead upload payload.
type StudentUploadRequest struct {
	Students []LeadRow `json:"students" validate:"required,min=1,dive"`
}

// StudentUpdateRequest is the partial update applied by the lifecycle
// operation. Absent fields leave the record untouched.
type StudentUpdateRequest struct {
	Status       string   `json:"status" validate:"omitempty,oneof=Pending 'Follow up' Loss Success"`
	Attender     string   `json:"attender"`
	Note         string   `json:"note"`
	FollowUpDate string   `json:"follow_up_date"`
	CourseFee    *float64 `json:"course_fee" validate:"omitempty,gte=0"`
	Amount       *float64 `json:"amount" validate:"omitempty,gt=0"`
	PaymentMode  string   `json:"payment_mode" validate:"omitempty,oneof=Cash UPI Card 'Bank Transfer'"`
}

// HistoryEntryResponse mirrors one embedded transition-log entry.
type HistoryEntryResponse struct {
	UpdatedAt    time.Time  `json:"updated_at"`
	Status       string     `json:"status"`
	Attender     string     `json:"attender,omitempty"`
	Note         string     `json:"note,omitempty"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`
	ReminderSent bool       `json:"reminder_sent"`
}

// PaymentEntryResponse mirrors one embedded payment-log entry.
type PaymentEntryResponse struct {
	PaidAmount  float64   `json:"paid_amount"`
	PaymentMode string    `json:"payment_mode"`
	PaymentDate time.Time `json:"payment_date"`
}

// EnquiryResponse is the serialized enquiry returned to API clients.
type EnquiryResponse struct {
	ID                 uint                   `json:"id"`
	Name               string                 `json:"name"`
	Phone              string                 `json:"phone"`
	Course             string                 `json:"course"`
	AreYou             string                 `json:"are_you,omitempty"`
	CurrentlyWorkingIn string                 `json:"currently_working_in,omitempty"`
	LearningMode       string                 `json:"learning_mode,omitempty"`
	Source             string                 `json:"source,omitempty"`
	Status             string                 `json:"status"`
	Attender           string                 `json:"attender,omitempty"`
	History            []HistoryEntryResponse `json:"history"`
	Payments           []PaymentEntryResponse `json:"payments"`
	CourseFee          float64                `json:"course_fee"`
	BalanceAmount      float64                `json:"balance_amount"`
	PaymentStatus      string                 `json:"payment_status"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// NewEnquiryResponse converts a model into a DTO.
func NewEnquiryResponse(model models.StudentEnquiry) EnquiryResponse {
	history := make([]HistoryEntryResponse, 0, len(model.History))
	for _, entry := range model.History {
		history = append(history, HistoryEntryResponse(entry))
	}

	payments := make([]PaymentEntryResponse, 0, len(model.Payments))
	for _, entry := range model.Payments {
		payments = append(payments, PaymentEntryResponse(entry))
	}

	return EnquiryResponse{
		ID:                 model.ID,
		Name:               model.Name,
		Phone:              model.Phone,
		Course:             model.Course,
		AreYou:             model.AreYou,
		CurrentlyWorkingIn: model.CurrentlyWorkingIn,
		LearningMode:       model.LearningMode,
		Source:             model.Source,
		Status:             model.Status,
		Attender:           model.Attender,
		History:            history,
		Payments:           payments,
		CourseFee:          model.CourseFee,
		BalanceAmount:      model.BalanceAmount,
		PaymentStatus:      model.PaymentStatus,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewEnquiryResponseSlice converts a slice of models into DTOs.
func NewEnquiryResponseSlice(enquiries []models.StudentEnquiry) []EnquiryResponse {
	responses := make([]EnquiryResponse, 0, len(enquiries))
	for _, enquiry := range enquiries {
		responses = append(responses, NewEnquiryResponse(enquiry))
	}

	return responses
}
