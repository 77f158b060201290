package dto

import (
	"time"

	"github.com/techversity/crm-api/internal/models"
)

// SignInRequest carries staff credentials.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse is returned after a successful login.
type SignInResponse struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
	Name        string `json:"name"`
}

// UserCreateRequest describes the payload for registering a staff member.
type UserCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

// ForgotPasswordRequest starts the OTP reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest checks the one-time code sent by email.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=4"`
}

// ResetPasswordRequest completes the OTP reset flow.
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MemberResponse is the staff record exposed to clients.
type MemberResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMemberResponse converts a model into a DTO.
func NewMemberResponse(model models.User) MemberResponse {
	return MemberResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Role:      model.Role,
		CreatedAt: model.CreatedAt,
	}
}

// NewMemberResponseSlice converts a slice of models into DTOs.
func NewMemberResponseSlice(users []models.User) []MemberResponse {
	responses := make([]MemberResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewMemberResponse(user))
	}

	return responses
}
