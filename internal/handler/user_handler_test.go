package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/techversity/crm-api/internal/dto"
	"github.com/techversity/crm-api/internal/handler"
	"github.com/techversity/crm-api/internal/service"
)

type mockAuthService struct {
	signInResponse dto.SignInResponse
	signInErr      error
	verifyErr      error
	resetErr       error
	forgotErr      error
	lastForgot     string
}

func (m *mockAuthService) SignIn(_ context.Context, _ dto.SignInRequest) (dto.SignInResponse, error) {
	if m.signInErr != nil {
		return dto.SignInResponse{}, m.signInErr
	}
	return m.signInResponse, nil
}

func (m *mockAuthService) AddUser(_ context.Context, payload dto.UserCreateRequest) (dto.MemberResponse, error) {
	return dto.MemberResponse{Name: payload.Name, Email: payload.Email, Role: payload.Role}, nil
}

func (m *mockAuthService) Members(_ context.Context) ([]dto.MemberResponse, error) {
	return []dto.MemberResponse{{Name: "Ravi"}}, nil
}

func (m *mockAuthService) DeleteUser(_ context.Context, _ uint) error { return nil }

func (m *mockAuthService) ForgotPassword(_ context.Context, email string) error {
	m.lastForgot = email
	return m.forgotErr
}

func (m *mockAuthService) VerifyOTP(_ context.Context, _ dto.VerifyOTPRequest) error {
	return m.verifyErr
}

func (m *mockAuthService) ResetPassword(_ context.Context, _ dto.ResetPasswordRequest) error {
	return m.resetErr
}

func newUserApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	h := handler.NewUserHandler(svc, zerolog.New(io.Discard))
	group := app.Group("/api/user")
	h.RegisterPublic(group)
	h.RegisterProtected(group, passThrough)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestUserHandler_SignInSuccess(t *testing.T) {
	svc := &mockAuthService{signInResponse: dto.SignInResponse{AccessToken: "token", Role: "admin", Name: "Admin"}}
	app := newUserApp(svc)

	resp := postJSON(t, app, "/api/user/signin", dto.SignInRequest{Email: "admin@techversity.in", Password: "Secret@123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool               `json:"success"`
		Data    dto.SignInResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "token", response.Data.AccessToken)
}

func TestUserHandler_SignInErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "unknown email", err: service.ErrEmailNotRegistered, statusCode: fiber.StatusNotFound},
		{name: "wrong password", err: service.ErrInvalidPassword, statusCode: fiber.StatusUnauthorized},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newUserApp(&mockAuthService{signInErr: tc.err})

			resp := postJSON(t, app, "/api/user/signin", dto.SignInRequest{Email: "x@y.in", Password: "Secret@123"})
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestUserHandler_ForgotPassword(t *testing.T) {
	svc := &mockAuthService{}
	app := newUserApp(svc)

	resp := postJSON(t, app, "/api/user/forgotpassword", dto.ForgotPasswordRequest{Email: "ravi@techversity.in"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "ravi@techversity.in", svc.lastForgot)
}

func TestUserHandler_VerifyOTPErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "wrong otp", err: service.ErrWrongOTP, statusCode: fiber.StatusBadRequest},
		{name: "expired otp", err: service.ErrOTPExpired, statusCode: fiber.StatusBadRequest},
		{name: "unknown email", err: service.ErrEmailNotRegistered, statusCode: fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newUserApp(&mockAuthService{verifyErr: tc.err})

			resp := postJSON(t, app, "/api/user/verify_otp", dto.VerifyOTPRequest{Email: "ravi@techversity.in", OTP: "1234"})
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestUserHandler_ResetPasswordRequiresVerifiedOTP(t *testing.T) {
	app := newUserApp(&mockAuthService{resetErr: service.ErrOTPNotVerified})

	resp := postJSON(t, app, "/api/user/reset_password", dto.ResetPasswordRequest{Email: "ravi@techversity.in", Password: "Changed@456"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUserHandler_Members(t *testing.T) {
	app := newUserApp(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/members", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
