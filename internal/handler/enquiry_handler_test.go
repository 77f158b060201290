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

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, target))
}

func passThrough(c *fiber.Ctx) error { return c.Next() }

type mockEnquiryService struct {
	lastUpdateID      uint
	lastUpdatePayload dto.StudentUpdateRequest
	updateResponse    dto.EnquiryResponse
	updateErr         error
	listResponse      []dto.EnquiryResponse
	listErr           error
}

func (m *mockEnquiryService) Create(_ context.Context, payload dto.StudentCreateRequest) (dto.EnquiryResponse, error) {
	return dto.EnquiryResponse{Name: payload.Name, Status: "Pending"}, nil
}

func (m *mockEnquiryService) BulkUpload(_ context.Context, payload dto.StudentUploadRequest) (int, error) {
	return len(payload.Students), nil
}

func (m *mockEnquiryService) ListBetween(_ context.Context, _, _ string) ([]dto.EnquiryResponse, error) {
	return m.listResponse, m.listErr
}

func (m *mockEnquiryService) Update(_ context.Context, id uint, payload dto.StudentUpdateRequest) (dto.EnquiryResponse, error) {
	m.lastUpdateID = id
	m.lastUpdatePayload = payload
	if m.updateErr != nil {
		return dto.EnquiryResponse{}, m.updateErr
	}
	return m.updateResponse, nil
}

func newEnquiryApp(svc service.EnquiryService) *fiber.App {
	app := fiber.New()
	handler.NewEnquiryHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api"), passThrough, passThrough)
	return app
}

func TestEnquiryHandler_UpdateSuccess(t *testing.T) {
	svc := &mockEnquiryService{updateResponse: dto.EnquiryResponse{ID: 7, Status: "Follow up"}}
	app := newEnquiryApp(svc)

	payload := dto.StudentUpdateRequest{Status: "Follow up", Note: "call at 4", FollowUpDate: "2025-03-10T16:00:00Z"}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/student/7", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastUpdateID)
	require.Equal(t, "call at 4", svc.lastUpdatePayload.Note)

	var response struct {
		Success bool                `json:"success"`
		Data    dto.EnquiryResponse `json:"data"`
		Message string              `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "Follow up", response.Data.Status)
}

func TestEnquiryHandler_UpdateErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "not found", err: service.ErrEnquiryNotFound, statusCode: fiber.StatusNotFound},
		{name: "missing follow-up details", err: service.ErrFollowUpDetailsRequired, statusCode: fiber.StatusBadRequest},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockEnquiryService{updateErr: tc.err}
			app := newEnquiryApp(svc)

			req := httptest.NewRequest(http.MethodPut, "/api/student/1", bytes.NewReader([]byte(`{"status":"Loss"}`)))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestEnquiryHandler_UpdateRejectsBadID(t *testing.T) {
	app := newEnquiryApp(&mockEnquiryService{})

	req := httptest.NewRequest(http.MethodPut, "/api/student/abc", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEnquiryHandler_ListRequiresDateRange(t *testing.T) {
	app := newEnquiryApp(&mockEnquiryService{})

	req := httptest.NewRequest(http.MethodGet, "/api/enquiries?startDate=2025-03-01", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEnquiryHandler_ListBadDates(t *testing.T) {
	svc := &mockEnquiryService{listErr: service.ErrInvalidDateRange}
	app := newEnquiryApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/enquiries?startDate=bad&endDate=2025-03-31", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEnquiryHandler_CreateSuccess(t *testing.T) {
	app := newEnquiryApp(&mockEnquiryService{})

	payload := dto.StudentCreateRequest{Name: "Priya", Phone: "9876543210", Course: "Software Testing"}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/create-student", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
