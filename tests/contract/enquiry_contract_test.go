package contract_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/techversity/crm-api/internal/dto"
	"github.com/techversity/crm-api/internal/handler"
)

type stubEnquiryService struct {
	response dto.EnquiryResponse
}

func (s stubEnquiryService) Create(context.Context, dto.StudentCreateRequest) (dto.EnquiryResponse, error) {
	return s.response, nil
}

func (s stubEnquiryService) BulkUpload(context.Context, dto.StudentUploadRequest) (int, error) {
	return 0, nil
}

func (s stubEnquiryService) ListBetween(context.Context, string, string) ([]dto.EnquiryResponse, error) {
	return []dto.EnquiryResponse{s.response}, nil
}

func (s stubEnquiryService) Update(context.Context, uint, dto.StudentUpdateRequest) (dto.EnquiryResponse, error) {
	return s.response, nil
}

func TestEnquiryUpdateContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "enquiry.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	followUp := now.Add(2 * time.Hour)
	response := dto.EnquiryResponse{
		ID:                 12,
		Name:               "Priya Sharma",
		Phone:              "9876543210",
		Course:             "Software Testing",
		AreYou:             "Fresher",
		CurrentlyWorkingIn: "Non IT",
		LearningMode:       "Online",
		Source:             "Meta",
		Status:             "Follow up",
		Attender:           "Ravi",
		History: []dto.HistoryEntryResponse{
			{
				UpdatedAt:    now,
				Status:       "Pending",
				Attender:     "Ravi",
				Note:         "wants weekend batch",
				FollowUpDate: &followUp,
				ReminderSent: false,
			},
		},
		Payments: []dto.PaymentEntryResponse{
			{PaidAmount: 4000, PaymentMode: "UPI", PaymentDate: now},
		},
		CourseFee:     10000,
		BalanceAmount: 6000,
		PaymentStatus: "Partially Paid",
		CreatedAt:     now.Add(-24 * time.Hour),
		UpdatedAt:     now,
	}

	svc := stubEnquiryService{response: response}
	enquiryHandler := handler.NewEnquiryHandler(svc, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", "admin")
		return c.Next()
	})
	noop := func(c *fiber.Ctx) error { return c.Next() }
	enquiryHandler.Register(group, noop, noop)

	body, err := json.Marshal(dto.StudentUpdateRequest{Status: "Follow up", Note: "wants weekend batch", FollowUpDate: followUp.Format(time.RFC3339)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/student/12", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.NoError(t, schema.Validate(decoded))
}
