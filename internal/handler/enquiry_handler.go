package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/techversity/crm-api/internal/dto"
	"github.com/techversity/crm-api/internal/service"
	"github.com/techversity/crm-api/internal/utils"
)

// EnquiryHandler serves the student enquiry endpoints.
type EnquiryHandler struct {
	service service.EnquiryService
	logger  zerolog.Logger
}

// NewEnquiryHandler constructs the handler instance.
func NewEnquiryHandler(service service.EnquiryService, logger zerolog.Logger) *EnquiryHandler {
	return &EnquiryHandler{
		service: service,
		logger:  logger.With().Str("component", "enquiry_handler").Logger(),
	}
}

// Register wires the enquiry routes. Guards run per route because the group
// prefix is shared with unauthenticated endpoints.
func (h *EnquiryHandler) Register(router fiber.Router, auth fiber.Handler, adminOnly fiber.Handler) {
	router.Post("/create-student", auth, adminOnly, h.create)
	router.Post("/upload-students", auth, adminOnly, h.upload)
	router.Get("/enquiries", auth, h.list)
	router.Put("/student/:id", auth, h.update)
}

func (h *EnquiryHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create student enquiry")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create student")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", created)
}

func (h *EnquiryHandler) upload(c *fiber.Ctx) error {
	var payload dto.StudentUploadRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	count, err := h.service.BulkUpload(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to upload student enquiries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to upload students")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, fmt.Sprintf("%d students uploaded", count), fiber.Map{"count": count})
}

func (h *EnquiryHandler) list(c *fiber.Ctx) error {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "startDate and endDate are required")
	}

	enquiries, err := h.service.ListBetween(c.Context(), startDate, endDate)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list enquiries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch enquiries")
	}

	return utils.SendSuccess(c, "enquiries retrieved", enquiries)
}

func (h *EnquiryHandler) update(c *fiber.Ctx) error {
	id, err := parsePathID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	var payload dto.StudentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEnquiryNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrFollowUpDetailsRequired):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("enquiry_id", id).Msg("failed to update student enquiry")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update student")
		}
	}

	return utils.SendSuccess(c, "student updated", updated)
}
