package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/techversity/crm-api/internal/dto"
	"github.com/techversity/crm-api/internal/service"
	"github.com/techversity/crm-api/internal/utils"
)

// UserHandler serves staff authentication and account management.
type UserHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler instance.
func NewUserHandler(service service.AuthService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// RegisterPublic wires the unauthenticated auth routes.
func (h *UserHandler) RegisterPublic(router fiber.Router) {
	router.Post("/signin", h.signIn)
	router.Post("/forgotpassword", h.forgotPassword)
	router.Post("/verify_otp", h.verifyOTP)
	router.Post("/reset_password", h.resetPassword)
}

// RegisterProtected wires the staff management routes behind the JWT. The
// guard runs per route so the public auth routes on the same prefix stay open.
func (h *UserHandler) RegisterProtected(router fiber.Router, auth fiber.Handler) {
	router.Post("/add_user", auth, h.addUser)
	router.Get("/members", auth, h.members)
	router.Delete("/:id", auth, h.deleteUser)
}

func (h *UserHandler) signIn(c *fiber.Ctx) error {
	var payload dto.SignInRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.SignIn(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotRegistered):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidPassword), errors.Is(err, service.ErrWeakPassword):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("sign-in failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "sign-in failed")
		}
	}

	return utils.SendSuccess(c, "signed in", session)
}

func (h *UserHandler) addUser(c *fiber.Ctx) error {
	var payload dto.UserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	member, err := h.service.AddUser(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, service.ErrWeakPassword), isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to add user")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to add user")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user created", member)
}

func (h *UserHandler) members(c *fiber.Ctx) error {
	members, err := h.service.Members(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list members")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch members")
	}

	return utils.SendSuccess(c, "members retrieved", members)
}

func (h *UserHandler) deleteUser(c *fiber.Ctx) error {
	id, err := parsePathID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.service.DeleteUser(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", id).Msg("failed to delete user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete user")
	}

	return utils.SendSuccess(c, "user deleted", nil)
}

func (h *UserHandler) forgotPassword(c *fiber.Ctx) error {
	var payload dto.ForgotPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.ForgotPassword(c.Context(), payload.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotRegistered):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to start password reset")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to send otp")
		}
	}

	return utils.SendSuccess(c, "otp sent", nil)
}

func (h *UserHandler) verifyOTP(c *fiber.Ctx) error {
	var payload dto.VerifyOTPRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.VerifyOTP(c.Context(), payload); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotRegistered):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrWrongOTP), errors.Is(err, service.ErrOTPExpired):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to verify otp")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to verify otp")
		}
	}

	return utils.SendSuccess(c, "otp verified", nil)
}

func (h *UserHandler) resetPassword(c *fiber.Ctx) error {
	var payload dto.ResetPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.ResetPassword(c.Context(), payload); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotRegistered):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrOTPNotVerified), errors.Is(err, service.ErrWeakPassword):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to reset password")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to reset password")
		}
	}

	return utils.SendSuccess(c, "password updated", nil)
}
