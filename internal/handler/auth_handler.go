package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/essay-auditor-api/internal/dto"
	"github.com/noah-isme/essay-auditor-api/internal/middleware"
	"github.com/noah-isme/essay-auditor-api/internal/service"
	"github.com/noah-isme/essay-auditor-api/internal/utils"
)

// AuthHandler exposes sign-up, sign-in and sign-out.
type AuthHandler struct {
	service   service.AuthService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthHandler creates a new handler instance.
func NewAuthHandler(service service.AuthService, validate *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the public auth endpoints. signout must sit behind the
// JWT middleware passed as protected.
func (h *AuthHandler) Register(router fiber.Router, protected fiber.Handler) {
	router.Post("/signup", h.signUp)
	router.Post("/signin", h.signIn)
	router.Post("/signout", protected, h.signOut)
}

func (h *AuthHandler) signUp(c *fiber.Ctx) error {
	var payload dto.SignUpRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "dados de cadastro inválidos", validationDetails(err))
	}

	user, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, "Email já cadastrado")
		case isValidationError(err):
			return utils.Fail(c, fiber.StatusUnprocessableEntity, "dados de cadastro inválidos", validationDetails(err))
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create account")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create account")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", user)
}

func (h *AuthHandler) signIn(c *fiber.Ctx) error {
	var payload dto.SignInRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	auth, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), isValidationError(err):
			return utils.SendError(c, fiber.StatusUnauthorized, service.MessageInvalidCredentials)
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to sign in")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign in")
		}
	}

	return utils.SendSuccess(c, "signed in", auth)
}

func (h *AuthHandler) signOut(c *fiber.Ctx) error {
	tokenID, expiresAt := middleware.TokenFromContext(c)
	if tokenID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
	}

	if err := h.service.Logout(c.UserContext(), tokenID, expiresAt); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to sign out")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign out")
	}

	return utils.SendSuccess(c, "signed out", nil)
}
