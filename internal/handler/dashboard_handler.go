package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/essay-auditor-api/internal/service"
	"github.com/noah-isme/essay-auditor-api/internal/utils"
)

// DashboardHandler exposes the correction dashboard and history.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler creates a new handler instance.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoints behind the given middlewares.
func (h *DashboardHandler) Register(router fiber.Router, middlewares ...fiber.Handler) {
	router.Get("/dashboard", chain(middlewares, h.getDashboard)...)
	router.Get("/corrections", chain(middlewares, h.listCorrections)...)
}

func (h *DashboardHandler) getDashboard(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, service.MessageAuthenticationRequired)
	}

	dashboard, cacheHit, err := h.service.GetDashboard(c.UserContext(), userID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", userID).Msg("failed to load dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	return utils.OK(c, dashboard, "dashboard retrieved", fiber.Map{"cache_hit": cacheHit})
}

func (h *DashboardHandler) listCorrections(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, service.MessageAuthenticationRequired)
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid limit", fiber.Map{"limit": c.Query("limit")})
	}

	history, err := h.service.ListHistory(c.UserContext(), userID, limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", userID).Msg("failed to list corrections")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list corrections")
	}

	return utils.OK(c, history, "corrections retrieved", fiber.Map{"count": len(history)})
}
