package profile

import (
	"errors"
	"strings"

	"profile-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for profiles.
type Handler struct {
	service *Service
	guard   fiber.Handler
}

// NewHandler creates a new HTTP handler. The guard middleware protects the
// profile routes with bearer-token authentication.
func NewHandler(service *Service, guard fiber.Handler) *Handler {
	return &Handler{service: service, guard: guard}
}

// RegisterRoutes registers the profile routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/profile", h.guard)
	group.Get("/:username", h.HandleGetProfile)
}

// HandleGetProfile returns a single profile document.
// @Summary Get Profile
// @Description Get the full profile document for a username.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username (case-insensitive)"
// @Success 200 {object} map[string]interface{} "Profile document"
// @Failure 404 {object} map[string]string "Unknown username"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /profile/{username} [get]
func (h *Handler) HandleGetProfile(c *fiber.Ctx) error {
	username := strings.ToLower(c.Params("username"))
	l := logger.WithRayID(h.service.logger, c)

	doc, err := h.service.GetProfile(c.Context(), username)
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "profile not found",
		})
	}
	if err != nil {
		l.Error("Profile lookup failed", zap.String("username", username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load profile",
		})
	}

	return c.JSON(doc)
}
