package catalog

import (
	"profile-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/themes", h.HandleListThemes)
}

// HandleListThemes returns the current catalog snapshot.
// @Summary List Themes
// @Description Get the current catalog: every theme with its ordered level ids.
// @Tags catalog
// @Produce json
// @Success 200 {object} catalog.Snapshot "Catalog snapshot"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/themes [get]
func (h *Handler) HandleListThemes(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	snap, err := h.service.GetSnapshot(c.Context())
	if err != nil {
		l.Error("Catalog listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read catalog",
		})
	}

	return c.JSON(snap)
}
