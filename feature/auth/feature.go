package auth

import (
	"profile-manager/feature/profile"
	"profile-manager/feature/profile/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	tokens  *TokenManager
}

// NewFeature wires the auth feature.
func NewFeature(
	cfg Config,
	profiles profile.Store,
	index profile.Index,
	creds CredentialService,
	engine *reconcile.Engine,
	logger *zap.Logger,
) *Feature {
	tokens := NewTokenManager(cfg.Secret, cfg.TokenTTL())
	svc := NewService(profiles, index, creds, tokens, engine, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h, tokens: tokens}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "auth"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Guard returns the bearer-token middleware for other features' routes.
func (f *Feature) Guard() fiber.Handler {
	return RequireToken(f.tokens)
}
