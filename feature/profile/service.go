package profile

import (
	"context"

	"go.uber.org/zap"
)

// Service handles profile read operations.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new profile service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// GetProfile returns the profile document for a username.
func (s *Service) GetProfile(ctx context.Context, username string) (Document, error) {
	return s.store.Get(ctx, username)
}
