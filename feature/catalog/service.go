package catalog

import (
	"context"

	"go.uber.org/zap"
)

// Service handles catalog read operations.
type Service struct {
	reader Reader
	logger *zap.Logger
}

// NewService creates a new catalog service.
func NewService(reader Reader, logger *zap.Logger) *Service {
	return &Service{reader: reader, logger: logger}
}

// GetSnapshot returns the current catalog snapshot.
func (s *Service) GetSnapshot(ctx context.Context) (Snapshot, error) {
	return s.reader.Snapshot(ctx)
}
