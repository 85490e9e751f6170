package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"profile-manager/feature/profile"
	"profile-manager/feature/profile/reconcile"

	"go.uber.org/zap"
)

// Service orchestrates registration, login and token validation.
type Service struct {
	profiles profile.Store
	index    profile.Index
	creds    CredentialService
	tokens   *TokenManager
	engine   *reconcile.Engine
	logger   *zap.Logger
}

// NewService creates a new auth service.
func NewService(
	profiles profile.Store,
	index profile.Index,
	creds CredentialService,
	tokens *TokenManager,
	engine *reconcile.Engine,
	logger *zap.Logger,
) *Service {
	return &Service{
		profiles: profiles,
		index:    index,
		creds:    creds,
		tokens:   tokens,
		engine:   engine,
		logger:   logger,
	}
}

// Register creates a new identity: unique username, a credential, and the full
// canonical profile written together with its index entry in one batch.
// It returns the session token and the subject id.
func (s *Service) Register(ctx context.Context, username, email, password string) (string, string, error) {
	ident := profile.Identity{Username: username, Email: email}.Normalize()

	// Uniqueness check. The create below still carries the unique key, so a
	// racing registration that also passes this check fails there instead of
	// overwriting.
	_, err := s.profiles.Get(ctx, ident.Username)
	if err == nil {
		return "", "", ErrUsernameTaken
	}
	if !errors.Is(err, profile.ErrNotFound) {
		return "", "", fmt.Errorf("failed to check username: %w", err)
	}

	subjectID, err := s.creds.Create(ctx, ident.Email, password)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrCredentialCreation, err)
	}
	ident.SubjectID = subjectID

	doc, err := s.engine.BuildInitial(ctx, ident)
	if err != nil {
		return "", "", err
	}

	if err := s.profiles.Create(ctx, doc); err != nil {
		if errors.Is(err, profile.ErrAlreadyExists) {
			return "", "", ErrUsernameTaken
		}
		// The credential exists but the profile write failed. No rollback:
		// the orphaned credential is left for external reconciliation tooling.
		s.logger.Error("Profile write failed after credential creation",
			zap.String("username", ident.Username),
			zap.String("subject_id", subjectID),
			zap.Error(err),
		)
		return "", "", fmt.Errorf("failed to write profile: %w", err)
	}

	token, err := s.tokens.Issue(ident)
	if err != nil {
		return "", "", err
	}

	s.logger.Info("User registered",
		zap.String("username", ident.Username),
		zap.String("subject_id", subjectID),
	)

	return token, subjectID, nil
}

// Login authenticates an identifier (username or email) and returns the
// session token together with the canonical username.
func (s *Service) Login(ctx context.Context, identifier, password string) (string, string, error) {
	identifier = strings.ToLower(identifier)

	// Resolution: username first, then the identifier as email.
	email := identifier
	username := ""
	doc, err := s.profiles.Get(ctx, identifier)
	switch {
	case err == nil:
		username = identifier
		email = doc.Email()
	case !errors.Is(err, profile.ErrNotFound):
		return "", "", fmt.Errorf("failed to resolve identifier: %w", err)
	}

	subjectID, err := s.creds.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", fmt.Errorf("failed to verify credentials: %w", err)
	}

	if username == "" {
		username, err = s.index.UsernameByEmail(ctx, email)
		if errors.Is(err, profile.ErrNotFound) {
			return "", "", ErrInconsistentIndex
		}
		if err != nil {
			return "", "", err
		}
	}

	ident := profile.Identity{Username: username, Email: email, SubjectID: subjectID}

	// Reconciliation and token issuance are independent outcomes: a stale
	// profile must not lock the user out.
	if _, err := s.engine.Reconcile(ctx, ident); err != nil {
		s.logger.Warn("Profile reconciliation failed during login",
			zap.String("username", username),
			zap.Error(err),
		)
	}

	token, err := s.tokens.Issue(ident)
	if err != nil {
		return "", "", err
	}

	return token, username, nil
}

// Validate verifies a session token and returns its claims.
func (s *Service) Validate(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}
