package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CredentialService is the boundary contract with the credential system.
// Create registers a new (email, secret) pair and returns the opaque subject
// id; Verify checks a secret and returns the same subject id.
type CredentialService interface {
	Create(ctx context.Context, email, secret string) (string, error)
	Verify(ctx context.Context, email, secret string) (string, error)
}

// CredentialRecord is the `credentials` table row of the bundled
// implementation.
type CredentialRecord struct {
	Email        string `gorm:"column:email;primaryKey;size:255"`
	SubjectID    string `gorm:"column:subject_id;size:36"`
	PasswordHash []byte `gorm:"column:password_hash;size:60"`
}

// TableName overrides the table name.
func (CredentialRecord) TableName() string {
	return "credentials"
}

// GormCredentialStore implements CredentialService with bcrypt hashes in the
// service database. A remote credential provider can replace it behind the
// same interface.
type GormCredentialStore struct {
	db *gorm.DB
}

// NewGormCredentialStore creates a credential store over the given connection.
func NewGormCredentialStore(db *gorm.DB) *GormCredentialStore {
	return &GormCredentialStore{db: db}
}

// Migrate creates or updates the credentials table.
func (s *GormCredentialStore) Migrate() error {
	return s.db.AutoMigrate(&CredentialRecord{})
}

// Create hashes the secret and registers the email under a fresh subject id.
func (s *GormCredentialStore) Create(ctx context.Context, email, secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}

	rec := CredentialRecord{
		Email:        email,
		SubjectID:    uuid.NewString(),
		PasswordHash: hash,
	}

	err = s.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", fmt.Errorf("email already registered")
	}
	if err != nil {
		return "", fmt.Errorf("failed to store credential: %w", err)
	}

	return rec.SubjectID, nil
}

// Verify compares the secret against the stored hash.
// Unknown emails and wrong secrets are indistinguishable to the caller.
func (s *GormCredentialStore) Verify(ctx context.Context, email, secret string) (string, error) {
	var rec CredentialRecord
	err := s.db.WithContext(ctx).First(&rec, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}

	if bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(secret)) != nil {
		return "", ErrInvalidCredentials
	}

	return rec.SubjectID, nil
}
