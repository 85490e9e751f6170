package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no profile exists for the given key.
	ErrNotFound = errors.New("profile not found")
	// ErrAlreadyExists is returned when a create collides with an existing
	// username or email.
	ErrAlreadyExists = errors.New("profile already exists")
)

// Store is the profile store adapter.
type Store interface {
	// Get returns the profile document for a username, or ErrNotFound.
	Get(ctx context.Context, username string) (Document, error)
	// Create writes a brand-new profile document and its identifier-index
	// entry as one transaction. Returns ErrAlreadyExists when the username
	// or email is taken.
	Create(ctx context.Context, doc Document) error
	// Patch merges partial fields into an existing document.
	// The merge is performed server-side so concurrent patches of disjoint
	// subtrees never clobber each other. Returns ErrNotFound for unknown keys.
	Patch(ctx context.Context, username string, patch Document) error
	// ScanAll streams every profile to fn in batches, keyed by the row's
	// username. The key is authoritative: the document itself may predate the
	// username field. The callback returning an error stops the scan.
	ScanAll(ctx context.Context, fn func(username string, doc Document) error) error
}

// Index is the email-to-username identifier index. Entries are written once,
// inside the registration batch, and never updated.
type Index interface {
	// UsernameByEmail resolves an email to its username, or ErrNotFound.
	UsernameByEmail(ctx context.Context, email string) (string, error)
}

// Record is the `profiles` table row. The indexed columns exist for lookups
// and uniqueness; the document itself is the source of truth.
type Record struct {
	Username string `gorm:"column:username;primaryKey;size:64"`
	Email    string `gorm:"column:email;uniqueIndex;size:255"`
	Document []byte `gorm:"column:document;type:json"`
}

// TableName overrides the table name.
func (Record) TableName() string {
	return "profiles"
}

// IndexEntry is the `email_index` table row.
type IndexEntry struct {
	Email    string `gorm:"column:email;primaryKey;size:255"`
	Username string `gorm:"column:username;size:64"`
}

// TableName overrides the table name.
func (IndexEntry) TableName() string {
	return "email_index"
}

// GormStore implements Store and Index over a GORM connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a profile store over the given connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the profile tables.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&Record{}, &IndexEntry{})
}

// Get returns the decoded document for a username.
func (s *GormStore) Get(ctx context.Context, username string) (Document, error) {
	var rec Record
	err := s.db.WithContext(ctx).First(&rec, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", username, err)
	}

	return decodeDocument(rec.Document)
}

// Create inserts the profile row and the identifier-index entry in one
// transaction. The primary key on username makes the second of two racing
// registrations fail with ErrAlreadyExists instead of overwriting.
func (s *GormStore) Create(ctx context.Context, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode profile document: %w", err)
	}

	rec := Record{
		Username: doc.Username(),
		Email:    doc.Email(),
		Document: raw,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return tx.Create(&IndexEntry{Email: rec.Email, Username: rec.Username}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create profile %s: %w", rec.Username, err)
	}

	return nil
}

// Patch merges the partial document into the stored one using the JSON
// merge-patch primitive of the underlying database.
func (s *GormStore) Patch(ctx context.Context, username string, patch Document) error {
	if len(patch) == 0 {
		return nil
	}

	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}

	expr := "JSON_MERGE_PATCH(document, ?)"
	if s.db.Dialector.Name() == "sqlite" {
		expr = "json_patch(document, ?)"
	}

	res := s.db.WithContext(ctx).
		Model(&Record{}).
		Where("username = ?", username).
		Update("document", gorm.Expr(expr, string(raw)))
	if res.Error != nil {
		return fmt.Errorf("failed to patch profile %s: %w", username, res.Error)
	}
	// RowsAffected counts matched rows (the mysql DSN sets clientFoundRows;
	// sqlite counts matched rows already), so zero means the row does not
	// exist — not that the merge left the document unchanged, which is the
	// normal outcome for the loser of two identical concurrent patches.
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ScanAll streams all documents in batches of 200.
func (s *GormStore) ScanAll(ctx context.Context, fn func(username string, doc Document) error) error {
	var recs []Record
	res := s.db.WithContext(ctx).FindInBatches(&recs, 200, func(tx *gorm.DB, batch int) error {
		for _, rec := range recs {
			doc, err := decodeDocument(rec.Document)
			if err != nil {
				return fmt.Errorf("profile %s: %w", rec.Username, err)
			}
			if err := fn(rec.Username, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if res.Error != nil {
		return fmt.Errorf("failed to scan profiles: %w", res.Error)
	}
	return nil
}

// UsernameByEmail resolves an email through the identifier index.
func (s *GormStore) UsernameByEmail(ctx context.Context, email string) (string, error) {
	var entry IndexEntry
	err := s.db.WithContext(ctx).First(&entry, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve email: %w", err)
	}
	return entry.Username, nil
}

func decodeDocument(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile document: %w", err)
	}
	return doc, nil
}
