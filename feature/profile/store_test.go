package profile

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestGormStoreGet(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	rows := sqlmock.NewRows([]string{"username", "email", "document"}).
		AddRow("alice", "alice@example.com", []byte(`{"username":"alice","gamesPlayed":3}`))
	mock.ExpectQuery("SELECT (.+) FROM `profiles` WHERE username = ?").
		WithArgs("alice", 1).
		WillReturnRows(rows)

	doc, err := store.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.Username())
	assert.Equal(t, 3, doc.GamesPlayed())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreGetNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectQuery("SELECT (.+) FROM `profiles`").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email", "document"}))

	_, err := store.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreCreateTransactional(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `profiles`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `email_index`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	doc := Document{
		FieldUsername: "alice",
		FieldEmail:    "alice@example.com",
	}
	require.NoError(t, store.Create(context.Background(), doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreCreateDuplicateUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `profiles`").
		WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'PRIMARY'"})
	mock.ExpectRollback()

	err := store.Create(context.Background(), Document{FieldUsername: "alice", FieldEmail: "a@b.c"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestGormStorePatchMergesServerSide(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `profiles` SET `document`=JSON_MERGE_PATCH\\(document, \\?\\) WHERE username = \\?").
		WithArgs(`{"bestScore":0}`, "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Patch(context.Background(), "alice", Document{FieldBestScore: 0})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStorePatchUnknownProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `profiles`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.Patch(context.Background(), "ghost", Document{FieldBestScore: 0})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStorePatchEmptyIsNoop(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	// No expectations: an empty patch must not touch the database.
	require.NoError(t, store.Patch(context.Background(), "alice", Document{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreScanAll(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	// The second row is a legacy document without a username field; the
	// scan key must come from the column, not the document.
	rows := sqlmock.NewRows([]string{"username", "email", "document"}).
		AddRow("alice", "alice@example.com", []byte(`{"username":"alice"}`)).
		AddRow("legacy", "legacy@example.com", []byte(`{"email":"legacy@example.com"}`))
	mock.ExpectQuery("SELECT (.+) FROM `profiles`").WillReturnRows(rows)

	var seen []string
	err := store.ScanAll(context.Background(), func(username string, doc Document) error {
		seen = append(seen, username)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "legacy"}, seen)
}

func TestGormStoreUsernameByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	rows := sqlmock.NewRows([]string{"email", "username"}).
		AddRow("alice@example.com", "alice")
	mock.ExpectQuery("SELECT (.+) FROM `email_index` WHERE email = ?").
		WithArgs("alice@example.com", 1).
		WillReturnRows(rows)

	username, err := store.UsernameByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	mock.ExpectQuery("SELECT (.+) FROM `email_index`").
		WillReturnRows(sqlmock.NewRows([]string{"email", "username"}))
	_, err = store.UsernameByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
