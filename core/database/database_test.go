package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Driver", func(t *testing.T) {
		db, err := Connect(Config{Driver: "postgres"})
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         DriverMySQL,
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "profiles",
			TimeoutSeconds: 1,
		}

		// Connect should fail (timeout or refused)
		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	// We cannot test a successful connection without a real database; the
	// error paths above cover graceful failure.
}

func TestMySQLDSN(t *testing.T) {
	cfg := Config{
		Host:     "db.internal",
		Port:     3306,
		User:     "svc",
		Password: "p@ss/word",
		Name:     "profiles",
	}

	dsn := mysqlDSN(cfg, 30)

	// Special characters in the password must be URL encoded.
	assert.Contains(t, dsn, "svc:p%40ss%2Fword@tcp(db.internal:3306)/profiles")
	assert.Contains(t, dsn, "timeout=30s")
	// UPDATE must count matched rows, not changed rows: a merge patch that
	// leaves the document identical still has to read as "row found".
	assert.Contains(t, dsn, "clientFoundRows=true")
}
