// Package database handles database connections.
//
// It provides a wrapper around GORM to configure MySQL (the production driver)
// or SQLite (single-file deployments and local development) based on the
// application's configuration.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
