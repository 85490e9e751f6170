// Package config provides configuration management for profile-manager.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, body limit)
//   - Database: MySQL/SQLite connection details
//   - Storage: S3/MinIO credentials and catalog bucket settings
//   - Catalog: catalog prefix and snapshot cache TTL
//   - Auth: token signing secret and TTL
//   - Log: logging level and format
//   - Reconcile: reconciliation engine toggles
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
