// Package server holds the HTTP server configuration.
//
// The main application entry point handles the actual server startup; this package
// only defines the configuration structure so that core/config can embed it
// alongside the other partial configurations.
package server
