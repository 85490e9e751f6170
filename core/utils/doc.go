// Package utils provides common utility functions for the profile-manager
// application. It includes helper functions for converting loosely typed JSON
// document values into Go types, shared by the profile store and its callers.
package utils
