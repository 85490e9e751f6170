package auth

import "time"

// Config holds configuration for authentication and session tokens.
type Config struct {
	// Secret is the process-wide token signing key. Loaded once at startup,
	// read-only thereafter.
	Secret string `mapstructure:"secret" default:""`
	// TokenTTLHours is the session token lifetime in hours.
	TokenTTLHours int `mapstructure:"token_ttl_hours" default:"336"`
}

// TokenTTL returns the token lifetime as a duration.
func (c Config) TokenTTL() time.Duration {
	hours := c.TokenTTLHours
	if hours <= 0 {
		hours = 336
	}
	return time.Duration(hours) * time.Hour
}
