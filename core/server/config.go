package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// BodyLimitKB is the maximum accepted request body size in kilobytes.
	BodyLimitKB int `mapstructure:"body_limit_kb" default:"64"`
}

// BodyLimitBytes returns the body limit in bytes, with a sane floor.
func (c Config) BodyLimitBytes() int {
	kb := c.BodyLimitKB
	if kb <= 0 {
		kb = 64
	}
	return kb * 1024
}
