package catalog

// Config holds configuration for the catalog reader.
type Config struct {
	// Prefix is the object key prefix under which theme documents live.
	Prefix string `mapstructure:"prefix" default:"themes/"`
	// CacheTTLSeconds is the snapshot cache time-to-live. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"60"`
}
