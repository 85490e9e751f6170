package config

import (
	"reflect"
	"strings"

	"profile-manager/core/database"
	"profile-manager/core/logger"
	"profile-manager/core/server"
	"profile-manager/core/storage"
	"profile-manager/feature/auth"
	"profile-manager/feature/catalog"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Database holds configuration for the profile/credential database.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the object storage holding the catalog.
	Storage storage.Config `mapstructure:"storage"`
	// Catalog holds configuration for the catalog reader.
	Catalog catalog.Config `mapstructure:"catalog"`
	// Auth holds configuration for tokens and credentials.
	Auth auth.Config `mapstructure:"auth"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Reconcile holds configuration for the reconciliation engine.
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

// ReconcileConfig holds the engine toggles that are deployment decisions
// rather than code decisions.
type ReconcileConfig struct {
	// BackfillLevels adds catalog levels missing inside pre-existing theme
	// entries instead of leaving old profiles on their original level set.
	BackfillLevels bool `mapstructure:"backfill_levels" default:"false"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values
// in Viper based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
