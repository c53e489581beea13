package driving

import "github.com/custodia-labs/ragline/internal/core/domain"

// SettingsService reads and writes application configuration.
type SettingsService interface {
	// Get returns the typed settings with defaults applied.
	Get() (*domain.Settings, error)

	// Set validates and persists a single dot-notation key.
	Set(key, value string) error

	// Value returns the effective value of a key, defaults applied.
	Value(key string) (string, error)

	// Keys returns the supported keys, sorted.
	Keys() []string

	// Path returns the config file location.
	Path() string

	// Validate checks the stored settings.
	Validate() error

	// ValidateProviders pings the configured embedding and generation providers.
	ValidateProviders() error
}
