package driven

import "github.com/custodia-labs/chainaudit/internal/core/domain"

// SettingsStore loads and persists application settings.
type SettingsStore interface {
	// Load returns the effective settings: defaults overlaid with the
	// persisted file and the environment.
	Load() (domain.AppSettings, error)

	// Save persists settings.
	Save(settings domain.AppSettings) error

	// Path returns where settings are persisted.
	Path() string
}
