package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Sync holds background backup settings. Zero values disable sync.
	Sync SyncConfig `json:"sync" yaml:"sync"`
}

// SyncConfig holds background backup reconciler settings.
type SyncConfig struct {
	// RemoteURL is the base URL of the snapshot server.
	RemoteURL string `json:"remote_url" yaml:"remote_url"`

	// Token is the bearer token presented to the snapshot server.
	Token string `json:"token" yaml:"token"`

	// Auto enables debounced automatic pushes on local change.
	Auto bool `json:"auto" yaml:"auto"`

	// Debounce is the delay collapsing rapid local mutations into one
	// push. Zero selects the default of 2 seconds.
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}
