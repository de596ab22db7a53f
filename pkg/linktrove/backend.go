package linktrove

import (
	"github.com/linktrove/linktrove/internal/logger"
	"github.com/linktrove/linktrove/internal/sqlite"
	"github.com/linktrove/linktrove/pkg/types"
)

// NewBackend creates a new SQLite backend instance. The backend is not
// attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := linktrove.NewBackend(nil)
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".linktrove-db",
//	})
//	defer backend.Detach()
func NewBackend(log logger.Logger) Store {
	return sqlite.NewBackend(log)
}

// Open attaches a SQLite backend for cfg and wraps it in an App.
// The caller owns the App and must Close it.
func Open(cfg types.Config, log logger.Logger) (*App, error) {
	backend := sqlite.NewBackend(log)
	if err := backend.Attach(cfg); err != nil {
		return nil, err
	}
	return New(backend, log), nil
}
