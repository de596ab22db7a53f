// Shared helpers for linktrove CLI commands.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/linktrove/linktrove/internal/logger"
	"github.com/linktrove/linktrove/pkg/linktrove"
	"github.com/linktrove/linktrove/pkg/types"
)

// newLogger builds the CLI logger: silent unless --verbose.
func newLogger() logger.Logger {
	if flagVerbose {
		return logger.New("debug", true)
	}
	return logger.Nop()
}

// openApp attaches the store and wraps it in the application facade. The
// caller must defer app.Close().
func openApp() (*linktrove.App, error) {
	cfg, err := buildStoreConfig()
	if err != nil {
		return nil, err
	}

	app, err := linktrove.Open(cfg, newLogger())
	if err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	return app, nil
}

// defaultOrg returns the seeded organization, the scope for every
// collection command that does not name one.
func defaultOrg(app *linktrove.App) (*types.Organization, error) {
	org, err := app.DefaultOrganization()
	if err != nil {
		return nil, fmt.Errorf("resolve organization: %w", err)
	}
	return org, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
