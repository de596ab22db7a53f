// Package main provides the linktrove CLI, a local-first manager for
// saved browser tabs organized into collections and groups.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/linktrove/linktrove/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "linktrove:", err)
		os.Exit(exitCodeFor(err))
	}
	os.Exit(exitSuccess)
}

// exitCodeFor maps errors onto exit codes: bad input and refused
// operations are user errors, everything else is a system error.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidURL),
		errors.Is(err, types.ErrLastGroup),
		errors.Is(err, types.ErrLastCollection):
		return exitUserError
	default:
		return exitSysError
	}
}
