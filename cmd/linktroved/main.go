// Package main provides linktroved, the snapshot server backing
// linktrove's background sync. One snapshot per authenticated device,
// stored on disk.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/linktrove/linktrove/internal/logger"
	"github.com/linktrove/linktrove/internal/server"
	"github.com/linktrove/linktrove/pkg/linktrove"
)

var (
	flagAddr     string
	flagDataDir  string
	flagSecret   string
	flagLogLevel string
	flagPretty   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "linktroved:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "linktroved",
	Short:         "Linktroved stores whole-dataset snapshots for linktrove sync",
	Version:       linktrove.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue a device token",
	Long: `Token mints a bearer token a linktrove client presents to this server.
Each subject gets an isolated snapshot slot.

Example:
  linktroved token laptop --secret "$LINKTROVED_SECRET" --ttl 8760h`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

var flagTokenTTL time.Duration

func init() {
	rootCmd.Flags().StringVar(&flagAddr, "addr", ":8787", "listen address")
	rootCmd.Flags().StringVar(&flagDataDir, "data-dir", "./linktroved-data", "snapshot storage directory")
	rootCmd.PersistentFlags().StringVar(&flagSecret, "secret", "", "token signing secret (or LINKTROVED_SECRET)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&flagPretty, "pretty", false, "human-readable log output")

	tokenCmd.Flags().DurationVar(&flagTokenTTL, "ttl", 365*24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

// secret resolves the signing secret from the flag or environment.
func secret() ([]byte, error) {
	s := flagSecret
	if s == "" {
		s = os.Getenv("LINKTROVED_SECRET")
	}
	if s == "" {
		return nil, fmt.Errorf("no signing secret: set --secret or LINKTROVED_SECRET")
	}
	return []byte(s), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	sec, err := secret()
	if err != nil {
		return err
	}
	log := logger.New(flagLogLevel, flagPretty)
	defer func() { _ = log.Sync() }()

	srv := server.New(server.Config{
		Addr:    flagAddr,
		Secret:  sec,
		DataDir: flagDataDir,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func runToken(cmd *cobra.Command, args []string) error {
	sec, err := secret()
	if err != nil {
		return err
	}
	token, err := server.IssueToken(sec, args[0], flagTokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Println(token)
	return nil
}
