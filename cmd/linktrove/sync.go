// Sync commands for the linktrove CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linktrove/linktrove/internal/syncer"
	"github.com/linktrove/linktrove/pkg/linktrove"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Back up to and restore from a snapshot server",
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backup state",
	Args:  cobra.NoArgs,
	RunE:  runSyncStatus,
}

var syncConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to the snapshot server and reconcile",
	Long: `Connect checks the server's snapshot against the local dataset and
converges: an empty server receives the local data, a matching checksum is a
no-op, and a server snapshot newer than the last sync replaces local data.`,
	Args: cobra.NoArgs,
	RunE: runSyncConnect,
}

var syncPushCmd = &cobra.Command{
	Use:     "push",
	Aliases: []string{"now"},
	Short:   "Push the local dataset to the snapshot server",
	Args:    cobra.NoArgs,
	RunE:    runSyncPush,
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local dataset with the server's snapshot",
	Args:  cobra.NoArgs,
	RunE:  runSyncPull,
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncConnectCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
}

// openReconciler attaches the store and builds a reconciler against the
// configured snapshot server.
func openReconciler() (*linktrove.App, *syncer.Reconciler, error) {
	cfg, err := buildStoreConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Sync.RemoteURL == "" {
		return nil, nil, fmt.Errorf("no sync.remote_url configured")
	}

	app, err := linktrove.Open(cfg, newLogger())
	if err != nil {
		return nil, nil, fmt.Errorf("attach store: %w", err)
	}

	remote := syncer.NewHTTPRemote(cfg.Sync.RemoteURL, cfg.Sync.Token)
	rec := syncer.New(app.Store(), remote, cfg.Sync, newLogger())
	return app, rec, nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	cfg, err := buildStoreConfig()
	if err != nil {
		return err
	}
	rec := syncer.New(app.Store(), nil, cfg.Sync, newLogger())
	status := rec.Status()

	if flagJSON {
		return printJSON(status)
	}
	fmt.Println("Auto sync:   ", status.Auto)
	fmt.Println("Pending push:", status.PendingPush)
	if status.LastUploadedAt != nil {
		fmt.Println("Last push:   ", *status.LastUploadedAt)
	}
	if status.LastDownloadedAt != nil {
		fmt.Println("Last pull:   ", *status.LastDownloadedAt)
	}
	if status.LastChecksum != "" {
		fmt.Println("Checksum:    ", status.LastChecksum)
	}
	if status.Error != "" {
		fmt.Println("Last error:  ", status.Error)
	}
	return nil
}

func runSyncConnect(cmd *cobra.Command, args []string) error {
	app, rec, err := openReconciler()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := rec.Connect(cmd.Context()); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	status := rec.Status()
	if flagJSON {
		return printJSON(status)
	}
	fmt.Println("Connected. Checksum:", status.LastChecksum)
	return nil
}

func runSyncPush(cmd *cobra.Command, args []string) error {
	app, rec, err := openReconciler()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := rec.Push(cmd.Context()); err != nil {
		return fmt.Errorf("push snapshot: %w", err)
	}
	fmt.Println("Pushed snapshot:", rec.Status().LastChecksum)
	return nil
}

func runSyncPull(cmd *cobra.Command, args []string) error {
	app, rec, err := openReconciler()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := rec.Pull(cmd.Context()); err != nil {
		return fmt.Errorf("pull snapshot: %w", err)
	}
	fmt.Println("Pulled snapshot:", rec.Status().LastChecksum)
	return nil
}
