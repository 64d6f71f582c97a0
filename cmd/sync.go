package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wanderlist/wanderlist/internal/config"
	"github.com/wanderlist/wanderlist/internal/notify"
	"github.com/wanderlist/wanderlist/internal/sync"
	"github.com/wanderlist/wanderlist/tui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Move preferences between devices with an encrypted code",
	Long: "Create a 24-hour sync code on one device and apply it on another.\n" +
		"Preferences are encrypted under a key derived from your email; the\n" +
		"email itself is never stored, only a one-way hash.",
	RunE: runSyncInteractive,
}

var syncCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a sync code for this device's preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		return runSyncCreate(email)
	},
}

var syncApplyCmd = &cobra.Command{
	Use:   "apply <code>",
	Short: "Apply a sync code created on another device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		return runSyncApply(args[0], email)
	},
}

var syncStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show sync code counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry(cmd.Context())
		if err != nil {
			return err
		}
		st := reg.Stats()
		fmt.Printf("Sync codes: %d total, %d active, %d expired\n",
			st.TotalCodes, st.ActiveCodes, st.ExpiredCodes)
		return nil
	},
}

var syncClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all sync codes and their encrypted payloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reg, err := newRegistry(ctx)
		if err != nil {
			return err
		}
		if err := reg.ClearAll(ctx); err != nil {
			return err
		}
		notify.NotifySyncCleared()
		defer notify.Flush()
		fmt.Println("All sync data cleared.")
		return nil
	},
}

func init() {
	syncCreateCmd.Flags().StringP("email", "e", "", "email the code is locked to")
	syncApplyCmd.Flags().StringP("email", "e", "", "email the code was created with")
	syncCmd.AddCommand(syncCreateCmd)
	syncCmd.AddCommand(syncApplyCmd)
	syncCmd.AddCommand(syncStatsCmd)
	syncCmd.AddCommand(syncClearCmd)
}

// runSyncInteractive launches the TUI form when `wander sync` is run
// without a subcommand.
func runSyncInteractive(cmd *cobra.Command, args []string) error {
	action, err := tui.RunSyncForm()
	if err != nil {
		return err
	}
	if action == nil {
		return nil // cancelled
	}
	if action.Mode == tui.SyncModeApply {
		return runSyncApply(action.Code, action.Email)
	}
	return runSyncCreate(action.Email)
}

func runSyncCreate(email string) error {
	ctx := context.Background()
	reg, err := newRegistry(ctx)
	if err != nil {
		return err
	}
	payload, err := sync.BuildLocalPayload(config.DefaultStore(), config.GetDeviceName())
	if err != nil {
		return err
	}
	code, err := reg.CreateSyncLink(ctx, email, payload)
	if err != nil {
		return syncUserError(err)
	}
	notify.NotifySyncCreated(payload.DeviceName,
		len(payload.SavedDestinations), len(payload.RejectedDestinations))
	defer notify.Flush()
	fmt.Printf("Sync code created: %s\n", code)
	fmt.Printf("Valid for %s. On your other device run:\n", sync.CodeTTL)
	fmt.Printf("  wander sync apply %s --email %s\n", code, email)
	return nil
}

func runSyncApply(code, email string) error {
	ctx := context.Background()
	reg, err := newRegistry(ctx)
	if err != nil {
		return err
	}
	payload, err := reg.ApplySyncCode(ctx, code, email)
	if err != nil {
		return syncUserError(err)
	}
	if err := sync.ApplyLocalPayload(config.DefaultStore(), payload); err != nil {
		return err
	}
	notify.NotifySyncApplied(payload.DeviceName,
		len(payload.SavedDestinations), len(payload.RejectedDestinations))
	defer notify.Flush()
	fmt.Printf("Synced %d saved and %d rejected destination(s).\n",
		len(payload.SavedDestinations), len(payload.RejectedDestinations))
	return nil
}

// syncUserError translates registry failures into the copy shown to
// users. Email mismatch and decryption failure share one message so the
// output does not reveal which check failed.
func syncUserError(err error) error {
	switch {
	case errors.Is(err, sync.ErrInvalidEmail):
		return fmt.Errorf("that does not look like a valid email address")
	case errors.Is(err, sync.ErrEmptyCode):
		return fmt.Errorf("enter the sync code from your other device")
	case errors.Is(err, sync.ErrCodeNotFound):
		return fmt.Errorf("invalid sync code")
	case errors.Is(err, sync.ErrCodeExpired):
		return fmt.Errorf("this sync code has expired, create a new one")
	case errors.Is(err, sync.ErrEmailMismatch),
		errors.Is(err, sync.ErrDecryptFailed),
		errors.Is(err, sync.ErrCorruptPayload):
		return fmt.Errorf("the email does not match this code, or the data is corrupted")
	default:
		return err
	}
}
