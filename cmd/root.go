package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wanderlist/wanderlist/internal/config"
	"github.com/wanderlist/wanderlist/internal/sync"
	"github.com/wanderlist/wanderlist/internal/update"
)

var Version = "1.2.0"

var rootCmd = &cobra.Command{
	Use:   "wander",
	Short: "Travel discovery companion with encrypted cross-device sync",
	Long: "Track saved and rejected destinations, tune discovery filters, and move\n" +
		"preferences between devices with short-lived encrypted sync codes.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		checker := update.NewChecker(Version)
		checker.Start()
		fmt.Printf("wander %s\n", Version)
		if msg := checker.Notification(); msg != "" {
			fmt.Print(msg)
		}
	},
}

// newRegistry constructs the sync registry from the configured store
// backend. One registry per invocation; commands pass it down explicitly.
func newRegistry(ctx context.Context) (*sync.Registry, error) {
	store, err := sync.NewStore(config.GetSyncStore())
	if err != nil {
		return nil, err
	}
	var opts []sync.Option
	if name := config.GetDeviceName(); name != "" {
		opts = append(opts, sync.WithDeviceName(name))
	}
	return sync.NewRegistry(ctx, store, opts...)
}
