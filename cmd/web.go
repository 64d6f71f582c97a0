package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wanderlist/wanderlist/internal/config"
	"github.com/wanderlist/wanderlist/internal/web"
)

var webPort int

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the local sync JSON API",
	Long:  "Expose sync create/apply/stats/clear as a JSON API on 127.0.0.1 for other local tooling.",
	RunE:  runWebServer,
}

func init() {
	webCmd.Flags().IntVarP(&webPort, "port", "p", 0, "listen port (default from config)")
}

func runWebServer(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	reg, err := newRegistry(cmd.Context())
	if err != nil {
		return err
	}
	srv := web.NewServer(Version, logger, reg, config.DefaultStore(), webPort)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	return srv.Start()
}
