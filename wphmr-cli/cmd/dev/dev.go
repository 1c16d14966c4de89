package dev

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	wphmr "github.com/artkrsk/vite-plugin-wp-hmr"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/logger"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var shutdownTimeout time.Duration

// devCmd represents the dev command
var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Keep the plugin in place for the life of the dev server",
	Long: `Write the plugin, regenerate it when the config file changes and remove it
when the dev server goes away or on Ctrl-C.`,
	RunE: dev,
}

func init() {
	devCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "time allowed for cleanup")
	cmd.RootCmd.AddCommand(devCmd)
}

func dev(c *cobra.Command, args []string) error {
	config, err := cmd.LoadConfig()
	if err != nil {
		return err
	}
	engine, err := wphmr.New(config)
	if err != nil {
		return err
	}
	engine.LoadConfig = cmd.LoadConfig

	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Start(ctx); err != nil {
		return err
	}
	color.Cyan("Serving %s from %s\n", engine.ArtifactPath(), engine.Origin())

	select {
	case <-ctx.Done():
		logger.L.Info().Msg("Interrupted")
	case <-engine.Done():
		logger.L.Info().Msg("Dev server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := engine.Shutdown(shutdownCtx); err != nil {
		return err
	}
	color.Green("Done\n")
	return nil
}
