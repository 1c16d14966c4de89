package proxy

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	wphmr "github.com/artkrsk/vite-plugin-wp-hmr"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/cache"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/devhost"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/phpgen"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/cmd"
	"github.com/artkrsk/vite-plugin-wp-hmr/wphmr-cli/logger"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// MetricsPath serves the probe and injection counters.
const MetricsPath = "/_wphmr/metrics"

var (
	listen   string
	upstream string
)

// proxyCmd represents the proxy command
var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Serve a non-WordPress backend with the Vite client injected",
	Long: `Reverse proxy to --upstream that applies the same host detection, CSP
header and client injection as the generated plugin.`,
	RunE: run,
}

func init() {
	proxyCmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8080", "address to listen on")
	proxyCmd.Flags().StringVar(&upstream, "upstream", "http://127.0.0.1:8000", "backend to forward to")
	cmd.RootCmd.AddCommand(proxyCmd)
}

func run(c *cobra.Command, args []string) error {
	config, err := cmd.LoadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	origin, err := wphmr.ResolveOrigin(ctx, config)
	if err != nil {
		return err
	}
	store, err := cache.NewCache(config.Cache)
	if err != nil {
		return err
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	registry := prometheus.NewRegistry()
	metrics, err := devhost.NewMetrics(registry)
	if err != nil {
		return err
	}
	host := devhost.New(devhost.Config{
		Origin:  phpgen.NewOrigin(origin),
		Options: config.Options(),
		Store:   store,
		Metrics: metrics,
	})
	handler, err := devhost.NewProxy(upstream, host)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", handler)
	server := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()
	color.Cyan("Proxying http://%s -> %s (client from %s)\n", listen, upstream, origin)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.L.Info().Msg("Stopping proxy")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
