package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/logship"
	"github.com/bft-labs/logship/internal/cliconfig"
)

const helpDescription = `
Bridge a process's log records to a remote collector over one gRPC stream.

Commands:
  forward  ship lines from stdin or a followed file as log records
  collect  run a collector that prints every entry it receives

Configuration is read from $HOME/.logship/config.toml, then LOGSHIP_*
environment variables (a .env file in the working directory is loaded
first), then flags. Later sources win.
`

var exampleUsage = strings.TrimSpace(`
  logship collect --listen :8099 --metrics-addr :9100
  tail -f app.log | logship forward --endpoint localhost:8099 --logger app
  logship forward --file /var/log/app.log --follow --level-overrides '{"app":"DEBUG"}'
`)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "logship:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath, envPath string

	root := &cobra.Command{
		Use:           "logship",
		Short:         "Ship log records to a remote collector",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", logship.Version(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.logship/config.toml)")
	root.PersistentFlags().StringVar(&envPath, "env-file", ".env", "optional dotenv file loaded before reading LOGSHIP_* variables")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "level of logship's own diagnostics (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address to serve Prometheus metrics on (disabled when empty)")

	load := func(cmd *cobra.Command) error {
		return loadConfig(cmd, &cfg, cfgPath, envPath)
	}

	root.AddCommand(newForwardCommand(&cfg, load))
	root.AddCommand(newCollectCommand(&cfg, load))
	return root
}

// loadConfig layers file, environment and flag values into cfg. Flags the
// user set explicitly are never overwritten.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath, envPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("config file %s not found", cfgPath)
	}

	if err := cliconfig.LoadDotEnv(envPath); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return cliconfig.ApplyEnvConfig(cfg, changed)
}

// serveMetrics exposes reg on addr until ctx is done. It returns at once
// when addr is empty.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger zerolog.Logger) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown metrics server")
		}
	}()
}
