package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	grpcadapter "github.com/bft-labs/logship/internal/adapters/grpc"
	"github.com/bft-labs/logship/internal/cliconfig"
	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/metrics"
	"github.com/bft-labs/logship/pkg/log"
)

func newCollectCommand(cfg *cliconfig.Config, load func(*cobra.Command) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run a collector that prints received entries",
		Long: `Accept logging streams and print every entry on stdout.
With --fail-with every stream is rejected with the given status, e.g.
--fail-with 'INTERNAL:TEST ERROR'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd); err != nil {
				return err
			}
			if err := cfg.ValidateCollect(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runCollect(ctx, *cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "address to accept streams on")
	f.StringVar(&cfg.FailWith, "fail-with", cfg.FailWith, "reject every stream with CODE:description")
	return cmd
}

func runCollect(ctx context.Context, cfg cliconfig.Config) error {
	zl := cliconfig.Logger(cfg.LogLevel)
	out := zerolog.New(os.Stdout).With().Timestamp().Logger()

	failure, err := cliconfig.ParseFailure(cfg.FailWith)
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	m := metrics.NewCollector(promReg)
	serveMetrics(ctx, cfg.MetricsAddr, promReg, zl)

	opts := []grpcadapter.CollectorOption{
		grpcadapter.WithStreamObserver(func(string) { m.StreamsAccepted.Inc() }),
	}
	if failure != nil {
		opts = append(opts, grpcadapter.WithFailure(failure))
	}

	collector := grpcadapter.NewCollector(printer(out, m), log.NewZerologAdapterWithLogger(zl), opts)
	zl.Info().Str("addr", cfg.ListenAddr).Msg("collector listening")
	return collector.ListenAndServe(ctx, cfg.ListenAddr)
}

// printer writes one JSON line per entry and counts what it printed.
func printer(out zerolog.Logger, m *metrics.Collector) grpcadapter.BatchHandler {
	return func(_ context.Context, session string, entries []domain.LogEntry) error {
		m.BatchesReceived.Inc()
		for _, e := range entries {
			m.EntriesReceived.WithLabelValues(e.Severity.String()).Inc()

			ev := out.Log().
				Str("session", session).
				Str("severity", e.Severity.String()).
				Time("emitted", e.Time()).
				Str("logger", e.LogLocation).
				Str("thread", e.Thread)
			if e.InstructionID != "" {
				ev = ev.Str("instruction_id", e.InstructionID)
			}
			if e.Trace != "" {
				ev = ev.Str("trace", e.Trace)
			}
			if len(e.CustomData) > 0 {
				ev = ev.Interface("custom_data", e.CustomData)
			}
			ev.Msg(e.Message)
		}
		return nil
	}
}
