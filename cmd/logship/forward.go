package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bft-labs/logship/internal/cliconfig"
	"github.com/bft-labs/logship/internal/tail"
	"github.com/bft-labs/logship/pkg/log"
	"github.com/bft-labs/logship/pkg/logship"
	"github.com/bft-labs/logship/pkg/mdc"
	"github.com/bft-labs/logship/pkg/registry"
)

func newForwardCommand(cfg *cliconfig.Config, load func(*cobra.Command) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Ship lines from stdin or a file as log records",
		Long: `Each input line becomes one record on --logger at --record-level.
Records pass through the configured levels before they are shipped. The run
gets a fresh instruction id. Interrupting the command flushes what was read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd); err != nil {
				return err
			}
			if err := cfg.ValidateForward(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runForward(ctx, *cfg, cmd.InOrStdin())
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "collector address")
	f.StringVar(&cfg.DefaultLevel, "default-level", cfg.DefaultLevel, "root logger level while shipping")
	f.StringVar(&cfg.LevelOverrides, "level-overrides", cfg.LevelOverrides, `per-logger levels as a JSON object, e.g. '{"db":"DEBUG"}'`)
	f.DurationVar(&cfg.CloseTimeout, "close-timeout", cfg.CloseTimeout, "how long to wait for the collector on shutdown (0 waits indefinitely)")
	f.IntVar(&cfg.MaxBatchEntries, "max-batch-entries", cfg.MaxBatchEntries, "maximum entries per message (0 for no cap)")
	f.IntVar(&cfg.MaxQueueEntries, "max-queue-entries", cfg.MaxQueueEntries, "maximum queued entries before records are dropped (0 for unbounded)")
	f.StringVar(&cfg.Compression, "compression", cfg.Compression, "stream compression: none or zstd")
	f.StringVar(&cfg.File, "file", cfg.File, "read from this file instead of stdin")
	f.BoolVar(&cfg.Follow, "follow", cfg.Follow, "keep reading --file as it grows")
	f.StringVar(&cfg.LoggerName, "logger", cfg.LoggerName, "logger the records are emitted on")
	f.StringVar(&cfg.RecordLevel, "record-level", cfg.RecordLevel, "level of the emitted records")
	return cmd
}

func runForward(ctx context.Context, cfg cliconfig.Config, stdin io.Reader) error {
	zl := cliconfig.Logger(cfg.LogLevel)
	logger := log.NewZerologAdapterWithLogger(zl)

	bridgeCfg, err := cfg.BridgeConfig()
	if err != nil {
		return err
	}
	level, err := registry.ParseLevel(cfg.RecordLevel)
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	serveMetrics(ctx, cfg.MetricsAddr, promReg, zl)

	instruction := uuid.NewString()
	mdc.SetInstructionID(instruction)

	client, err := logship.New(ctx, bridgeCfg,
		logship.WithLogger(logger),
		logship.WithMetrics(promReg),
	)
	if err != nil {
		return fmt.Errorf("open log stream: %w", err)
	}

	zl.Info().
		Str("endpoint", cfg.Endpoint).
		Str("instruction_id", instruction).
		Str("logger", cfg.LoggerName).
		Msg("forwarding")

	source := registry.GetLogger(cfg.LoggerName)
	var lines int
	emit := func(line string) {
		lines++
		source.Log(registry.NewRecord(level, line))
	}

	readErr := readInput(ctx, cfg, stdin, emit, logger)
	closeErr := client.Close()

	zl.Info().
		Int("lines", lines).
		Uint64("dropped", client.Dropped()).
		Str("state", client.Status().String()).
		Msg("forward finished")

	if closeErr != nil {
		closeErr = fmt.Errorf("close log stream: %w", closeErr)
	}
	return errors.Join(readErr, closeErr)
}

func readInput(ctx context.Context, cfg cliconfig.Config, stdin io.Reader, emit func(string), logger log.Logger) error {
	if cfg.File == "" {
		return tail.Lines(ctx, stdin, emit)
	}
	if cfg.Follow {
		return tail.New(cfg.File, tail.WithLogger(logger)).Run(ctx, emit)
	}

	f, err := os.Open(cfg.File)
	if err != nil {
		return err
	}
	defer f.Close()
	return tail.Lines(ctx, f, emit)
}
