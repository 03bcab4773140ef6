package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0x4d31/matcherd/internal/hostconfig"
	"github.com/0x4d31/matcherd/internal/logutil"
	"github.com/0x4d31/matcherd/internal/matcher"
	"github.com/0x4d31/matcherd/internal/reload"
	"github.com/0x4d31/matcherd/internal/trace"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Keep a matcher snapshot hot-reloaded against its configuration directory",
		Long: `daemon loads the host bootstrap configuration, builds an initial matcher
snapshot, and watches the configuration directory for changes, swapping in a
freshly-built snapshot whenever it settles. Event ingestion
and action dispatch transport are supplied by the embedding host; daemon on
its own only keeps the snapshot current and reports reloads.`,
		RunE: runDaemon,
	}
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if flagConfigFile == "" {
		return fmt.Errorf("--config (or MATCHERD_CONFIG) is required for daemon mode")
	}
	cfg, err := hostconfig.Load(flagConfigFile)
	if err != nil {
		return err
	}

	opts := []reload.Option{reload.WithStabilityWait(cfg.Matcher.StabilityWait)}

	var sink *trace.Sink
	if cfg.Trace.Enabled {
		sink, err = trace.Open(cfg.Trace.Path)
		if err != nil {
			return fmt.Errorf("open trace sink: %w", err)
		}
		defer sink.Close()
		opts = append(opts, reload.WithMatcherOptions(matcher.WithTraceSink(sink)))
	}

	r, err := reload.New(cfg.Matcher.ConfigDir, nil, opts...)
	if err != nil {
		return fmt.Errorf("build initial matcher: %w", err)
	}
	defer r.Close()

	logutil.Info("matcherd daemon ready, watching %s (reload_on=%s)", cfg.Matcher.ConfigDir, cfg.Matcher.ReloadOn)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Matcher.ReloadOn == "off" {
		<-ctx.Done()
		return nil
	}
	return r.Start(ctx)
}

