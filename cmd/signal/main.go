package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/notification"
	"github.com/rxtech-lab/argo-signal/internal/scanner/engine"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/internal/version"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
)

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML configuration `FILE`",
		Value:   "signal.yaml",
		Sources: cli.EnvVars("ARGO_SIGNAL_CONFIG"),
	}
}

func logLevelFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-level",
		Usage: "Override the configured log level (debug, info, warn, error)",
	}
}

// loadConfig reads the config file and builds the logger at the effective level.
func loadConfig(cmd *cli.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if override := cmd.String("log-level"); override != "" {
		level = override
	}

	log, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // stdout sync errors are not actionable

	a, err := newApp(cfg, log, true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.Root().Writer

	onStart := engine.OnEngineStartCallback(func(symbols []string, interval time.Duration) error {
		fmt.Fprintf(out, "Scanner started: symbols=%v, interval=%s\n", symbols, interval)

		return nil
	})
	onStop := engine.OnEngineStopCallback(func(err error) {
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(out, "Scanner stopped with error: %v\n", err)
		} else {
			fmt.Fprintln(out, "Scanner stopped")
		}
	})
	onSignal := engine.OnSignalCallback(func(record types.SignalRecord) {
		if record.Outcome == types.SignalOutcomeEmitted {
			fmt.Fprintln(out, notification.FormatSignalText(record.Signal))
		}
	})

	err = a.run(ctx, engine.Callbacks{
		OnEngineStart: &onStart,
		OnEngineStop:  &onStop,
		OnSignal:      &onSignal,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func scanOnceAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // stdout sync errors are not actionable

	a, err := newApp(cfg, log, false)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.Root().Writer

	onSignal := engine.OnSignalCallback(func(record types.SignalRecord) {
		fmt.Fprintf(out, "[%s] %s\n", record.Outcome, notification.FormatSignalText(record.Signal))
	})

	report, err := a.scanner.ScanOnce(ctx, engine.Callbacks{OnSignal: &onSignal})
	if err != nil {
		return err
	}

	printReport(out, report)

	return nil
}

func printReport(out io.Writer, report engine.CycleReport) {
	fmt.Fprintf(out, "Cycle %s: %d instruments, %d emitted, %d suppressed, %d delivery failed (%s)\n",
		report.CycleID, report.Instruments, report.Emitted, report.Suppressed, report.DeliveryFailed,
		report.Duration.Round(time.Millisecond))

	for symbol, err := range report.Errors {
		fmt.Fprintf(out, "  skipped %s: %v\n", symbol, err)
	}
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, schema)

	return nil
}

func configAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	out, err := cfg.Redacted()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.Root().Writer, out)

	return nil
}

func versionAction(_ context.Context, cmd *cli.Command) error {
	fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

	return nil
}

func providersAction(_ context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	for _, name := range provider.GetSupportedProviders() {
		info, err := provider.GetProviderInfo(name)
		if err != nil {
			return err
		}

		auth := "no auth"
		if info.RequiresAuth {
			auth = "requires API key"
		}

		fmt.Fprintf(out, "%-10s %-12s %s (%s, up to %d bars per request)\n", info.Name, info.DisplayName, info.Description, auth, info.MaxCandles)

		if cmd.Bool("schema") {
			schema, err := provider.GetProviderConfigSchema(name)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s%s\n", strings.Repeat(" ", 11), schema)
		}
	}

	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "argo-signal",
		Usage:   "Multi-timeframe trading signal scanner",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Poll the configured instruments and deliver signals until interrupted",
				Flags:  []cli.Flag{configFlag(), logLevelFlag()},
				Action: runAction,
			},
			{
				Name:   "scan-once",
				Usage:  "Run a single polling cycle and print the outcome",
				Flags:  []cli.Flag{configFlag(), logLevelFlag()},
				Action: scanOnceAction,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration with secrets masked",
				Flags:  []cli.Flag{configFlag()},
				Action: configAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the configuration file",
				Action: schemaAction,
			},
			{
				Name:  "providers",
				Usage: "List the supported market data providers",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "schema",
						Usage: "Also print each provider's config schema",
					},
				},
				Action: providersAction,
			},
			{
				Name:   "version",
				Usage:  "Print the version",
				Action: versionAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
