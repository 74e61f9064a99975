// Command ohlcv-validate checks an OHLCV CSV file before it is handed
// to a backtesting pipeline and reports what it found. The exit code is
// 0 when validation passed, 1 when it failed, 2 on usage or I/O errors.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/johnayoung/go-ohlcv-validator/internal/calendar"
	appconfig "github.com/johnayoung/go-ohlcv-validator/internal/config"
	"github.com/johnayoung/go-ohlcv-validator/internal/loader"
	"github.com/johnayoung/go-ohlcv-validator/internal/logger"
	"github.com/johnayoung/go-ohlcv-validator/internal/report"
	"github.com/johnayoung/go-ohlcv-validator/internal/validation"
)

var version = "dev"

type validateOptions struct {
	configPath   string
	assetType    string
	assetName    string
	timeframe    string
	calendarName string
	strict       bool
	jsonPath     string
	quiet        bool
}

// exitCode is set by the validate command so deferred cleanup runs
// before the process exits.
var exitCode = report.ExitPassed

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(report.ExitError)
	}
	os.Exit(exitCode)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ohlcv-validate",
		Short:         "Validate OHLCV time-series before backtesting",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate <csv-file>",
		Short: "Run the validation battery over a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVarP(&opts.assetType, "asset-type", "a", "", "asset class: equity, forex or crypto")
	cmd.Flags().StringVarP(&opts.assetName, "asset", "n", "", "asset name used in the report (defaults to the file name)")
	cmd.Flags().StringVarP(&opts.timeframe, "timeframe", "t", "", "bar timeframe, e.g. 1d, 1h, 5m")
	cmd.Flags().StringVar(&opts.calendarName, "calendar", "", "trading calendar for continuity checks")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "escalate warnings to errors")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "write the JSON report to this path ('-' for stdout)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the text report")
	return cmd
}

func runValidate(cmd *cobra.Command, path string, opts *validateOptions) error {
	appCfg, err := appconfig.Load(opts.configPath)
	if err != nil {
		return err
	}

	log, closer, err := logger.New(appCfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	cfg := appCfg.Validation
	if opts.strict {
		cfg.StrictMode = true
	}
	if opts.timeframe != "" {
		cfg.Timeframe = opts.timeframe
	}
	asset := cfg.AssetType
	if opts.assetType != "" {
		asset, err = validation.ParseAssetType(opts.assetType)
		if err != nil {
			return err
		}
	}

	calendarName := appCfg.Calendar
	if opts.calendarName != "" {
		calendarName = opts.calendarName
	}
	if calendarName != "" {
		cfg.CalendarName = calendarName
	}
	var cal calendar.Calendar
	if calendarName != "" {
		registry := calendar.DefaultRegistry()
		resolved, ok := registry.Lookup(calendarName)
		if !ok {
			return fmt.Errorf("unknown calendar %q (known: %v)", calendarName, registry.Names())
		}
		cal = resolved
	}

	fr, err := loader.LoadCSV(path)
	if err != nil {
		return err
	}

	assetName := opts.assetName
	if assetName == "" {
		assetName = path
	}

	validator := validation.NewValidatorForAsset(asset, cfg, log)
	result := validator.Validate(cmd.Context(), &validation.Input{
		Frame:    fr,
		Calendar: cal,
		Asset:    assetName,
	})

	if !opts.quiet {
		report.Render(cmd.OutOrStdout(), result)
	}
	if opts.jsonPath != "" {
		data, err := validation.MarshalReport(result)
		if err != nil {
			return err
		}
		if opts.jsonPath == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		} else if err := os.WriteFile(opts.jsonPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write JSON report: %w", err)
		}
	}

	exitCode = report.ExitCode(result)
	return nil
}
