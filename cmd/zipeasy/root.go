package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zipeasy/zipeasy/internal/config"
	"github.com/zipeasy/zipeasy/internal/progress"
	"github.com/zipeasy/zipeasy/internal/stats"
	"github.com/zipeasy/zipeasy/internal/stats/logger"
	promstats "github.com/zipeasy/zipeasy/internal/stats/prometheus"
)

var (
	// Global flags.
	configPath  string
	verbose     bool
	logFormat   string
	metricsFile string

	// Set up by PersistentPreRunE.
	cfg       config.Config
	log       *zap.Logger
	collector stats.Collector
	prom      *promstats.Collector
)

var rootCmd = &cobra.Command{
	Use:   "zipeasy",
	Short: "Pack folders into zip archives and unpack them again",
	Long: `Zipeasy packs a folder into a zip archive or unpacks a zip archive
into a folder.

Archives can live on local disk, in S3 (s3://bucket/key), in Google Cloud
Storage (gs://bucket/key) or, for reading, behind an http(s) URL.

Examples:
  # Pack the children of ./photos into backup.zip
  zipeasy compress ./photos backup

  # Pack the whole tree with zstd and upload it
  zipeasy compress ./photos s3://my-bucket/backups/photos --recursive --method zstd

  # Unpack into ./restored
  zipeasy extract backup.zip ./restored

  # Check every entry's checksum
  zipeasy verify backup.zip`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console, json")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
}

// setup loads the config file, lets explicitly set flags override it, and
// builds the logger and stats collector.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	c.Log.Verbose = pick(cmd, "verbose", verbose, c.Log.Verbose)
	c.Log.Format = pick(cmd, "log-format", logFormat, c.Log.Format)
	c.MetricsFile = pick(cmd, "metrics-file", metricsFile, c.MetricsFile)
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	log, err = newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	prom = nil
	if cfg.MetricsFile != "" {
		prom = promstats.New(nil)
		collector = prom
	} else {
		collector = logger.New(log.Named("stats"))
	}
	return nil
}

// execute runs the command line and then flushes the logger and metrics
// file. Cobra skips post-run hooks when a command fails, so this runs
// outside of it.
func execute() error {
	cfg, log, collector, prom = config.Config{}, nil, nil, nil

	err := rootCmd.Execute()
	if terr := teardown(); terr != nil && err == nil {
		err = terr
	}
	return err
}

// teardown flushes the logger and writes the metrics file.
func teardown() error {
	if log != nil {
		defer log.Sync()
	}

	if prom != nil {
		if err := prom.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

// newLogger builds a development logger at debug level when verbose and a
// production logger at warn level otherwise.
func newLogger(c config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if c.Verbose {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		zc.Sampling = nil
	}
	zc.Encoding = c.Format
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// progressFunc draws a status line when stderr is a terminal.
func progressFunc() progress.Func {
	if cfg.Log.Verbose || !isatty.IsTerminal(os.Stderr.Fd()) {
		return progress.Nop
	}
	return progress.NewPrinter(os.Stderr)
}

// pick returns the flag value when the flag was set on the command line and
// fromConfig otherwise.
func pick[T any](cmd *cobra.Command, name string, flag, fromConfig T) T {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return flag
	}
	return fromConfig
}
