package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/malaterre/GEMS-PARM-01/internal/config"
	"github.com/malaterre/GEMS-PARM-01/internal/metrics"
	"github.com/malaterre/GEMS-PARM-01/internal/output"
	"github.com/malaterre/GEMS-PARM-01/pkg/parm"
)

type cli struct {
	configPath  string
	format      string
	logLevel    string
	metricsFile string
	workers     int
	strict      bool
	summary     bool

	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd(log *logrus.Logger) *cobra.Command {
	c := &cli{log: log}
	root := &cobra.Command{
		Use:   "parm-dump [files...]",
		Short: "Decode and validate GEMS PARM container files",
		Long: "parm-dump selects a layout from each file's length, detects its byte order, " +
			"checks every known constant and prints the decoded groups.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.dump(cmd, args)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to a YAML configuration file")
	flags.StringVarP(&c.format, "output", "o", "", "output format: table, json or yaml")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (trace, debug, info, warning, error)")
	root.Flags().IntVar(&c.workers, "workers", 0, "number of files decoded concurrently")
	root.Flags().BoolVar(&c.strict, "strict", false, "fail on layouts whose body is not derived")
	root.Flags().BoolVar(&c.summary, "summary", false, "print one row per file instead of the decoded groups")
	root.Flags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")

	root.AddCommand(newVariantsCmd(c), newConfigCmd(c))
	return root
}

// load reads the configuration and lets explicitly set flags override it.
func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		format, err := output.ParseFormat(c.format)
		if err != nil {
			return err
		}
		cfg.Output.Format = format
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = c.logLevel
	}
	if flags.Changed("workers") {
		cfg.Batch.Workers = c.workers
	}
	if flags.Changed("strict") {
		cfg.Decode.Strict = c.strict
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = c.metricsFile
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := cfg.Logging.Apply(c.log); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *cli) dump(cmd *cobra.Command, paths []string) error {
	var (
		reg *prometheus.Registry
		m   *metrics.Metrics
	)
	if c.cfg.Metrics.Textfile != "" {
		reg = prometheus.NewRegistry()
		m = metrics.New(reg)
	}

	results := parm.DecodeFiles(cmd.Context(), paths, parm.BatchOptions{
		DecodeOptions: parm.DecodeOptions{
			Strict:  c.cfg.Decode.Strict,
			Logger:  c.log,
			Metrics: m,
		},
		Workers: c.cfg.Batch.Workers,
	})

	printErr := c.print(cmd.OutOrStdout(), results)
	if reg != nil {
		if err := metrics.WriteTextfile(c.cfg.Metrics.Textfile, reg); err != nil {
			c.log.WithError(err).WithField("path", c.cfg.Metrics.Textfile).Error("failed to write metrics")
		}
	}
	if printErr != nil {
		return printErr
	}
	if failed := parm.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func (c *cli) print(out io.Writer, results []parm.FileResult) error {
	printer := output.NewPrinter(out, c.cfg.Output.Format)
	if c.summary {
		return printer.Print(parm.Listing(results))
	}
	if printer.Format() != output.FormatTable {
		summaries := make([]parm.Summary, 0, len(results))
		for _, r := range results {
			summaries = append(summaries, r.Summary())
		}
		return printer.Print(summaries)
	}
	for _, r := range results {
		if r.Err != nil {
			if err := output.PrintFields(out, [][2]string{
				{"file", r.Path},
				{"error", r.Err.Error()},
			}); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out)
			continue
		}
		if err := output.PrintFields(out, [][2]string{
			{"file", r.Path},
			{"variant", r.Result.Variant},
			{"status", r.Result.Status.String()},
			{"byte order", r.Result.ByteOrder.String()},
			{"fingerprint", fmt.Sprintf("%016x", r.Result.Fingerprint)},
		}); err != nil {
			return err
		}
		if err := printer.Print(r.Result); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out)
	}
	return nil
}

func newVariantsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the known layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return output.NewPrinter(cmd.OutOrStdout(), c.cfg.Output.Format).Print(parm.Variants())
		},
	}
}

func newConfigCmd(c *cli) *cobra.Command {
	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "parm.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Save(c.cfg, path); err != nil {
				return err
			}
			c.log.WithField("path", path).Info("configuration written")
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cfgCmd.AddCommand(initCmd)
	return cfgCmd
}
