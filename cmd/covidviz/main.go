package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"covidlab/internal/config"
	"covidlab/internal/gnuplot"
	"covidlab/internal/viz"
	"covidlab/pkg/contracts"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

func main() {
	os.Exit(int(Run(os.Args[1:], os.Stdout)))
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout io.Writer) ExitCode {
	rootCmd := newRootCmd(stdout)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "covidviz",
		Short:        "Listings and charts from the processed COVID-19 tables.",
		SilenceUsage: true,
		Version:      contracts.GetVersionString("covidviz"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	defaults := config.Default()
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "set debug logging level")
	rootCmd.PersistentFlags().String("config", "", "YAML config file (defaults to config.yaml or $COVID_CONFIG)")
	rootCmd.PersistentFlags().String("data", "", "processed data directory (default "+defaults.Paths.ProcessedDir+")")
	rootCmd.PersistentFlags().String("img", "", "image output directory (default "+defaults.Paths.ImagesDir+")")
	rootCmd.PersistentFlags().Bool("no-plot", false, "print listings only, do not run gnuplot")

	rootCmd.AddCommand(
		newCountryCmd(),
		newContinentCmd(),
		newWorldCmd(),
		newTopCmd(),
		newMortalityCmd(),
		newChangeCmd(),
		newGrowthCmd(),
		newScatterCmd(),
		newCorrCmd(),
	)
	return rootCmd
}

// session is what every subcommand works with
type session struct {
	log     *slog.Logger
	data    *viz.Dataset
	plotter *viz.Plotter
	plot    bool
	out     io.Writer
}

func newSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	configFile, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	dataDir, err := flags.GetString("data")
	if err != nil {
		return nil, fmt.Errorf("failed to get data flag: %w", err)
	}
	imgDir, err := flags.GetString("img")
	if err != nil {
		return nil, fmt.Errorf("failed to get img flag: %w", err)
	}
	noPlot, err := flags.GetBool("no-plot")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-plot flag: %w", err)
	}

	log := newLogger(verbose)

	var cfg *config.Config
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if dataDir != "" {
		cfg.Paths.ProcessedDir = dataDir
	}
	if imgDir != "" {
		cfg.Paths.ImagesDir = imgDir
	}

	log.Debug("Loading processed tables", "dir", cfg.Paths.ProcessedDir)
	data, err := viz.Load(cfg.Paths.ProcessedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load processed data: %w", err)
	}

	return &session{
		log:     log,
		data:    data,
		plotter: viz.NewPlotter(data, gnuplot.New(cfg.Plot, log), cfg.Paths.ImagesDir, log),
		plot:    !noPlot,
		out:     cmd.OutOrStdout(),
	}, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
