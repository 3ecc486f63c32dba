package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"

	"covidlab/internal/config"
	"covidlab/internal/infrastructure"
	"covidlab/internal/operations"
	"covidlab/internal/validation"
	"covidlab/pkg/contracts"
)

const (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

type options struct {
	configFile      string
	raw             string
	out             string
	step            string
	workbook        bool
	lake            bool
	continueOnError bool
	version         bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to config.yaml or $COVID_CONFIG)")
	fs.StringVar(&opts.raw, "raw", "", "raw data directory (overrides paths.raw_dir)")
	fs.StringVar(&opts.out, "out", "", "processed data directory (overrides paths.processed_dir)")
	fs.StringVar(&opts.step, "step", "", "run a single step, reading its inputs from the processed directory")
	fs.BoolVar(&opts.workbook, "workbook", false, "also export every table to an xlsx workbook")
	fs.BoolVar(&opts.lake, "lake", false, "also load every table into a DuckDB file")
	fs.BoolVar(&opts.continueOnError, "continue", false, "keep running independent steps after a failure")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func loadConfig(opts *options) *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	if opts.raw != "" {
		cfg.Paths.RawDir = opts.raw
	}
	if opts.out != "" {
		cfg.Paths.ProcessedDir = opts.out
	}
	if opts.workbook {
		cfg.Pipeline.Workbook = true
	}
	if opts.lake {
		cfg.Lake.Enabled = true
	}
	if opts.continueOnError {
		cfg.Pipeline.ContinueOnError = true
	}
	return cfg
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("pipeline"))
		return exitSuccess
	}

	cfg := loadConfig(opts)
	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		return exitFailure
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()
	paths.LogPathResolution()

	if opts.step == "" {
		// Missing inputs still fail their steps; this reports them all up front.
		if err := validation.NewFileValidator(logger).Preflight(paths, cfg.Reference); err != nil {
			logger.Warn("Raw inputs incomplete", slog.String("error", err.Error()))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return exitFailure
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		logger.Error("Failed to create tracer", slog.String("error", err.Error()))
		return exitFailure
	}

	lakePath := ""
	if cfg.Lake.Enabled {
		lakePath = cfg.Lake.Path
		if lakePath == "" {
			lakePath = paths.LakeFile
		}
	}

	registry := operations.NewRegistry()
	if err := operations.RegisterPipeline(registry, &operations.StepOptions{
		Paths:     paths,
		Pipeline:  cfg.Pipeline,
		Reference: cfg.Reference,
		Logger:    logger,
		Workbook:  cfg.Pipeline.Workbook,
		LakePath:  lakePath,
	}); err != nil {
		logger.Error("Failed to register pipeline", slog.String("error", err.Error()))
		return exitFailure
	}

	opConfig := operations.NewConfigBuilder().
		WithContinueOnError(cfg.Pipeline.ContinueOnError).
		WithManifest(paths.ManifestFile).
		Build()
	manager := operations.NewManager(registry, opConfig, tracer)
	manager.SetLogger(logger)

	logger.Info("Starting pipeline",
		slog.String("raw_dir", paths.RawDir),
		slog.String("processed_dir", paths.ProcessedDir),
		slog.String("version", contracts.Version),
		slog.String("step", opts.step),
		slog.Bool("workbook", cfg.Pipeline.Workbook),
		slog.String("lake", lakePath))

	resp, err := manager.Execute(ctx, operations.OperationRequest{Step: opts.step})
	if resp != nil {
		printSummary(stdout, registry, resp)
	}
	if err != nil {
		logger.Error("Pipeline failed",
			slog.String("error", err.Error()),
			slog.String("error_type", string(operations.GetErrorType(err))))
		return exitFailure
	}

	logger.Info("Pipeline complete",
		slog.String("run_id", resp.ID),
		slog.Duration("duration", resp.Duration),
		slog.String("manifest", paths.ManifestFile))
	return exitSuccess
}

// printSummary lists the steps of the run in execution order.
func printSummary(w io.Writer, registry *operations.Registry, resp *operations.OperationResponse) {
	ordered, err := registry.GetDependencyOrder()
	if err != nil {
		return
	}

	fmt.Fprintf(w, "Run %s: %s\n", resp.ID, resp.Status)

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{"Step", "Status", "Duration", "Files", "Rows"})

	for _, step := range ordered {
		state, ok := resp.Steps[step.ID()]
		if !ok {
			continue
		}
		outputs, rows, _ := state.Snapshot()
		table.Append([]string{
			step.ID(),
			string(state.GetStatus()),
			state.Duration().Round(time.Millisecond).String(),
			fmt.Sprintf("%d", len(outputs)),
			fmt.Sprintf("%d", rows),
		})
	}
	table.Render()
}
