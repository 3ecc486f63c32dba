// Package operations runs the processing pipeline as a sequence of steps.
//
// Core components:
//
// Manager: runs the steps of a Registry in dependency order, one at a time.
// A failed step marks its dependants skipped and, unless ContinueOnError is
// set, aborts the run. Every step runs once; cancelling the context stops
// the run and skips whatever is left.
//
// Step: a single unit of work. The pipeline steps (cases, coordinates,
// continents, cases_since_t0, cases_daily_change, mortality, country_stats,
// country_to_continent, world_bank and the optional workbook and lake
// exports) pass tables to each other through the OperationState context
// and fall back to the processed CSV files when run on their own.
//
// PipelineManifest: the JSON record of a run, listing every step with its
// status, duration, output files and row counts.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	if err := operations.RegisterPipeline(registry, &operations.StepOptions{
//		Paths:     paths,
//		Pipeline:  cfg.Pipeline,
//		Reference: cfg.Reference,
//	}); err != nil {
//		return err
//	}
//
//	manager := operations.NewManager(registry, operations.NewConfig(), tracer)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{})
package operations
