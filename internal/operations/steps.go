package operations

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"covidlab/internal/aggregate"
	"covidlab/internal/config"
	"covidlab/internal/exporter"
	"covidlab/internal/geo"
	"covidlab/internal/ingest"
	"covidlab/internal/lake"
	"covidlab/internal/metrics"
	"covidlab/internal/reshape"
	"covidlab/pkg/contracts/domain"
)

// StepOptions carries what every pipeline step needs
type StepOptions struct {
	Paths     *config.Paths
	Pipeline  config.PipelineConfig
	Reference config.Reference
	Logger    *slog.Logger

	// Workbook registers the xlsx export step
	Workbook bool
	// LakePath registers the DuckDB export step when set
	LakePath string
}

// env is shared by the step implementations
type env struct {
	paths  *config.Paths
	opts   *StepOptions
	writer *exporter.CSVWriter
	logger *slog.Logger
}

func newEnv(opts *StepOptions, stepID string) env {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return env{
		paths:  opts.Paths,
		opts:   opts,
		writer: exporter.NewCSVWriter(opts.Paths),
		logger: logger.With(slog.String("step", stepID)),
	}
}

// write publishes a processed table and records it on the step state
func (e env) write(ctx context.Context, state *OperationState, stepID string, table exporter.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := e.writer.WriteTable(table)
	if err != nil {
		return err
	}
	if s := state.StepState(stepID); s != nil {
		s.RecordOutput(path, len(table.Rows))
	}
	e.logger.DebugContext(ctx, "table written",
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Header)))
	return nil
}

// input names a table a step consumes: from the run context when an
// earlier step produced it, otherwise from the processed directory.
type input struct {
	key  string
	file string
}

var (
	inConfirmed    = input{ContextKeyConfirmed, config.ConfirmedCasesFile}
	inRecovered    = input{ContextKeyRecovered, config.RecoveredCasesFile}
	inDead         = input{ContextKeyDead, config.DeadCasesFile}
	inActive       = input{ContextKeyActive, config.ActiveCasesFile}
	inDailyChange  = input{ContextKeyDailyChange, config.DailyChangeFile}
	inSinceT0      = input{ContextKeySinceT0, config.SinceThresholdFile}
	inMortality    = input{ContextKeyMortality, config.MortalityRateFile}
	inCoordinates  = input{ContextKeyCoordinates, config.CoordinatesFile}
	inContinents   = input{ContextKeyContinents, config.ContinentsFile}
	inCountryStats = input{ContextKeyCountryStats, config.CountryStatsFile}
	inCountryToCon = input{ContextKeyCountryToCon, config.CountryToContinentFile}
	inCombined     = input{ContextKeyCombined, config.CombinedFile}
)

// requireInputs checks every input is in the run context or on disk
func (e env) requireInputs(state *OperationState, inputs ...input) error {
	for _, in := range inputs {
		if _, ok := state.GetContext(in.key); ok {
			continue
		}
		path := e.paths.ProcessedPath(in.file)
		if !config.FileExists(path) {
			return fmt.Errorf("input %s not found", path)
		}
	}
	return nil
}

// requireFiles checks raw inputs exist
func requireFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("input %s: %w", p, err)
		}
	}
	return nil
}

// load returns an input from the run context, reading and caching it otherwise
func load[T any](e env, state *OperationState, in input, read func(string) (T, error)) (T, error) {
	if v, ok := contextValue[T](state, in.key); ok {
		return v, nil
	}
	v, err := read(e.paths.ProcessedPath(in.file))
	if err != nil {
		var zero T
		return zero, err
	}
	state.SetContext(in.key, v)
	return v, nil
}

func (e env) series(state *OperationState, in input) (*domain.TimeSeriesTable, error) {
	return load(e, state, in, ingest.ReadTimeSeries)
}

// CasesStep reshapes the three JHU global files and derives the active table
type CasesStep struct {
	BaseStep
	env
}

// NewCasesStep creates the case time series step
func NewCasesStep(opts *StepOptions) *CasesStep {
	return &CasesStep{
		BaseStep: NewBaseStep(StepIDCases, StepNameCases, nil),
		env:      newEnv(opts, StepIDCases),
	}
}

// Validate checks the raw case files exist
func (s *CasesStep) Validate(state *OperationState) error {
	return requireFiles(
		s.paths.CaseFile(config.ConfirmedGlobalFile),
		s.paths.CaseFile(config.RecoveredGlobalFile),
		s.paths.CaseFile(config.DeathsGlobalFile),
	)
}

// Execute writes confirmed, recovered, dead and active tables
func (s *CasesStep) Execute(ctx context.Context, state *OperationState) error {
	join, err := reshape.ParseJoin(s.opts.Pipeline.Join)
	if err != nil {
		return err
	}

	sources := []struct {
		raw string
		out input
	}{
		{config.ConfirmedGlobalFile, inConfirmed},
		{config.RecoveredGlobalFile, inRecovered},
		{config.DeathsGlobalFile, inDead},
	}

	// Every input is read and reshaped before anything is written, so a
	// schema error in any file leaves the processed directory untouched.
	tables := make([]*domain.TimeSeriesTable, len(sources))
	for i, src := range sources {
		wide, err := ingest.ReadCaseFile(s.paths.CaseFile(src.raw))
		if err != nil {
			return err
		}
		t, err := reshape.Reshape(wide, s.opts.Reference)
		if err != nil {
			return err
		}
		tables[i] = t
	}

	active, err := reshape.Active(tables[0], tables[1], tables[2], join)
	if err != nil {
		return err
	}

	for i, src := range sources {
		if err := s.write(ctx, state, s.ID(), exporter.TimeSeries(src.out.file, tables[i])); err != nil {
			return err
		}
		state.SetContext(src.out.key, tables[i])
	}
	if err := s.write(ctx, state, s.ID(), exporter.TimeSeries(inActive.file, active)); err != nil {
		return err
	}
	state.SetContext(inActive.key, active)

	stepState := state.StepState(s.ID())
	if stepState != nil {
		stepState.SetMetadata("countries", len(active.Countries))
		stepState.SetMetadata("dates", active.Len())
		stepState.SetMetadata("join", string(join))
	}
	return nil
}

// CoordinatesStep writes the mean coordinates of every country
type CoordinatesStep struct {
	BaseStep
	env
}

// NewCoordinatesStep creates the coordinates step
func NewCoordinatesStep(opts *StepOptions) *CoordinatesStep {
	return &CoordinatesStep{
		BaseStep: NewBaseStep(StepIDCoordinates, StepNameCoordinates, nil),
		env:      newEnv(opts, StepIDCoordinates),
	}
}

// Validate checks the confirmed case file exists
func (s *CoordinatesStep) Validate(state *OperationState) error {
	return requireFiles(s.paths.CaseFile(config.ConfirmedGlobalFile))
}

// Execute writes coordinates.csv
func (s *CoordinatesStep) Execute(ctx context.Context, state *OperationState) error {
	wide, err := ingest.ReadCaseFile(s.paths.CaseFile(config.ConfirmedGlobalFile))
	if err != nil {
		return err
	}
	coords, err := geo.Coordinates(wide, s.opts.Reference)
	if err != nil {
		return err
	}
	if err := s.write(ctx, state, s.ID(), exporter.Coordinates(coords)); err != nil {
		return err
	}
	state.SetContext(inCoordinates.key, coords)
	return nil
}

// ContinentsStep resolves the datahub codes into continent records
type ContinentsStep struct {
	BaseStep
	env
}

// NewContinentsStep creates the continents step
func NewContinentsStep(opts *StepOptions) *ContinentsStep {
	return &ContinentsStep{
		BaseStep: NewBaseStep(StepIDContinents, StepNameContinents, nil),
		env:      newEnv(opts, StepIDContinents),
	}
}

// Validate checks the datahub file exists
func (s *ContinentsStep) Validate(state *OperationState) error {
	return requireFiles(s.paths.CountryCodesPath())
}

// Execute writes continents.csv
func (s *ContinentsStep) Execute(ctx context.Context, state *OperationState) error {
	codes, err := ingest.ReadCountryCodes(s.paths.CountryCodesPath())
	if err != nil {
		return err
	}
	records := geo.Continents(codes, s.opts.Reference)
	if err := s.write(ctx, state, s.ID(), exporter.Continents(records)); err != nil {
		return err
	}
	state.SetContext(inContinents.key, records)

	s.logger.DebugContext(ctx, "continents resolved",
		slog.Int("codes", len(codes)),
		slog.Int("records", len(records)))
	return nil
}

// SinceThresholdStep aligns every country on the day it crossed the threshold
type SinceThresholdStep struct {
	BaseStep
	env
}

// NewSinceThresholdStep creates the days-since-threshold step
func NewSinceThresholdStep(opts *StepOptions) *SinceThresholdStep {
	return &SinceThresholdStep{
		BaseStep: NewBaseStep(StepIDSinceThreshold, StepNameSinceThreshold, []string{StepIDCases}),
		env:      newEnv(opts, StepIDSinceThreshold),
	}
}

// Validate checks the confirmed table is available
func (s *SinceThresholdStep) Validate(state *OperationState) error {
	return s.requireInputs(state, inConfirmed)
}

// Execute writes confirmed_cases_since_t0.csv
func (s *SinceThresholdStep) Execute(ctx context.Context, state *OperationState) error {
	confirmed, err := s.series(state, inConfirmed)
	if err != nil {
		return err
	}
	t, err := metrics.SinceThreshold(confirmed, s.opts.Pipeline.Threshold, s.opts.Pipeline.MaxDays)
	if err != nil {
		return err
	}
	if err := s.write(ctx, state, s.ID(), exporter.RelativeDays(inSinceT0.file, t)); err != nil {
		return err
	}
	state.SetContext(inSinceT0.key, t)
	return nil
}

// DailyChangeStep differences the confirmed table
type DailyChangeStep struct {
	BaseStep
	env
}

// NewDailyChangeStep creates the daily change step
func NewDailyChangeStep(opts *StepOptions) *DailyChangeStep {
	return &DailyChangeStep{
		BaseStep: NewBaseStep(StepIDDailyChange, StepNameDailyChange, []string{StepIDCases}),
		env:      newEnv(opts, StepIDDailyChange),
	}
}

// Validate checks the confirmed table is available
func (s *DailyChangeStep) Validate(state *OperationState) error {
	return s.requireInputs(state, inConfirmed)
}

// Execute writes confirmed_cases_daily_change.csv
func (s *DailyChangeStep) Execute(ctx context.Context, state *OperationState) error {
	confirmed, err := s.series(state, inConfirmed)
	if err != nil {
		return err
	}
	t, err := metrics.DailyChange(confirmed)
	if err != nil {
		return err
	}
	if err := s.write(ctx, state, s.ID(), exporter.TimeSeries(inDailyChange.file, t)); err != nil {
		return err
	}
	state.SetContext(inDailyChange.key, t)
	return nil
}

// MortalityStep derives the mortality rate table
type MortalityStep struct {
	BaseStep
	env
}

// NewMortalityStep creates the mortality step
func NewMortalityStep(opts *StepOptions) *MortalityStep {
	return &MortalityStep{
		BaseStep: NewBaseStep(StepIDMortality, StepNameMortality, []string{StepIDCases}),
		env:      newEnv(opts, StepIDMortality),
	}
}

// Validate checks the confirmed and dead tables are available
func (s *MortalityStep) Validate(state *OperationState) error {
	return s.requireInputs(state, inConfirmed, inDead)
}

// Execute writes mortality_rate.csv
func (s *MortalityStep) Execute(ctx context.Context, state *OperationState) error {
	confirmed, err := s.series(state, inConfirmed)
	if err != nil {
		return err
	}
	dead, err := s.series(state, inDead)
	if err != nil {
		return err
	}
	t, err := metrics.Mortality(confirmed, dead)
	if err != nil {
		return err
	}
	if err := s.write(ctx, state, s.ID(), exporter.TimeSeries(inMortality.file, t)); err != nil {
		return err
	}
	state.SetContext(inMortality.key, t)
	return nil
}

// CountryStatsStep takes the latest value of every case table per country
type CountryStatsStep struct {
	BaseStep
	env
}

// NewCountryStatsStep creates the country stats step
func NewCountryStatsStep(opts *StepOptions) *CountryStatsStep {
	return &CountryStatsStep{
		BaseStep: NewBaseStep(StepIDCountryStats, StepNameCountryStats, []string{StepIDCases, StepIDMortality}),
		env:      newEnv(opts, StepIDCountryStats),
	}
}

// Validate checks the five case tables are available
func (s *CountryStatsStep) Validate(state *OperationState) error {
	return s.requireInputs(state, inConfirmed, inRecovered, inDead, inActive, inMortality)
}

// Execute writes country_stats.csv
func (s *CountryStatsStep) Execute(ctx context.Context, state *OperationState) error {
	var tables aggregate.CaseTables
	for _, t := range []struct {
		in  input
		dst **domain.TimeSeriesTable
	}{
		{inConfirmed, &tables.Confirmed},
		{inRecovered, &tables.Recovered},
		{inDead, &tables.Dead},
		{inActive, &tables.Active},
		{inMortality, &tables.Mortality},
	} {
		table, err := s.series(state, t.in)
		if err != nil {
			return err
		}
		*t.dst = table
	}

	stats, err := aggregate.CountryStats(tables)
	if err != nil {
		return err
	}
	if err := s.write(ctx, state, s.ID(), exporter.CountryStats(stats)); err != nil {
		return err
	}
	state.SetContext(inCountryStats.key, stats)
	return nil
}

// CountryToContinentStep joins coordinates and continent records
type CountryToContinentStep struct {
	BaseStep
	env
}

// NewCountryToContinentStep creates the country to continent step
func NewCountryToContinentStep(opts *StepOptions) *CountryToContinentStep {
	return &CountryToContinentStep{
		BaseStep: NewBaseStep(StepIDCountryToContinent, StepNameCountryToContinent, []string{StepIDCoordinates, StepIDContinents}),
		env:      newEnv(opts, StepIDCountryToContinent),
	}
}

// Validate checks coordinates and continents are available
func (s *CountryToContinentStep) Validate(state *OperationState) error {
	return s.requireInputs(state, inCoordinates, inContinents)
}

// Execute writes country_to_continent.csv
func (s *CountryToContinentStep) Execute(ctx context.Context, state *OperationState) error {
	coords, err := load(s.env, state, inCoordinates, ingest.ReadCoordinates)
	if err != nil {
		return err
	}
	records, err := load(s.env, state, inContinents, ingest.ReadCountryRecords)
	if err != nil {
		return err
	}
	rows := geo.CountryToContinent(coords, records)
	if err := s.write(ctx, state, s.ID(), exporter.CountryToContinent(rows)); err != nil {
		return err
	}
	state.SetContext(inCountryToCon.key, rows)

	if dropped := len(coords) - len(rows); dropped > 0 {
		s.logger.DebugContext(ctx, "countries without continent dropped", slog.Int("count", dropped))
	}
	return nil
}

// WorldBankStep builds the combined socioeconomic dataset
type WorldBankStep struct {
	BaseStep
	env
}

// NewWorldBankStep creates the World Bank step
func NewWorldBankStep(opts *StepOptions) *WorldBankStep {
	return &WorldBankStep{
		BaseStep: NewBaseStep(StepIDWorldBank, StepNameWorldBank, []string{StepIDContinents, StepIDCountryStats}),
		env:      newEnv(opts, StepIDWorldBank),
	}
}

// Validate checks the indicator files, the code table and the joined tables
func (s *WorldBankStep) Validate(state *OperationState) error {
	files := []string{s.paths.ProcessedPath(config.WorldBankCodesFile)}
	for _, ind := range s.opts.Reference.Indicators {
		files = append(files, s.paths.IndicatorPath(ind.Code))
	}
	if err := requireFiles(files...); err != nil {
		return err
	}
	return s.requireInputs(state, inContinents, inCountryStats)
}

// Execute writes world_bank.csv
func (s *WorldBankStep) Execute(ctx context.Context, state *OperationState) error {
	ref := s.opts.Reference

	tables := make([]*domain.IndicatorTable, 0, len(ref.Indicators))
	labels := make([]string, 0, len(ref.Indicators))
	duplicates := 0
	for _, ind := range ref.Indicators {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := ingest.ReadIndicator(s.paths.IndicatorPath(ind.Code), ind.Code, ind.Label)
		if err != nil {
			return err
		}
		latest, dups := aggregate.LatestObservations(raw)
		for _, d := range dups {
			s.logger.WarnContext(ctx, "several observations at latest year",
				slog.String("indicator", d.Indicator),
				slog.String("country", d.Country),
				slog.Int("year", d.Year),
				slog.Int("count", d.Count))
		}
		duplicates += len(dups)
		tables = append(tables, latest)
		labels = append(labels, ind.Label)
	}

	codes, err := ingest.ReadWorldBankCodes(s.paths.ProcessedPath(config.WorldBankCodesFile))
	if err != nil {
		return err
	}
	records, err := load(s.env, state, inContinents, ingest.ReadCountryRecords)
	if err != nil {
		return err
	}
	stats, err := load(s.env, state, inCountryStats, ingest.ReadCountryStats)
	if err != nil {
		return err
	}

	ds, err := aggregate.Combine(aggregate.CombineInput{
		Indicators:   aggregate.MergeIndicators(tables),
		Labels:       labels,
		WorldBank:    codes,
		Continents:   records,
		Stats:        stats,
		MinConfirmed: s.opts.Pipeline.MinConfirmed,
	}, ref)
	if err != nil {
		return err
	}
	if err := s.write(ctx, state, s.ID(), exporter.Combined(ds)); err != nil {
		return err
	}
	state.SetContext(inCombined.key, ds)

	if stepState := state.StepState(s.ID()); stepState != nil {
		stepState.SetMetadata("countries", len(ds.Rows))
		stepState.SetMetadata("duplicates", duplicates)
	}
	return nil
}

// processedSteps are the steps whose tables the exports read
var processedSteps = []string{
	StepIDCases,
	StepIDCoordinates,
	StepIDContinents,
	StepIDSinceThreshold,
	StepIDDailyChange,
	StepIDMortality,
	StepIDCountryStats,
	StepIDCountryToContinent,
	StepIDWorldBank,
}

var processedInputs = []input{
	inConfirmed, inRecovered, inDead, inActive,
	inDailyChange, inSinceT0, inMortality,
	inCoordinates, inContinents, inCountryToCon,
	inCountryStats, inCombined,
}

// processedTables loads every processed table laid out for export
func (e env) processedTables(state *OperationState) ([]exporter.Table, error) {
	var out []exporter.Table
	for _, in := range []input{inConfirmed, inRecovered, inDead, inActive, inDailyChange, inMortality} {
		t, err := e.series(state, in)
		if err != nil {
			return nil, err
		}
		out = append(out, exporter.TimeSeries(in.file, t))
	}

	sinceT0, err := load(e, state, inSinceT0, ingest.ReadRelativeDays)
	if err != nil {
		return nil, err
	}
	coords, err := load(e, state, inCoordinates, ingest.ReadCoordinates)
	if err != nil {
		return nil, err
	}
	records, err := load(e, state, inContinents, ingest.ReadCountryRecords)
	if err != nil {
		return nil, err
	}
	countryToCon, err := load(e, state, inCountryToCon, ingest.ReadCountryContinents)
	if err != nil {
		return nil, err
	}
	stats, err := load(e, state, inCountryStats, ingest.ReadCountryStats)
	if err != nil {
		return nil, err
	}
	combined, err := load(e, state, inCombined, ingest.ReadCombined)
	if err != nil {
		return nil, err
	}

	return append(out,
		exporter.RelativeDays(inSinceT0.file, sinceT0),
		exporter.Coordinates(coords),
		exporter.Continents(records),
		exporter.CountryToContinent(countryToCon),
		exporter.CountryStats(stats),
		exporter.Combined(combined),
	), nil
}

// WorkbookStep writes every processed table into one xlsx workbook
type WorkbookStep struct {
	BaseStep
	env
}

// NewWorkbookStep creates the workbook export step
func NewWorkbookStep(opts *StepOptions) *WorkbookStep {
	return &WorkbookStep{
		BaseStep: NewBaseStep(StepIDWorkbook, StepNameWorkbook, processedSteps),
		env:      newEnv(opts, StepIDWorkbook),
	}
}

// Validate checks every processed table is available
func (s *WorkbookStep) Validate(state *OperationState) error {
	return s.requireInputs(state, processedInputs...)
}

// Execute writes the workbook
func (s *WorkbookStep) Execute(ctx context.Context, state *OperationState) error {
	tables, err := s.processedTables(state)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := exporter.NewWorkbookExporter(s.paths.WorkbookFile).Export(tables); err != nil {
		return err
	}

	rows := 0
	for _, t := range tables {
		rows += len(t.Rows)
	}
	if stepState := state.StepState(s.ID()); stepState != nil {
		stepState.RecordOutput(s.paths.WorkbookFile, rows)
		stepState.SetMetadata("sheets", len(tables))
	}
	return nil
}

// LakeStep loads every processed table into DuckDB
type LakeStep struct {
	BaseStep
	env
	path string
}

// NewLakeStep creates the lake export step
func NewLakeStep(opts *StepOptions) *LakeStep {
	return &LakeStep{
		BaseStep: NewBaseStep(StepIDLake, StepNameLake, processedSteps),
		env:      newEnv(opts, StepIDLake),
		path:     opts.LakePath,
	}
}

// Validate checks every processed table is available
func (s *LakeStep) Validate(state *OperationState) error {
	return s.requireInputs(state, processedInputs...)
}

// Execute replaces every lake table
func (s *LakeStep) Execute(ctx context.Context, state *OperationState) error {
	db, err := lake.Open(ctx, s.path, s.logger)
	if err != nil {
		return err
	}
	defer db.Close()

	rows := 0
	record := func(n int, err error) error {
		rows += n
		return err
	}

	for _, in := range []input{inConfirmed, inRecovered, inDead, inActive, inDailyChange, inMortality} {
		t, err := s.series(state, in)
		if err != nil {
			return err
		}
		if err := record(db.WriteSeries(ctx, lake.TableName(in.file), t)); err != nil {
			return err
		}
	}

	sinceT0, err := load(s.env, state, inSinceT0, ingest.ReadRelativeDays)
	if err != nil {
		return err
	}
	if err := record(db.WriteRelativeDays(ctx, lake.TableName(inSinceT0.file), sinceT0)); err != nil {
		return err
	}

	stats, err := load(s.env, state, inCountryStats, ingest.ReadCountryStats)
	if err != nil {
		return err
	}
	if err := record(db.WriteCountryStats(ctx, stats)); err != nil {
		return err
	}

	countryToCon, err := load(s.env, state, inCountryToCon, ingest.ReadCountryContinents)
	if err != nil {
		return err
	}
	if err := record(db.WriteCountryContinents(ctx, countryToCon)); err != nil {
		return err
	}

	combined, err := load(s.env, state, inCombined, ingest.ReadCombined)
	if err != nil {
		return err
	}
	if err := record(db.WriteCombined(ctx, combined)); err != nil {
		return err
	}

	if stepState := state.StepState(s.ID()); stepState != nil {
		stepState.RecordOutput(s.path, rows)
	}
	s.logger.InfoContext(ctx, "lake updated",
		slog.String("path", s.path),
		slog.Int("rows", rows))
	return nil
}

// StepFactory creates the pipeline steps in run order
func StepFactory(opts *StepOptions) []Step {
	steps := []Step{
		NewCasesStep(opts),
		NewCoordinatesStep(opts),
		NewContinentsStep(opts),
		NewSinceThresholdStep(opts),
		NewDailyChangeStep(opts),
		NewMortalityStep(opts),
		NewCountryStatsStep(opts),
		NewCountryToContinentStep(opts),
		NewWorldBankStep(opts),
	}
	if opts.Workbook {
		steps = append(steps, NewWorkbookStep(opts))
	}
	if opts.LakePath != "" {
		steps = append(steps, NewLakeStep(opts))
	}
	return steps
}

// RegisterPipeline registers every step StepFactory creates
func RegisterPipeline(registry *Registry, opts *StepOptions) error {
	if opts == nil || opts.Paths == nil {
		return NewFatalError("step options require paths", nil)
	}
	for _, step := range StepFactory(opts) {
		if err := registry.Register(step); err != nil {
			return err
		}
	}
	return registry.ValidateDependencies()
}

var (
	_ Step = (*CasesStep)(nil)
	_ Step = (*CoordinatesStep)(nil)
	_ Step = (*ContinentsStep)(nil)
	_ Step = (*SinceThresholdStep)(nil)
	_ Step = (*DailyChangeStep)(nil)
	_ Step = (*MortalityStep)(nil)
	_ Step = (*CountryStatsStep)(nil)
	_ Step = (*CountryToContinentStep)(nil)
	_ Step = (*WorldBankStep)(nil)
	_ Step = (*WorkbookStep)(nil)
	_ Step = (*LakeStep)(nil)
)
