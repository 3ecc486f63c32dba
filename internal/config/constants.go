package config

// Application constants
const (
	AppName    = "covidlab"
	AppVersion = "1.0.0"

	// Directory defaults (relative to the working directory)
	DefaultRawDir       = "data/raw"
	DefaultProcessedDir = "data/processed"
	DefaultImagesDir    = "img"
	DefaultLogsDir      = "logs"

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Pipeline defaults
	DefaultThreshold    = 100
	DefaultMaxDays      = 100
	DefaultMinConfirmed = 5000
	DefaultTopN         = 10

	// DateLayout is how dates are written to every processed table.
	DateLayout = "2006-01-02"
	// CaseDateLayout is the JHU CSSE header date format, e.g. "1/22/20".
	CaseDateLayout = "1/2/06"
)

// Raw input files, relative to Paths.RawDir
const (
	CaseSeriesDir       = "COVID-19/csse_covid_19_data/csse_covid_19_time_series"
	ConfirmedGlobalFile = "time_series_covid19_confirmed_global.csv"
	RecoveredGlobalFile = "time_series_covid19_recovered_global.csv"
	DeathsGlobalFile    = "time_series_covid19_deaths_global.csv"
	DatahubDir          = "datahub"
	CountryCodesFile    = "countries.csv"
	WorldBankDir        = "world_bank"
)

// Processed tables, relative to Paths.ProcessedDir
const (
	ConfirmedCasesFile     = "confirmed_cases.csv"
	RecoveredCasesFile     = "recovered_cases.csv"
	DeadCasesFile          = "dead_cases.csv"
	ActiveCasesFile        = "active_cases.csv"
	DailyChangeFile        = "confirmed_cases_daily_change.csv"
	SinceThresholdFile     = "confirmed_cases_since_t0.csv"
	MortalityRateFile      = "mortality_rate.csv"
	CoordinatesFile        = "coordinates.csv"
	ContinentsFile         = "continents.csv"
	CountryToContinentFile = "country_to_continent.csv"
	CountryStatsFile       = "country_stats.csv"
	WorldBankCodesFile     = "world_bank_codes.csv"
	CombinedFile           = "world_bank.csv"
	WorkbookFile           = "covid19.xlsx"
	LakeFile               = "covid19.duckdb"
	ManifestFile           = "manifest.json"
)
