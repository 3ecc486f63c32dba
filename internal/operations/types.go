package operations

import (
	"time"
)

// Pipeline step identifiers
const (
	StepIDCases              = "cases"
	StepIDCoordinates        = "coordinates"
	StepIDContinents         = "continents"
	StepIDSinceThreshold     = "cases_since_t0"
	StepIDDailyChange        = "cases_daily_change"
	StepIDMortality          = "mortality"
	StepIDCountryStats       = "country_stats"
	StepIDCountryToContinent = "country_to_continent"
	StepIDWorldBank          = "world_bank"
	StepIDWorkbook           = "workbook"
	StepIDLake               = "lake"
)

// Pipeline step names
const (
	StepNameCases              = "Case Time Series"
	StepNameCoordinates        = "Country Coordinates"
	StepNameContinents         = "Country Continents"
	StepNameSinceThreshold     = "Cases Since Threshold"
	StepNameDailyChange        = "Daily Change"
	StepNameMortality          = "Mortality Rate"
	StepNameCountryStats       = "Country Stats"
	StepNameCountryToContinent = "Country To Continent"
	StepNameWorldBank          = "World Bank Dataset"
	StepNameWorkbook           = "Workbook Export"
	StepNameLake               = "Lake Export"
)

// Context keys for tables shared between steps
const (
	ContextKeyConfirmed    = "confirmed"
	ContextKeyRecovered    = "recovered"
	ContextKeyDead         = "dead"
	ContextKeyActive       = "active"
	ContextKeyDailyChange  = "daily_change"
	ContextKeySinceT0      = "since_t0"
	ContextKeyMortality    = "mortality"
	ContextKeyCoordinates  = "coordinates"
	ContextKeyContinents   = "continents"
	ContextKeyCountryStats = "country_stats"
	ContextKeyCountryToCon = "country_to_continent"
	ContextKeyCombined     = "combined"
)

// OperationRequest represents a request to execute the pipeline
type OperationRequest struct {
	ID string `json:"id"`
	// Step runs a single step when set; its inputs are read from disk.
	Step       string                 `json:"step,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// OperationResponse represents the response from a pipeline execution
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}
