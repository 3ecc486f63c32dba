// Package config provides centralized configuration management for covidlab.
// It handles loading configuration from multiple sources, validation, and the
// reference lookup tables shared by the processing stages.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern COVID_* for namespacing:
//
//	COVID_LOGGING_LEVEL=debug
//	COVID_PATHS_RAW_DIR=/data/raw
//	COVID_PIPELINE_THRESHOLD=100
//	COVID_LAKE_ENABLED=true
//	COVID_CONFIG=/etc/covidlab/config.yaml
//
// # Reference Tables
//
// Country alias tables, the boat exclusion list and the World Bank indicator
// list are plain values in Reference. They can be overridden from the
// reference section of the YAML file:
//
//	reference:
//	  boats: ["Diamond Princess", "MS Zaandam", "Grand Princess"]
//	  case_aliases:
//	    - {from: "Korea, South", to: "Korea"}
//
// Reference.Validate rejects chained aliases, which keeps alias resolution
// idempotent.
//
// # Paths
//
// Paths resolves every raw input and processed output from the configured
// directories:
//
//	paths := config.NewPaths(cfg.Paths)
//	paths.ProcessedPath(config.ConfirmedCasesFile)
package config
