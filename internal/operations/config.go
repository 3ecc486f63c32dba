package operations

// Config represents the pipeline execution configuration. Steps run once,
// in order; a failed step is not retried, and a run stops only on failure
// or when its context is cancelled.
type Config struct {
	// Whether to continue on Step failures. Dependants of a failed step
	// are still skipped.
	ContinueOnError bool `json:"continue_on_error"`

	// ManifestPath is where the run manifest is written; empty disables it.
	ManifestPath string `json:"manifest_path"`
}

// NewConfig returns the default pipeline configuration
func NewConfig() *Config {
	return &Config{}
}

// ConfigBuilder provides a fluent interface for building pipeline configurations
type ConfigBuilder struct {
	config *Config
}

// NewConfigBuilder creates a new configuration builder
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: NewConfig(),
	}
}

// WithContinueOnError sets whether to continue on errors
func (b *ConfigBuilder) WithContinueOnError(continueOnError bool) *ConfigBuilder {
	b.config.ContinueOnError = continueOnError
	return b
}

// WithManifest sets the manifest path
func (b *ConfigBuilder) WithManifest(path string) *ConfigBuilder {
	b.config.ManifestPath = path
	return b
}

// Build returns the built configuration
func (b *ConfigBuilder) Build() *Config {
	return b.config
}
