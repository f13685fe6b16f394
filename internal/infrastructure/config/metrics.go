package config

// MetricsConfig holds metrics collection and exposure configuration
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active
	Enabled bool `mapstructure:"enabled"`

	// Listen address for the HTTP metrics server (Prometheus endpoint)
	Address string `mapstructure:"address"`

	// Path for the metrics endpoint (default: /metrics)
	Path string `mapstructure:"path" validate:"startswith=/"`
}
