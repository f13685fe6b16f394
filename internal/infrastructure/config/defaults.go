package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Search defaults
	if cfg.Search.Workers == 0 {
		cfg.Search.Workers = 3
	}
	if cfg.Search.Burst == 0 {
		cfg.Search.Burst = 1
	}

	// Simulator defaults
	if cfg.Simulator.URL == "" {
		cfg.Simulator.URL = "ws://localhost:8090/v1/port"
	}
	if cfg.Simulator.HandshakeTimeout == 0 {
		cfg.Simulator.HandshakeTimeout = 10 * time.Second
	}

	// Oracle defaults
	if cfg.Oracle.Address == "" {
		cfg.Oracle.Address = "localhost:50061"
	}
	if cfg.Oracle.DialTimeout == 0 {
		cfg.Oracle.DialTimeout = 10 * time.Second
	}
	if cfg.Oracle.BreakerFailures == 0 {
		cfg.Oracle.BreakerFailures = 5
	}
	if cfg.Oracle.BreakerCooldown == 0 {
		cfg.Oracle.BreakerCooldown = 30 * time.Second
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "port-scheduler.db"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.PersistLevel == "" {
		cfg.Logging.PersistLevel = "info"
	}

	// Metrics defaults
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9464"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Daemon defaults
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/port-scheduler.pid"
	}
	if cfg.Daemon.RunPrefix == "" {
		cfg.Daemon.RunPrefix = "daemon"
	}
}
