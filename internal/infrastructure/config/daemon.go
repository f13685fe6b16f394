package config

// DaemonConfig configures the long-running scheduler process
type DaemonConfig struct {
	// Lock file guarding against a second scheduler on the same host
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Prefix of generated run ids: "daemon" gives daemon-1a2b3c4d
	RunPrefix string `mapstructure:"run_prefix" validate:"required,alphanum"`
}
