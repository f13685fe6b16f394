package config

// LoggingConfig controls the run logger
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`

	// stdout, stderr or file; file needs FilePath
	Output   string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`
	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`

	// Lowest level copied to the run log table when the journal database is
	// enabled. Entries below it are only printed.
	PersistLevel string `mapstructure:"persist_level" validate:"required,oneof=debug info warn error"`
}
