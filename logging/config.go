package logging

// Config is the "logging" section of mviewer.yml.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// MVIEWER_LOG_LEVEL takes precedence.
	Level string `yaml:"level"`

	// ReportCaller includes file, line and function in each entry.
	// Also enabled by MVIEWER_LOG_CALLER=true.
	ReportCaller bool `yaml:"report_caller"`

	File   FileSinkConfig `yaml:"file"`
	Format FormatConfig   `yaml:"format"`
}

// FileSinkConfig configures the file logging sink.
type FileSinkConfig struct {
	// Disabled turns off the default file under the state directory.
	Disabled bool `yaml:"disabled"`
	// Path overrides the default log file location.
	Path string `yaml:"path"`
}

// FormatConfig controls the log output format.
type FormatConfig struct {
	// Preset can be "default", "simple" or "json".
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`
	// StructuredToStderr is "auto" (default), "always" or "never".
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
