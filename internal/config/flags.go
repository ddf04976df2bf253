package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagCompression = flag.String("compression", "", "Container compression: none or zlib")
	flagFormat      = flag.String("format", "", "Material file format: python, json, yaml or toml")
	flagPreview     = flag.Bool("preview", false, "Also write a binary glTF preview")
	flagNoOptimize  = flag.Bool("no-optimize", false, "Skip vertex cache optimization")
	flagLogFile     = flag.String("log-file", "", "Write logs to this file as well")
	flagSaveConfig  = flag.Bool("save-config", false, "Save the effective config to the user config directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagCompression != "" {
		cfg.Export.Compression = *flagCompression
	}
	if *flagFormat != "" {
		cfg.Export.MaterialFormat = *flagFormat
	}
	if *flagPreview {
		cfg.Export.Preview = true
	}
	if *flagNoOptimize {
		cfg.Export.OptimizeVertexCache = false
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
