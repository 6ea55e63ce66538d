package config

import "flag"

// skeltool dispatches subcommands, so config flags are registered on
// each command's FlagSet instead of the global flag package.
var (
	flagConfig    *string
	flagDebug     *bool
	flagLogFile   *string
	flagFormat    *string
	flagPrecision *int
)

// AddFlags registers the configuration flags on fs. Call before
// fs.Parse; Load picks the parsed values up afterwards.
func AddFlags(fs *flag.FlagSet) {
	flagConfig = fs.String("config", "", "Path to config file")
	flagDebug = fs.Bool("debug", false, "Enable debug logging")
	flagLogFile = fs.String("log-file", "", "Write logs to this file")
	flagFormat = fs.String("format", "", "Output format: yaml or json")
	flagPrecision = fs.Int("precision", -1, "Decimal places in query output")
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	if flagConfig == nil {
		return ""
	}
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if flagConfig == nil {
		// Flags were never registered (library use).
		return
	}
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagFormat != "" {
		cfg.Output.Format = *flagFormat
	}
	if *flagPrecision >= 0 {
		cfg.Output.Precision = *flagPrecision
	}
}
