package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagStore   = flag.String("store", "", "Item store root directory")
	flagOutput  = flag.String("out", "", "Scene manifest output path")
	flagTimeout = flag.Duration("timeout", 0, "Per-fetch timeout")
	flagWorkers = flag.Int("workers", 0, "Parallel item builds")
	flagShader  = flag.String("shader", "", "Default shader name")
	flagLogFile = flag.String("log", "", "Log file path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// explicit reports whether the named flag was given on the command line.
var explicit = func(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagStore != "" {
		cfg.Store.Root = *flagStore
	}
	if *flagOutput != "" {
		cfg.Scene.Output = *flagOutput
	}
	// An explicit -timeout 0 disables the timeout.
	if *flagTimeout > 0 || explicit("timeout") {
		cfg.Fetch.Timeout = Duration(*flagTimeout)
	}
	if *flagWorkers > 0 {
		cfg.Build.Workers = *flagWorkers
	}
	if *flagShader != "" {
		cfg.Build.DefaultShader = *flagShader
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
