package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultConfigPath     = "./config.yaml"
	DefaultReloadDebounce = 500 * time.Millisecond
)

type Config struct {
	// Application flags
	Debug bool

	// Configuration flags
	ConfigPath string
	// ListenAddress overrides server.listenAddress from the config file when set.
	ListenAddress string
	// GastownPath overrides gastown.path from the config file when set.
	// The GASTOWN_PATH environment variable still wins over both.
	GastownPath string

	// Config file watching
	WatchConfig    bool
	ReloadDebounce string
}

// Parse parses os.Args into a Config using the global flag set.
func Parse() *Config {
	config, err := ParseArgs(flag.CommandLine, os.Args[1:])
	if err != nil {
		// flag.CommandLine uses ExitOnError, so this is not reached in practice.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return config
}

// ParseArgs defines the gateway flags on fs and parses args.
func ParseArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	config := &Config{}
	// Define command-line flags with environment variable fallbacks.
	// The pattern: fs.XxxVar(&variable, "flag-name", defaultValueOrEnvValue, "help text")
	fs.BoolVar(&config.Debug, "debug", getEnvBool("MAILGATEWAY_DEBUG", false), "Enable debug level logging")

	fs.StringVar(&config.ConfigPath, "config-path", getEnvString("MAILGATEWAY_CONFIG_PATH", DefaultConfigPath),
		"Path to the gateway configuration file. A missing file means built-in defaults")
	fs.StringVar(&config.ListenAddress, "listen-address", getEnvString("MAILGATEWAY_LISTEN_ADDRESS", ""),
		"The address the HTTP server binds to (host:port). Overrides server.listenAddress")
	fs.StringVar(&config.GastownPath, "gastown-path", "",
		"The Gastown town root used as gt working directory. Overrides gastown.path; GASTOWN_PATH takes precedence")

	fs.BoolVar(&config.WatchConfig, "watch-config", getEnvBool("MAILGATEWAY_WATCH_CONFIG", true),
		"Reload gt invocation settings when the configuration file changes")
	fs.StringVar(&config.ReloadDebounce, "reload-debounce", getEnvString("MAILGATEWAY_RELOAD_DEBOUNCE", DefaultReloadDebounce.String()),
		"Quiet period after a config file change before reloading (e.g., '500ms', '2s')")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Print(log *zap.SugaredLogger) {
	log.Infow("CLI Configuration",
		"debug", c.Debug,
		"config_path", c.ConfigPath,
		"listen_address", c.ListenAddress,
		"gastown_path", c.GastownPath,
		"watch_config", c.WatchConfig,
		"reload_debounce", c.ReloadDebounce,
	)
}

func ParseReloadDebounce(value string, log *zap.SugaredLogger) time.Duration {
	debounce, err := parseDuration("reload-debounce", value, DefaultReloadDebounce)
	if err != nil {
		log.Warn(err)
	}
	return debounce
}

func parseDuration(name, value string, def time.Duration) (time.Duration, error) {
	duration := def
	if value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			duration = d
		} else {
			return duration, fmt.Errorf("invalid %s %q; using default %s: %w", name, value, def.String(), err)
		}
	}

	return duration, nil
}

// getEnvString returns the value of an environment variable, or the provided default if not set.
func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of an environment variable as a bool, or the provided default if not set.
// Valid true values are "true", "1", "yes" (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}
