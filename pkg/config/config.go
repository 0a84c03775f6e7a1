package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	// GastownPathEnv overrides gastown.path and is exported to every gt invocation.
	GastownPathEnv = "GASTOWN_PATH"

	DefaultListenAddress = ":8080"
	DefaultGastownPath   = "~/gt"
	DefaultGTBinary      = "gt"
	DefaultBinDir        = "~/.local/bin"
	DefaultFetchTimeout  = 5 * time.Second
	DefaultSendTimeout   = 10 * time.Second
	DefaultRateLimit     = 20
	DefaultRateBurst     = 50
)

type Server struct {
	ListenAddress  string   `yaml:"listenAddress"`
	TLSCertFile    string   `yaml:"tlsCertFile"`
	TLSKeyFile     string   `yaml:"tlsKeyFile"`
	TrustedProxies []string `yaml:"trustedProxies"` // IPs/CIDRS to trust for X-Forwarded-For headers
}

// Gastown describes how the external gt tool is invoked.
type Gastown struct {
	// Path is the town root used as working directory for gt. "~" is expanded.
	// GASTOWN_PATH takes precedence when set.
	Path string `yaml:"path"`
	// Binary is the gt executable name or absolute path.
	Binary string `yaml:"binary"`
	// BinDir is prepended to PATH for every gt invocation.
	BinDir string `yaml:"binDir"`
	// FetchTimeout bounds "gt mail inbox" (e.g. "5s").
	FetchTimeout string `yaml:"fetchTimeout"`
	// SendTimeout bounds "gt mail send" (e.g. "10s").
	SendTimeout string `yaml:"sendTimeout"`
}

type RateLimit struct {
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

type Config struct {
	Server    Server    `yaml:"server"`
	Gastown   Gastown   `yaml:"gastown"`
	RateLimit RateLimit `yaml:"rateLimit"`
}

// Load loads the gateway configuration from a file path.
// If configPath is empty, defaults to "./config.yaml". A missing file is not an
// error: the gateway runs on defaults and environment overrides alone.
func Load(configPath ...string) (Config, error) {
	path := "./config.yaml"
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	var config Config

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config.Defaults()
			return config, nil
		}
		return config, fmt.Errorf("trying to open gateway config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		return config, fmt.Errorf("error unmarshaling YAML %s: %w", path, err)
	}
	config.Defaults()
	return config, nil
}

// Defaults fills every unset field with its default value.
func (c *Config) Defaults() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = DefaultListenAddress
	}
	if c.Gastown.Path == "" {
		c.Gastown.Path = DefaultGastownPath
	}
	if c.Gastown.Binary == "" {
		c.Gastown.Binary = DefaultGTBinary
	}
	if c.Gastown.BinDir == "" {
		c.Gastown.BinDir = DefaultBinDir
	}
	if c.Gastown.FetchTimeout == "" {
		c.Gastown.FetchTimeout = DefaultFetchTimeout.String()
	}
	if c.Gastown.SendTimeout == "" {
		c.Gastown.SendTimeout = DefaultSendTimeout.String()
	}
	if c.RateLimit.Rate <= 0 {
		c.RateLimit.Rate = DefaultRateLimit
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = DefaultRateBurst
	}
}

// ResolvedPath returns the town root: GASTOWN_PATH if set, else Path, with "~" expanded.
func (g Gastown) ResolvedPath() string {
	path := g.Path
	if env, ok := os.LookupEnv(GastownPathEnv); ok && env != "" {
		path = env
	}
	if path == "" {
		path = DefaultGastownPath
	}
	return ExpandHome(path, HomeDir())
}

// ResolvedBinDir returns BinDir with "~" expanded.
func (g Gastown) ResolvedBinDir() string {
	dir := g.BinDir
	if dir == "" {
		dir = DefaultBinDir
	}
	return ExpandHome(dir, HomeDir())
}

// FetchTimeoutDuration parses FetchTimeout, falling back to DefaultFetchTimeout.
func (g Gastown) FetchTimeoutDuration() (time.Duration, error) {
	return parseDuration("gastown.fetchTimeout", g.FetchTimeout, DefaultFetchTimeout)
}

// SendTimeoutDuration parses SendTimeout, falling back to DefaultSendTimeout.
func (g Gastown) SendTimeoutDuration() (time.Duration, error) {
	return parseDuration("gastown.sendTimeout", g.SendTimeout, DefaultSendTimeout)
}

// HomeDir returns $HOME, falling back to the OS lookup.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, _ := os.UserHomeDir()
	return home
}

// ExpandHome replaces a leading "~" with home. "~user" forms are left untouched.
func ExpandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

func parseDuration(name, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q; using default %s: %w", name, value, def, err)
	}
	if d <= 0 {
		return def, fmt.Errorf("invalid %s %q; must be positive, using default %s", name, value, def)
	}
	return d, nil
}
