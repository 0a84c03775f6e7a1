// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/gt-mail-gateway/pkg/config"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name               string
		configContent      string
		expectedListenAddr string
		expectedGTPath     string
		expectedBinary     string
		expectError        bool
	}{
		{
			name: "full config",
			configContent: `
server:
  listenAddress: ":9090"
gastown:
  path: "/srv/town"
  binary: "/usr/local/bin/gt"
  fetchTimeout: "3s"
rateLimit:
  rate: 5
  burst: 10
`,
			expectedListenAddr: ":9090",
			expectedGTPath:     "/srv/town",
			expectedBinary:     "/usr/local/bin/gt",
		},
		{
			name: "minimal config gets defaults",
			configContent: `
server:
  listenAddress: ":3000"
`,
			expectedListenAddr: ":3000",
			expectedGTPath:     config.DefaultGastownPath,
			expectedBinary:     config.DefaultGTBinary,
		},
		{
			name:          "invalid YAML",
			configContent: `invalid: yaml: content [`,
			expectError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.configContent), 0o600))

			cfg, err := config.Load(path)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedListenAddr, cfg.Server.ListenAddress)
			assert.Equal(t, tt.expectedGTPath, cfg.Gastown.Path)
			assert.Equal(t, tt.expectedBinary, cfg.Gastown.Binary)
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultListenAddress, cfg.Server.ListenAddress)
	assert.Equal(t, config.DefaultGastownPath, cfg.Gastown.Path)
	assert.Equal(t, "5s", cfg.Gastown.FetchTimeout)
	assert.Equal(t, "10s", cfg.Gastown.SendTimeout)
	assert.Equal(t, float64(config.DefaultRateLimit), cfg.RateLimit.Rate)
	assert.Equal(t, config.DefaultRateBurst, cfg.RateLimit.Burst)
}

func TestDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := config.Config{
		Gastown:   config.Gastown{Binary: "gt-dev", FetchTimeout: "1s"},
		RateLimit: config.RateLimit{Rate: 1, Burst: 2},
	}
	cfg.Defaults()
	assert.Equal(t, "gt-dev", cfg.Gastown.Binary)
	assert.Equal(t, "1s", cfg.Gastown.FetchTimeout)
	assert.Equal(t, float64(1), cfg.RateLimit.Rate)
	assert.Equal(t, 2, cfg.RateLimit.Burst)
	assert.Equal(t, config.DefaultBinDir, cfg.Gastown.BinDir)
}

func TestExpandHome(t *testing.T) {
	tests := []struct {
		path string
		home string
		want string
	}{
		{"~/gt", "/home/max", "/home/max/gt"},
		{"~", "/home/max", "/home/max"},
		{"~/.local/bin", "/home/max", "/home/max/.local/bin"},
		{"/abs/path", "/home/max", "/abs/path"},
		{"relative/path", "/home/max", "relative/path"},
		{"~other/gt", "/home/max", "~other/gt"},
		{"~/gt", "", "~/gt"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, config.ExpandHome(tt.path, tt.home))
		})
	}
}

func TestGastown_ResolvedPath(t *testing.T) {
	t.Setenv("HOME", "/home/max")

	t.Run("default expands home", func(t *testing.T) {
		t.Setenv(config.GastownPathEnv, "")
		assert.Equal(t, "/home/max/gt", config.Gastown{}.ResolvedPath())
	})

	t.Run("config path", func(t *testing.T) {
		t.Setenv(config.GastownPathEnv, "")
		assert.Equal(t, "/srv/town", config.Gastown{Path: "/srv/town"}.ResolvedPath())
	})

	t.Run("env overrides config", func(t *testing.T) {
		t.Setenv(config.GastownPathEnv, "~/other-town")
		assert.Equal(t, "/home/max/other-town", config.Gastown{Path: "/srv/town"}.ResolvedPath())
	})
}

func TestGastown_ResolvedBinDir(t *testing.T) {
	t.Setenv("HOME", "/home/max")
	assert.Equal(t, "/home/max/.local/bin", config.Gastown{}.ResolvedBinDir())
	assert.Equal(t, "/opt/gt/bin", config.Gastown{BinDir: "/opt/gt/bin"}.ResolvedBinDir())
}

func TestGastown_Timeouts(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		expected    time.Duration
		expectError bool
	}{
		{name: "empty uses default", value: "", expected: config.DefaultFetchTimeout},
		{name: "valid", value: "2500ms", expected: 2500 * time.Millisecond},
		{name: "invalid uses default", value: "soon", expected: config.DefaultFetchTimeout, expectError: true},
		{name: "negative uses default", value: "-1s", expected: config.DefaultFetchTimeout, expectError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := config.Gastown{FetchTimeout: tt.value}.FetchTimeoutDuration()
			assert.Equal(t, tt.expected, d)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	d, err := config.Gastown{}.SendTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSendTimeout, d)
}
