// Package config loads the gateway configuration from a YAML file, applies
// defaults and environment overrides (GASTOWN_PATH), and watches the file for
// changes so the gt invocation settings can be swapped without a restart.
package config
