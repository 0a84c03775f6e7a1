// Package cli defines the mailgateway server flags and their environment
// variable fallbacks.
package cli
