// Package cmd implements the mailctl command tree.
package cmd
