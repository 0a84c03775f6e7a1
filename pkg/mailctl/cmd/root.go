package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/telekom/gt-mail-gateway/pkg/mailctl/client"
)

const (
	DefaultServer = "http://localhost:8080"

	serverEnv = "MAILCTL_SERVER"
	outputEnv = "MAILCTL_OUTPUT"
)

type Config struct {
	OutputWriter io.Writer
	ErrorWriter  io.Writer
}

type runtimeState struct {
	server       string
	outputFormat string
	timeout      time.Duration
	writer       io.Writer
	errWriter    io.Writer
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		OutputWriter: os.Stdout,
		ErrorWriter:  os.Stderr,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{writer: cfg.OutputWriter, errWriter: cfg.ErrorWriter}

	root := &cobra.Command{
		Use:           "mailctl",
		Short:         "Read and send Gastown mail through the mail gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.server == "" {
				rt.server = os.Getenv(serverEnv)
			}
			if rt.outputFormat == "" {
				rt.outputFormat = os.Getenv(outputEnv)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.server, "server", "", "Gateway base URL (env "+serverEnv+", default "+DefaultServer+")")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, json, yaml (env "+outputEnv+")")
	root.PersistentFlags().DurationVar(&rt.timeout, "timeout", client.DefaultTimeout, "Request timeout")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewInboxCommand(),
		NewSendCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) Server() string {
	if rt.server != "" {
		return rt.server
	}
	return DefaultServer
}

func (rt *runtimeState) OutputFormat() string {
	if rt.outputFormat != "" {
		return rt.outputFormat
	}
	return "table"
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) ErrWriter() io.Writer {
	if rt.errWriter != nil {
		return rt.errWriter
	}
	return os.Stderr
}

func buildClient(rt *runtimeState) (*client.Client, error) {
	return client.New(
		client.WithServer(rt.Server()),
		client.WithTimeout(rt.timeout),
		client.WithUserAgent("mailctl"),
	)
}
