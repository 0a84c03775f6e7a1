package mail

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/telekom/gt-mail-gateway/pkg/gt"
	"github.com/telekom/gt-mail-gateway/pkg/metrics"
	"github.com/telekom/gt-mail-gateway/pkg/system"
)

// InboxFetcher lists the messages of a mailbox.
type InboxFetcher interface {
	// Inbox returns the messages for identity ("" for the default inbox).
	// Failures yield an empty, non-nil slice.
	Inbox(ctx context.Context, identity string) []Mail
}

// Fetcher lists inboxes with "gt mail inbox --json".
type Fetcher struct {
	runner  gt.Runner
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewFetcher creates a Fetcher bounding each gt invocation by timeout.
func NewFetcher(runner gt.Runner, timeout time.Duration, log *zap.SugaredLogger) *Fetcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Fetcher{
		runner:  runner,
		timeout: timeout,
		log:     log.Named("mail-fetcher"),
	}
}

// Inbox implements InboxFetcher. Errors are logged and counted, never returned:
// an unreachable gt and an empty inbox look the same to the caller.
func (f *Fetcher) Inbox(ctx context.Context, identity string) []Mail {
	messages, err := f.Fetch(ctx, identity)
	if err != nil {
		f.log.With(system.IdentityFields(identity)...).Warnw("Failed to fetch inbox; returning no messages", "error", err)
		return []Mail{}
	}
	metrics.MailFetched.Add(float64(len(messages)))
	return messages
}

// Fetch runs gt and parses its output, returning any failure.
func (f *Fetcher) Fetch(ctx context.Context, identity string) ([]Mail, error) {
	args := gt.InboxArgs(identity)
	out, err := runInstrumented(ctx, f.runner, f.timeout, args)
	if err != nil {
		return nil, err
	}

	messages, err := ParseInbox(out)
	if err != nil {
		metrics.GTCommandFailures.WithLabelValues(gt.Subcommand(args), "decode").Inc()
		return nil, err
	}
	f.log.With(system.IdentityFields(identity)...).Debugw("Fetched inbox", "count", len(messages))
	return messages, nil
}

// runInstrumented runs args through runner and records run, duration and failure metrics.
func runInstrumented(ctx context.Context, runner gt.Runner, timeout time.Duration, args []string) ([]byte, error) {
	sub := gt.Subcommand(args)
	start := time.Now()
	metrics.GTCommandRuns.WithLabelValues(sub).Inc()

	out, err := runner.Run(ctx, timeout, args...)

	metrics.GTCommandDuration.WithLabelValues(sub).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GTCommandFailures.WithLabelValues(sub, failureReason(err)).Inc()
	}
	return out, err
}

func failureReason(err error) string {
	var exitErr *gt.ExitError
	switch {
	case errors.Is(err, gt.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &exitErr):
		return "exit"
	default:
		return "spawn"
	}
}
