// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/telekom/gt-mail-gateway/pkg/gt"
	"github.com/telekom/gt-mail-gateway/pkg/metrics"
)

// Sender delivers a message. It reports success only; there is no retry and no
// partial success.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) bool
}

// CommandSender sends mail with "gt mail send".
type CommandSender struct {
	runner  gt.Runner
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewCommandSender creates a sender bounding each gt invocation by timeout.
func NewCommandSender(runner gt.Runner, timeout time.Duration, log *zap.SugaredLogger) *CommandSender {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CommandSender{
		runner:  runner,
		timeout: timeout,
		log:     log.Named("mail-sender"),
	}
}

// Send implements Sender.
func (s *CommandSender) Send(ctx context.Context, to, subject, body string) bool {
	log := s.log.With("to", to, "subject", subject)
	log.Debugw("Sending mail via gt", "bodyLength", len(body))

	_, err := runInstrumented(ctx, s.runner, s.timeout, gt.SendArgs(to, subject, body))
	if err != nil {
		var exitErr *gt.ExitError
		if errors.As(err, &exitErr) {
			log.Warnw("gt mail send failed", "exitCode", exitErr.ExitCode, "stderr", exitErr.Stderr)
		} else {
			log.Warnw("gt mail send failed", "error", err)
		}
		metrics.MailSendFailure.Inc()
		return false
	}

	log.Infow("Mail sent")
	metrics.MailSendSuccess.Inc()
	return true
}
