// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/gt-mail-gateway/pkg/gt"
	"github.com/telekom/gt-mail-gateway/pkg/metrics"
	"github.com/telekom/gt-mail-gateway/pkg/system"
)

func TestCommandSenderArgs(t *testing.T) {
	runner := &fakeRunner{}
	s := NewCommandSender(runner, 10*time.Second, system.NewTestLogger())

	ok := s.Send(context.Background(), "gastown/witness", "Status; rm -rf /", "line one\nline 'two'")

	assert.True(t, ok)
	call := runner.lastCall()
	assert.Equal(t, []string{"mail", "send", "--subject=Status; rm -rf /", "--message=line one\nline 'two'", "--", "gastown/witness"}, call.args)
	assert.Equal(t, 10*time.Second, call.timeout)
}

func TestCommandSenderDashLeadingRecipient(t *testing.T) {
	for _, to := range []string{"--help", "-x"} {
		runner := &fakeRunner{}
		s := NewCommandSender(runner, time.Second, system.NewTestLogger())

		require.True(t, s.Send(context.Background(), to, "--subject", "-m"))

		args := runner.lastCall().args
		require.Len(t, args, 6)
		assert.Equal(t, []string{"--", to}, args[4:], "recipient %q must follow the separator", to)
		assert.Equal(t, "--subject=--subject", args[2])
		assert.Equal(t, "--message=-m", args[3])
	}
}

func TestCommandSenderFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "non-zero exit", err: &gt.ExitError{Args: []string{"mail", "send"}, ExitCode: 1, Stderr: "unknown recipient"}},
		{name: "timeout", err: gt.ErrTimeout},
		{name: "spawn failure", err: errors.New("fork/exec gt: no such file or directory")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCommandSender(&fakeRunner{err: tt.err}, time.Second, system.NewTestLogger())
			assert.False(t, s.Send(context.Background(), "mayor", "s", "b"))
		})
	}
}

func TestCommandSenderMetrics(t *testing.T) {
	successBefore := testutil.ToFloat64(metrics.MailSendSuccess)
	failureBefore := testutil.ToFloat64(metrics.MailSendFailure)

	NewCommandSender(&fakeRunner{}, time.Second, nil).Send(context.Background(), "a", "s", "b")
	NewCommandSender(&fakeRunner{err: gt.ErrTimeout}, time.Second, nil).Send(context.Background(), "a", "s", "b")

	assert.Equal(t, successBefore+1, testutil.ToFloat64(metrics.MailSendSuccess))
	assert.Equal(t, failureBefore+1, testutil.ToFloat64(metrics.MailSendFailure))
}
