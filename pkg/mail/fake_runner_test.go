package mail

import (
	"context"
	"sync"
	"time"
)

type runCall struct {
	args    []string
	timeout time.Duration
	ctxErr  error
}

// fakeRunner records invocations and replays a canned result.
type fakeRunner struct {
	mu    sync.Mutex
	calls []runCall
	out   []byte
	err   error
	panic interface{}
}

func (f *fakeRunner) Run(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{args: append([]string(nil), args...), timeout: timeout, ctxErr: ctx.Err()})
	f.mu.Unlock()
	if f.panic != nil {
		panic(f.panic)
	}
	return f.out, f.err
}

func (f *fakeRunner) lastCall() runCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return runCall{}
	}
	return f.calls[len(f.calls)-1]
}
