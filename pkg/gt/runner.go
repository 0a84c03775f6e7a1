package gt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/telekom/gt-mail-gateway/pkg/config"
)

// ErrTimeout is returned (wrapped) when a command exceeds its deadline.
var ErrTimeout = errors.New("gt command timed out")

// ExitError reports a gt command that ran but exited non-zero.
type ExitError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("gt %s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Runner executes gt subcommands and returns their standard output.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error)
}

// Settings is one consistent snapshot of how gt is invoked.
type Settings struct {
	// Binary is the executable name (resolved on the augmented PATH) or an absolute path.
	Binary string
	// TownRoot is the working directory and the exported GASTOWN_PATH.
	TownRoot string
	// BinDir is prepended to PATH.
	BinDir string
}

// SettingsFromConfig resolves the gastown config section into invocation settings.
func SettingsFromConfig(g config.Gastown) Settings {
	binary := g.Binary
	if binary == "" {
		binary = config.DefaultGTBinary
	}
	return Settings{
		Binary:   binary,
		TownRoot: g.ResolvedPath(),
		BinDir:   g.ResolvedBinDir(),
	}
}

// ExecRunner runs gt through os/exec. Settings can be swapped at runtime; every
// Run uses a single snapshot.
type ExecRunner struct {
	settings atomic.Pointer[Settings]
	environ  func() []string
}

// NewExecRunner creates a runner using the given settings and the process environment.
func NewExecRunner(s Settings) *ExecRunner {
	r := &ExecRunner{environ: os.Environ}
	r.settings.Store(&s)
	return r
}

// Update replaces the invocation settings for subsequent runs.
func (r *ExecRunner) Update(s Settings) {
	r.settings.Store(&s)
}

// Settings returns the current settings snapshot.
func (r *ExecRunner) Settings() Settings {
	return *r.settings.Load()
}

// Run executes gt with args. A zero timeout means no deadline beyond ctx.
func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	s := r.Settings()
	env := BuildEnv(r.environ(), s.BinDir, s.TownRoot)

	binary, err := lookPath(s.Binary, env)
	if err != nil {
		return nil, fmt.Errorf("resolving gt binary %q: %w", s.Binary, err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = s.TownRoot
	cmd.Env = env
	cmd.Stdin = nil
	// Killed children may leave grandchildren holding the pipes open.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return stdout.Bytes(), fmt.Errorf("gt %s after %v: %w", strings.Join(args, " "), timeout, ErrTimeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), &ExitError{
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		return stdout.Bytes(), fmt.Errorf("running gt %s: %w", strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}

// LookPath resolves the configured binary on the augmented PATH.
func (r *ExecRunner) LookPath() (string, error) {
	s := r.Settings()
	return lookPath(s.Binary, BuildEnv(r.environ(), s.BinDir, s.TownRoot))
}

// BuildEnv returns base with PATH prefixed by binDir and GASTOWN_PATH set to townRoot.
// Existing PATH and GASTOWN_PATH entries are replaced, other entries are kept in order.
func BuildEnv(base []string, binDir, townRoot string) []string {
	env := make([]string, 0, len(base)+2)
	path := ""
	for _, kv := range base {
		switch {
		case strings.HasPrefix(kv, "PATH="):
			path = strings.TrimPrefix(kv, "PATH=")
		case strings.HasPrefix(kv, config.GastownPathEnv+"="):
		default:
			env = append(env, kv)
		}
	}
	if binDir != "" {
		if path == "" {
			path = binDir
		} else {
			path = binDir + string(os.PathListSeparator) + path
		}
	}
	env = append(env, "PATH="+path, config.GastownPathEnv+"="+townRoot)
	return env
}

// lookPath resolves binary against the PATH found in env rather than the
// gateway's own PATH, so the prepended bin directory is honoured.
func lookPath(binary string, env []string) (string, error) {
	if binary == "" {
		return "", errors.New("empty binary name")
	}
	if strings.ContainsRune(binary, filepath.Separator) {
		// Commands run with Dir set to the town root, so a relative path must be
		// pinned to the gateway's working directory before it is executed.
		abs, err := filepath.Abs(binary)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", binary, err)
		}
		return exec.LookPath(abs)
	}
	path := ""
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			path = strings.TrimPrefix(kv, "PATH=")
		}
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, binary)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w", binary, exec.ErrNotFound)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
