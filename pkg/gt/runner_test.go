package gt

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/gt-mail-gateway/pkg/config"
)

// writeFakeGT installs an executable shell script named gt in dir.
func writeFakeGT(t *testing.T, dir, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake gt relies on /bin/sh")
	}
	path := filepath.Join(dir, "gt")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func newTestRunner(t *testing.T, script string) (*ExecRunner, Settings) {
	t.Helper()
	binDir := t.TempDir()
	townRoot := t.TempDir()
	writeFakeGT(t, binDir, script)
	s := Settings{Binary: "gt", TownRoot: townRoot, BinDir: binDir}
	r := NewExecRunner(s)
	r.environ = func() []string { return []string{"PATH=/usr/bin:/bin", "LANG=C"} }
	return r, s
}

func TestBuildEnv(t *testing.T) {
	sep := string(os.PathListSeparator)
	env := BuildEnv([]string{"HOME=/home/max", "PATH=/usr/bin", "GASTOWN_PATH=/old", "TERM=xterm"}, "/home/max/.local/bin", "/home/max/gt")

	assert.Equal(t, []string{
		"HOME=/home/max",
		"TERM=xterm",
		"PATH=/home/max/.local/bin" + sep + "/usr/bin",
		"GASTOWN_PATH=/home/max/gt",
	}, env)
}

func TestBuildEnv_NoExistingPath(t *testing.T) {
	env := BuildEnv(nil, "/bin-dir", "/town")
	assert.Equal(t, []string{"PATH=/bin-dir", "GASTOWN_PATH=/town"}, env)
}

func TestBuildEnv_NoBinDir(t *testing.T) {
	env := BuildEnv([]string{"PATH=/usr/bin"}, "", "/town")
	assert.Equal(t, []string{"PATH=/usr/bin", "GASTOWN_PATH=/town"}, env)
}

func TestSettingsFromConfig(t *testing.T) {
	t.Setenv("HOME", "/home/max")
	t.Setenv(config.GastownPathEnv, "")

	s := SettingsFromConfig(config.Gastown{})
	assert.Equal(t, Settings{Binary: "gt", TownRoot: "/home/max/gt", BinDir: "/home/max/.local/bin"}, s)
}

func TestExecRunner_Run_Success(t *testing.T) {
	r, s := newTestRunner(t, `
printf 'args:'
for a in "$@"; do printf '[%s]' "$a"; done
printf '\n'
printf 'pwd:%s\n' "$(pwd -P)"
printf 'gastown:%s\n' "$GASTOWN_PATH"
printf 'path:%s\n' "$PATH"
`)

	out, err := r.Run(context.Background(), 5*time.Second, InboxArgs(`gastown/Toast; echo pwned`)...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "args:[mail][inbox][--identity=gastown/Toast; echo pwned][--json]", lines[0])

	wantDir, err := filepath.EvalSymlinks(s.TownRoot)
	require.NoError(t, err)
	assert.Equal(t, "pwd:"+wantDir, lines[1])
	assert.Equal(t, "gastown:"+s.TownRoot, lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "path:"+s.BinDir+string(os.PathListSeparator)), lines[3])
}

func TestExecRunner_Run_NonZeroExit(t *testing.T) {
	r, _ := newTestRunner(t, `echo "no such mailbox" >&2; exit 3`)

	_, err := r.Run(context.Background(), 5*time.Second, "mail", "inbox", "--json")
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, "no such mailbox", exitErr.Stderr)
	assert.Contains(t, exitErr.Error(), "gt mail inbox --json exited with code 3")
}

func TestExecRunner_Run_Timeout(t *testing.T) {
	r, _ := newTestRunner(t, `exec sleep 5`)

	start := time.Now()
	_, err := r.Run(context.Background(), 100*time.Millisecond, "mail", "inbox")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestExecRunner_Run_MissingBinary(t *testing.T) {
	r := NewExecRunner(Settings{Binary: "gt-does-not-exist", TownRoot: t.TempDir(), BinDir: t.TempDir()})
	r.environ = func() []string { return []string{"PATH=" + t.TempDir()} }

	_, err := r.Run(context.Background(), time.Second, "mail", "inbox")
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound), "got %v", err)
}

func TestExecRunner_Run_MissingTownRoot(t *testing.T) {
	r, s := newTestRunner(t, `exit 0`)
	s.TownRoot = filepath.Join(s.TownRoot, "missing")
	r.Update(s)

	_, err := r.Run(context.Background(), time.Second, "mail", "inbox")
	require.Error(t, err)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "spawn failures are not exit errors")
}

func TestExecRunner_UpdateAndLookPath(t *testing.T) {
	r, s := newTestRunner(t, `exit 0`)

	path, err := r.LookPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.BinDir, "gt"), path)

	s.Binary = "gt-missing"
	r.Update(s)
	assert.Equal(t, "gt-missing", r.Settings().Binary)
	_, err = r.LookPath()
	assert.Error(t, err)
}

func TestExecRunner_AbsoluteBinary(t *testing.T) {
	dir := t.TempDir()
	path := writeFakeGT(t, dir, `echo ok`)
	r := NewExecRunner(Settings{Binary: path, TownRoot: t.TempDir()})

	out, err := r.Run(context.Background(), 5*time.Second, "status")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(out))
}

// flagParsingGT mimics gt's flag handling: flags are honoured until "--",
// --help prints usage and exits 0, anything else is the recipient.
const flagParsingGT = `
shift 2
to=""
subject=""
while [ $# -gt 0 ]; do
	case "$1" in
	--) shift; to="$1"; break ;;
	--help|-h) echo usage; exit 0 ;;
	--subject=*) subject="${1#--subject=}" ;;
	--message=*) ;;
	-*) echo "unknown flag: $1" >&2; exit 2 ;;
	*) to="$1" ;;
	esac
	shift
done
printf 'delivered to=%s subject=%s\n' "$to" "$subject"
`

func TestExecRunner_Run_SendDashLeadingValues(t *testing.T) {
	r, _ := newTestRunner(t, flagParsingGT)

	tests := []struct {
		to, subject string
	}{
		{to: "--help", subject: "Hi"},
		{to: "-x", subject: "Hi"},
		{to: "mayor/", subject: "--help"},
	}
	for _, tt := range tests {
		out, err := r.Run(context.Background(), 5*time.Second, SendArgs(tt.to, tt.subject, "-m body")...)
		require.NoError(t, err, "to=%q subject=%q", tt.to, tt.subject)
		assert.Equal(t, "delivered to="+tt.to+" subject="+tt.subject+"\n", string(out))
	}
}

func TestExecRunner_RelativeBinaryResolvesAgainstWorkingDirectory(t *testing.T) {
	cwd := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(cwd, "bin"), 0o755))
	writeFakeGT(t, filepath.Join(cwd, "bin"), `echo relative-ok`)
	t.Chdir(cwd)

	// The town root has no bin/gt, so running relative to it would fail.
	r := NewExecRunner(Settings{Binary: filepath.Join("bin", "gt"), TownRoot: t.TempDir()})

	path, err := r.LookPath()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path), path)

	out, err := r.Run(context.Background(), 5*time.Second, "status")
	require.NoError(t, err)
	assert.Equal(t, "relative-ok\n", string(out))
}
