package detect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.out), f.err
}

func testLocator(goos string, env map[string]string, procVersion string) Locator {
	return Locator{
		GOOS:    goos,
		Getenv:  func(k string) string { return env[k] },
		HomeDir: func() (string, error) { return "/home/dev", nil },
		ReadFile: func(p string) ([]byte, error) {
			if p == "/proc/version" && procVersion != "" {
				return []byte(procVersion), nil
			}
			return nil, os.ErrNotExist
		},
	}
}

func TestStateDBPath_Override(t *testing.T) {
	l := testLocator("linux", nil, "")

	got, err := l.StateDBPath(context.Background(), "  /data/state.vscdb ")
	require.NoError(t, err)
	assert.Equal(t, "/data/state.vscdb", got)

	got, err = l.StateDBPath(context.Background(), "~/cursor/state.vscdb")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/dev", "cursor", "state.vscdb"), got)
}

func TestStateDBPath_BlankOverrideUsesDefault(t *testing.T) {
	l := testLocator("linux", nil, "Linux version 6.1.0-generic")

	got, err := l.StateDBPath(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/dev", ".config", "Cursor", "User", "globalStorage", "state.vscdb"), got)
}

func TestStateDBPath_PlatformDefaults(t *testing.T) {
	tests := []struct {
		goos string
		env  map[string]string
		want string
	}{
		{"darwin", nil, filepath.Join("/home/dev", "Library", "Application Support", "Cursor", "User", "globalStorage", "state.vscdb")},
		{"windows", map[string]string{"APPDATA": "/appdata"}, filepath.Join("/appdata", "Cursor", "User", "globalStorage", "state.vscdb")},
		{"windows", nil, filepath.Join("/home/dev", "AppData", "Roaming", "Cursor", "User", "globalStorage", "state.vscdb")},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got, err := testLocator(tt.goos, tt.env, "").StateDBPath(context.Background(), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStateDBPath_UnsupportedPlatform(t *testing.T) {
	_, err := testLocator("plan9", nil, "").StateDBPath(context.Background(), "")
	require.Error(t, err)
}

func TestStateDBPath_WSL(t *testing.T) {
	runner := &fakeRunner{out: "jdoe\r\n"}
	l := testLocator("linux", nil, "Linux version 5.15.90.1-microsoft-standard-WSL2")
	l.Runner = runner

	got, err := l.StateDBPath(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/c/Users/jdoe/AppData/Roaming/Cursor/User/globalStorage/state.vscdb", got)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"cmd.exe", "/c", "echo %USERNAME%"}, runner.calls[0])
}

func TestStateDBPath_WSLFromEnv(t *testing.T) {
	l := testLocator("linux", map[string]string{"WSL_DISTRO_NAME": "Ubuntu"}, "")
	l.Runner = &fakeRunner{out: "alice"}

	got, err := l.StateDBPath(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/c/Users/alice/AppData/Roaming/Cursor/User/globalStorage/state.vscdb", got)
}

func TestStateDBPath_WSLUsernameFailure(t *testing.T) {
	l := testLocator("linux", map[string]string{"WSL_DISTRO_NAME": "Ubuntu"}, "")

	l.Runner = &fakeRunner{err: errors.New("exec: cmd.exe not found")}
	_, err := l.StateDBPath(context.Background(), "")
	require.Error(t, err)

	l.Runner = &fakeRunner{out: "%USERNAME%\r\n"}
	_, err = l.StateDBPath(context.Background(), "")
	require.Error(t, err)
}

func TestExecRunner_CapsOutput(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	r := ExecRunner{MaxOutput: 16}

	out, err := r.Run(context.Background(), "/bin/sh", "-c", "echo hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(out))

	_, err = r.Run(context.Background(), "/bin/sh", "-c", "printf '%064d' 0")
	require.ErrorIs(t, err, ErrOutputTooLarge)
}

func TestExecRunner_ReportsFailure(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	_, err := ExecRunner{}.Run(context.Background(), "/bin/sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
