package detect

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// StateDBRelPath is where Cursor keeps state.vscdb below its application-support directory.
var StateDBRelPath = []string{"User", "globalStorage", "state.vscdb"}

// Locator resolves the location of Cursor's state.vscdb.
//
// Cursor stores its session in ItemTable of state.vscdb:
//   - darwin:  ~/Library/Application Support/Cursor/User/globalStorage/state.vscdb
//   - linux:   ~/.config/Cursor/User/globalStorage/state.vscdb
//   - windows: %APPDATA%\Cursor\User\globalStorage\state.vscdb
//
// Under WSL the editor runs on the Windows side, so the path is redirected to the
// Windows profile mounted below /mnt/c.
type Locator struct {
	GOOS     string
	Runner   CommandRunner
	Getenv   func(string) string
	HomeDir  func() (string, error)
	ReadFile func(string) ([]byte, error)
}

func NewLocator(runner CommandRunner) Locator {
	return Locator{
		GOOS:     runtime.GOOS,
		Runner:   runner,
		Getenv:   os.Getenv,
		HomeDir:  os.UserHomeDir,
		ReadFile: os.ReadFile,
	}
}

// StateDBPath returns override when it is non-blank, otherwise the platform default.
func (l Locator) StateDBPath(ctx context.Context, override string) (string, error) {
	if p := strings.TrimSpace(override); p != "" {
		return expandHome(p, l.HomeDir), nil
	}

	if l.GOOS == "linux" && l.IsWSL() {
		return l.wslStateDBPath(ctx)
	}

	dir, err := l.appSupportDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, StateDBRelPath...)...), nil
}

// IsWSL reports whether the process runs inside the Windows Subsystem for Linux.
func (l Locator) IsWSL() bool {
	if l.Getenv != nil && l.Getenv("WSL_DISTRO_NAME") != "" {
		return true
	}
	if l.ReadFile == nil {
		return false
	}
	data, err := l.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}

func (l Locator) appSupportDir() (string, error) {
	home, err := l.home()
	if err != nil {
		return "", err
	}
	switch l.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Cursor"), nil
	case "linux":
		return filepath.Join(home, ".config", "Cursor"), nil
	case "windows":
		if appData := l.getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Cursor"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "Cursor"), nil
	}
	return "", fmt.Errorf("unsupported platform %q", l.GOOS)
}

func (l Locator) wslStateDBPath(ctx context.Context) (string, error) {
	if l.Runner == nil {
		return "", fmt.Errorf("resolving windows user: no command runner")
	}
	out, err := l.Runner.Run(ctx, "cmd.exe", "/c", "echo %USERNAME%")
	if err != nil {
		return "", fmt.Errorf("resolving windows user: %w", err)
	}
	user := strings.TrimSpace(string(out))
	if user == "" || user == "%USERNAME%" {
		return "", fmt.Errorf("resolving windows user: empty username")
	}
	// WSL paths are always slash-separated regardless of the build host.
	parts := append([]string{"/mnt/c/Users", user, "AppData", "Roaming", "Cursor"}, StateDBRelPath...)
	return path.Join(parts...), nil
}

func (l Locator) home() (string, error) {
	if l.HomeDir == nil {
		return os.UserHomeDir()
	}
	h, err := l.HomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return h, nil
}

func (l Locator) getenv(key string) string {
	if l.Getenv == nil {
		return os.Getenv(key)
	}
	return l.Getenv(key)
}

func expandHome(p string, homeDir func() (string, error)) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	if homeDir == nil {
		homeDir = os.UserHomeDir
	}
	home, err := homeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
