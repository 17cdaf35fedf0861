// Package appupdate checks GitHub releases for a newer cursorbar build.
package appupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	LatestReleaseURL = "https://api.github.com/repos/janekbaraniewski/cursorbar/releases/latest"
	releasesPage     = "https://github.com/janekbaraniewski/cursorbar/releases/latest"
	defaultTimeout   = 3 * time.Second
	tokenEnv         = "CURSORBAR_GITHUB_TOKEN"
)

type InstallMethod string

const (
	InstallUnknown   InstallMethod = "unknown"
	InstallHomebrew  InstallMethod = "homebrew"
	InstallGoInstall InstallMethod = "go_install"
)

type Options struct {
	CurrentVersion string
	Executable     string // empty means os.Executable
	ReleaseURL     string
	Timeout        time.Duration
	HTTPClient     *http.Client
}

type Result struct {
	Current         string        `json:"current" yaml:"current"`
	Latest          string        `json:"latest,omitempty" yaml:"latest,omitempty"`
	UpdateAvailable bool          `json:"update_available" yaml:"update_available"`
	Method          InstallMethod `json:"install_method" yaml:"install_method"`
	Hint            string        `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Check compares the running version with the latest release. Development
// and pre-release builds are never reported as outdated.
func Check(ctx context.Context, opts Options) (Result, error) {
	method := detectInstallMethod(executablePath(opts.Executable))
	res := Result{
		Current: canonical(opts.CurrentVersion),
		Method:  method,
		Hint:    upgradeHint(method),
	}
	if res.Current == "" {
		return res, nil
	}

	latest, err := latestRelease(ctx, opts)
	if err != nil {
		return res, err
	}
	res.Latest = latest
	res.UpdateAvailable = semver.Compare(latest, res.Current) > 0
	return res, nil
}

func latestRelease(ctx context.Context, opts Options) (string, error) {
	u := strings.TrimSpace(opts.ReleaseURL)
	if u == "" {
		u = LatestReleaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "cursorbar/"+canonical(opts.CurrentVersion))
	if tok := strings.TrimSpace(os.Getenv(tokenEnv)); tok != "" && strings.HasPrefix(u, "https://api.github.com/") {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching latest release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching latest release: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding release: %w", err)
	}
	latest := canonical(payload.TagName)
	if latest == "" {
		return "", fmt.Errorf("latest release tag %q is not a stable version", payload.TagName)
	}
	return latest, nil
}

// canonical returns v as a stable "vX.Y.Z", or "" for dev and pre-release builds.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return ""
	}
	return semver.Canonical(v)
}

func executablePath(explicit string) string {
	p := strings.TrimSpace(explicit)
	if p == "" {
		exe, err := os.Executable()
		if err != nil {
			return ""
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		p = exe
	}
	return strings.ToLower(filepath.ToSlash(filepath.Clean(p)))
}

func detectInstallMethod(p string) InstallMethod {
	switch {
	case p == "" || p == ".":
		return InstallUnknown
	case strings.Contains(p, "/cellar/cursorbar/"):
		return InstallHomebrew
	case strings.HasSuffix(p, "/go/bin/cursorbar"), strings.HasSuffix(p, "/go/bin/cursorbar.exe"):
		return InstallGoInstall
	}
	if gobin := strings.TrimSpace(os.Getenv("GOBIN")); gobin != "" {
		dir := strings.ToLower(filepath.ToSlash(filepath.Clean(gobin)))
		if p == dir+"/cursorbar" || p == dir+"/cursorbar.exe" {
			return InstallGoInstall
		}
	}
	return InstallUnknown
}

func upgradeHint(method InstallMethod) string {
	switch method {
	case InstallHomebrew:
		return "brew upgrade janekbaraniewski/tap/cursorbar"
	case InstallGoInstall:
		return "go install github.com/janekbaraniewski/cursorbar/cmd/cursorbar@latest"
	}
	return "download the latest release from " + releasesPage
}
