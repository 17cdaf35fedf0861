// Package detect locates Cursor's local session store on the workstation and
// runs the helper commands needed to find it.
package detect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// MaxCommandOutput bounds how much stdout a subprocess may produce before it is killed.
const MaxCommandOutput = 10 << 20

var ErrOutputTooLarge = errors.New("command output exceeds limit")

// CommandRunner runs an external program and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec, capturing at most MaxOutput bytes of stdout.
type ExecRunner struct {
	MaxOutput int
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	limit := r.MaxOutput
	if limit <= 0 {
		limit = MaxCommandOutput
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stdout := &cappedBuffer{limit: limit, onOverflow: cancel}
	stderr := &cappedBuffer{limit: 64 << 10}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if stdout.overflow {
		return nil, fmt.Errorf("%s: %w (%d bytes)", name, ErrOutputTooLarge, limit)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.buf.String())
		if msg != "" {
			return nil, fmt.Errorf("running %s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	return stdout.buf.Bytes(), nil
}

// cappedBuffer stops accepting writes once limit is reached and reports the overflow.
type cappedBuffer struct {
	buf        bytes.Buffer
	limit      int
	overflow   bool
	onOverflow func()
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.overflow {
		return 0, ErrOutputTooLarge
	}
	if b.buf.Len()+len(p) > b.limit {
		b.overflow = true
		if b.onOverflow != nil {
			b.onOverflow()
		}
		return 0, ErrOutputTooLarge
	}
	return b.buf.Write(p)
}
