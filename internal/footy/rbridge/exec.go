package rbridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// payloadMarker separates anything R prints while loading packages from the
// JSON payload written at the end of every script.
const payloadMarker = "<<<FOOTY-PAYLOAD>>>"

// Executor runs an R script and returns its standard output.
type Executor interface {
	Run(ctx context.Context, script string) ([]byte, error)
}

// Rscript runs scripts with `Rscript --vanilla -e`.
type Rscript struct {
	Path    string
	Timeout time.Duration
}

func (r Rscript) Run(ctx context.Context, script string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	path := r.Path
	if path == "" {
		path = "Rscript"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--vanilla", "-e", script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("rscript: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("rscript exited %d: %s", exitErr.ExitCode(), lastLines(stderr.String(), 5))
		}
		return nil, fmt.Errorf("rscript: %w", err)
	}
	return stdout.Bytes(), nil
}

// run executes script and returns the bytes after the last payload marker.
func run(ctx context.Context, e Executor, script string) ([]byte, error) {
	out, err := e.Run(ctx, script)
	if err != nil {
		return nil, err
	}
	i := bytes.LastIndex(out, []byte(payloadMarker))
	if i < 0 {
		return nil, fmt.Errorf("rscript produced no payload: %s", lastLines(string(out), 3))
	}
	return bytes.TrimSpace(out[i+len(payloadMarker):]), nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// rString quotes s as an R string literal.
func rString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func rBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
