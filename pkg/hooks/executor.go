package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/vanderheijden86/toolbar/pkg/debug"
)

// maxSummaryStderr bounds how much stderr a summary line repeats.
const maxSummaryStderr = 200

const waitDelay = 500 * time.Millisecond

// Result is the outcome of one hook run.
type Result struct {
	Hook     Hook
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs the hooks that match a click and keeps their results.
// It is safe for concurrent use.
type Executor struct {
	hooks []Hook

	mu      sync.Mutex
	results []Result
}

// NewExecutor returns an executor for hooks. The hooks are used as given;
// pass them through Normalize first when they come from a file.
func NewExecutor(hooks []Hook) *Executor {
	return &Executor{hooks: hooks}
}

// Len returns the number of configured hooks.
func (e *Executor) Len() int {
	if e == nil {
		return 0
	}
	return len(e.hooks)
}

// Matching returns the hooks that run for a click on id.
func (e *Executor) Matching(id, group string, proxy bool) []Hook {
	if e == nil {
		return nil
	}
	var out []Hook
	for _, h := range e.hooks {
		if h.Matches(id, group, proxy) {
			out = append(out, h)
		}
	}
	return out
}

// Run runs every hook matching the click in configuration order. A failing
// hook with on_error "fail" stops the run and its error is returned;
// other failures are only recorded.
func (e *Executor) Run(ctx context.Context, cc ClickContext, proxy bool) error {
	for _, h := range e.Matching(cc.ItemID, cc.Group, proxy) {
		res := e.runHook(ctx, h, cc)
		e.mu.Lock()
		e.results = append(e.results, res)
		e.mu.Unlock()

		if res.Success {
			continue
		}
		debug.Log("hooks: %s failed: %v", h.Name, res.Error)
		if h.OnError == OnErrorFail {
			return fmt.Errorf("hook %s: %w", h.Name, res.Error)
		}
	}
	return nil
}

func (e *Executor) runHook(ctx context.Context, h Hook, cc ClickContext) Result {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	// Children of sh can hold the output pipes open after a kill.
	cmd.WaitDelay = waitDelay
	env := append(os.Environ(), cc.ToEnv()...)
	for k, v := range h.Env {
		env = append(env, k+"="+os.ExpandEnv(v))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Hook:     h,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Error = fmt.Errorf("timed out after %s", timeout)
	case err != nil:
		res.Error = err
	default:
		res.Success = true
	}
	debug.Log("hooks: ran %s for %s in %s", h.Name, cc.ItemID, res.Duration)
	return res
}

// Results returns a copy of every result recorded so far.
func (e *Executor) Results() []Result {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Result, len(e.results))
	copy(out, e.results)
	return out
}

// Summary describes the recorded results, one line per failure.
func (e *Executor) Summary() string {
	results := e.Results()
	if len(results) == 0 {
		return ""
	}
	var ok, failed int
	var lines []string
	for _, r := range results {
		if r.Success {
			ok++
			continue
		}
		failed++
		line := fmt.Sprintf("  %s: %v", r.Hook.Name, r.Error)
		if r.Stderr != "" {
			line += ": " + truncate(r.Stderr, maxSummaryStderr)
		}
		lines = append(lines, line)
	}
	head := fmt.Sprintf("hooks: %d succeeded, %d failed", ok, failed)
	if len(lines) == 0 {
		return head
	}
	return head + "\n" + strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
