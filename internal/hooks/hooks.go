// Package hooks runs user shell commands when task mutations settle.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/logger"
	"github.com/mark3labs/taskdeck/internal/mutation"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".taskdeck.hooks.yml"

// LoadConfig loads the hooks configuration from dir.
// Returns nil if the config file doesn't exist (hooks are optional).
func LoadConfig(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No hooks config found at %s", configPath)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	logger.Debug("Loaded hooks config from %s (version: %d)", configPath, cfg.Version)
	return &cfg, nil
}

// Variables describe the mutation a hook runs for. They are available as
// {{placeholders}} in the command (shell-quoted) and as TASKDECK_*
// environment variables.
type Variables struct {
	MutationID string
	Kind       string
	Task       string
	Status     string
	Outcome    string
	Error      string
}

func (v Variables) pairs() [][2]string {
	return [][2]string{
		{"mutation", v.MutationID},
		{"kind", v.Kind},
		{"task", v.Task},
		{"status", v.Status},
		{"outcome", v.Outcome},
		{"error", v.Error},
	}
}

// Execute runs a hook command and returns its output.
// A failing or timed-out command is reported in the output, not as an
// error. Only context cancellation is returned.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	// Expand template variables in the command
	command := expandVariables(hook.Command, vars)
	logger.Debug("Executing hook command: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// Create context with timeout
	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	// Inherit environment and expose each variable
	cmd.Env = os.Environ()
	for _, kv := range vars.pairs() {
		cmd.Env = append(cmd.Env, "TASKDECK_"+strings.ToUpper(kv[0])+"="+kv[1])
	}

	// Capture stdout and stderr separately
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// Parent context cancelled, propagate
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	// Timeout, return partial output
	if execCtx.Err() == context.DeadlineExceeded {
		logger.Warn("Hook command timed out after %ds: %s", timeout, command)
		return fmt.Sprintf("[Hook timed out after %ds]\nPartial output:\n%s", timeout, stdout.String()), nil
	}

	// Non-zero exit, include output so the failure is visible
	if err != nil {
		logger.Warn("Hook command failed: %v", err)
		output := stdout.String()
		if stderr.Len() > 0 {
			output += "\n[stderr]\n" + stderr.String()
		}
		return fmt.Sprintf("[Hook command failed: %v]\n%s", err, output), nil
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		logger.Debug("Hook stderr: %s", stderr.String())
		output += "\n[stderr]\n" + stderr.String()
	}
	logger.Debug("Hook executed successfully, output length: %d bytes", len(output))
	return output, nil
}

// expandVariables replaces {{variable}} placeholders with shell-quoted
// values.
func expandVariables(command string, vars Variables) string {
	result := command
	for _, kv := range vars.pairs() {
		result = strings.ReplaceAll(result, "{{"+kv[0]+"}}", shellQuote(kv[1]))
	}
	return result
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Runner fires hooks for settled mutations. It implements
// mutation.Recorder; hooks run in the background and never delay the
// pipeline.
type Runner struct {
	cfg     *Config
	workDir string

	mu     sync.Mutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a runner for cfg. Commands run in workDir.
func NewRunner(cfg *Config, workDir string) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{cfg: cfg, workDir: workDir, ctx: ctx, cancel: cancel}
}

// Record implements mutation.Recorder.
func (r *Runner) Record(p mutation.Pending) {
	var hook *HookConfig
	switch p.Phase {
	case mutation.PhaseSucceeded:
		hook = r.cfg.Hooks.OnSucceeded
	case mutation.PhaseFailed:
		hook = r.cfg.Hooks.OnFailed
	}
	if hook == nil || hook.Command == "" {
		return
	}

	vars := VariablesFor(p)
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	ctx := r.ctx
	r.wg.Add(1)
	r.mu.Unlock()
	go func() {
		defer r.wg.Done()
		out, err := Execute(ctx, hook, r.workDir, vars)
		if err != nil {
			logger.Debug("Hook for mutation %s cancelled: %v", vars.MutationID, err)
			return
		}
		if out != "" {
			logger.Debug("Hook output for mutation %s: %s", vars.MutationID, strings.TrimSpace(out))
		}
	}()
}

// Wait stops accepting transitions and blocks until running hooks finish
// or timeout passes, then cancels whatever is left.
func (r *Runner) Wait(timeout time.Duration) {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("Hooks still running after %s, cancelling", timeout)
	}
	r.cancel()
}

// VariablesFor describes a pipeline transition.
func VariablesFor(p mutation.Pending) Variables {
	v := Variables{
		MutationID: p.ID,
		Kind:       string(p.Kind),
		Outcome:    string(p.Phase),
	}
	if p.TaskID != 0 {
		v.Task = strconv.FormatInt(p.TaskID, 10)
	}
	switch in := p.Input.(type) {
	case api.TaskPatch:
		if in.Status != nil {
			v.Status = string(*in.Status)
		}
	case api.NewTask:
		v.Status = string(in.Status)
	}
	if p.Err != nil {
		v.Error = p.Err.Error()
	}
	return v
}
