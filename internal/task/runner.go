package task

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/summarizer/api/internal/config"
	"github.com/summarizer/api/internal/model"
)

// Notifier is called exactly once per successful conversion. Its failures
// are the notifier's own problem; the runner fires and forgets.
type Notifier interface {
	VttFinished(user, audio string)
}

// Observer receives every status transition for a job before the registry
// record is removed. Used by the websocket hub and by tests that need to
// observe terminal states the query path can no longer see.
type Observer func(key string, job model.Job)

// Runner executes one audio-to-VTT conversion via the external whisper
// tool and tracks its lifecycle in the registry.
type Runner struct {
	registry *Registry
	cmd      CommandRunner
	notifier Notifier
	cfg      config.WhisperConfig
	observer Observer
}

// NewRunner creates a runner with the production command executor
func NewRunner(registry *Registry, notifier Notifier, cfg config.WhisperConfig) *Runner {
	return &Runner{
		registry: registry,
		cmd:      &ExecRunner{},
		notifier: notifier,
		cfg:      cfg,
	}
}

// SetCommandRunner replaces the command executor (tests)
func (r *Runner) SetCommandRunner(cmd CommandRunner) {
	r.cmd = cmd
}

// SetObserver installs a status transition observer
func (r *Runner) SetObserver(obs Observer) {
	r.observer = obs
}

// Run converts the audio file at path to a VTT subtitle next to it.
// Synchronous; intended to execute on a background worker. The external
// tool's failure is fully contained: it surfaces as an "error" status and a
// log line, never as a returned error. The registry record is removed on
// every exit path so no stale "processing" entry can outlive the task.
func (r *Runner) Run(ctx context.Context, path, audioName, user string) {
	r.setStatus(path, model.JobStatusStarting, "")
	defer r.registry.Remove(path)

	r.setStatus(path, model.JobStatusProcessing, "")

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.Timeout)*time.Second)
		defer cancel()
	}

	result, err := r.cmd.Run(ctx, r.cfg.Bin,
		path,
		"--model", r.cfg.Model,
		"--output_format", "vtt",
		"--output_dir", filepath.Dir(path),
	)
	if err != nil {
		msg := strings.TrimSpace(result.Stderr)
		if msg == "" {
			msg = err.Error()
		}
		r.setStatus(path, model.JobStatusError, msg)
		log.Printf("Conversion failed for %s (exit %d): %s", path, result.ExitCode, msg)
		return
	}

	r.setStatus(path, model.JobStatusDone, "")
	log.Printf("Conversion done for %s", path)

	if r.notifier != nil {
		r.notifier.VttFinished(user, audioName)
	}
}

func (r *Runner) setStatus(key string, status model.JobStatus, message string) {
	r.registry.Set(key, status, message)
	if r.observer != nil {
		r.observer(key, model.Job{Status: status, Message: message})
	}
}
