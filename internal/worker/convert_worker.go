package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/summarizer/api/internal/service"
	"github.com/summarizer/api/internal/task"
)

// ConvertWorker processes audio-to-VTT conversion tasks
type ConvertWorker struct {
	runner *task.Runner
}

// NewConvertWorker creates a new conversion worker
func NewConvertWorker(runner *task.Runner) *ConvertWorker {
	return &ConvertWorker{
		runner: runner,
	}
}

// ProcessTask handles one conversion. Tool failures are contained by the
// runner (error status, log line, cleanup), so the task itself never
// fails and is never retried.
func (w *ConvertWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload service.ConvertTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal conversion payload: %w", err)
	}

	log.Printf("Starting conversion for %s", payload.Path)
	w.runner.Run(ctx, payload.Path, payload.Audio, payload.User)
	return nil
}
