package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/summarizer/api/internal/model"
	"github.com/summarizer/api/internal/storage"
	"github.com/summarizer/api/internal/task"
)

const (
	TaskTypeConvert = "convert:vtt"
	TaskTypeIndex   = "index:vtt"
)

// indexDelay gives the filesystem time to finish writing the subtitle
// file before the indexer reads it.
const indexDelay = 30 * time.Second

// ConvertTaskPayload is the queue payload for one conversion
type ConvertTaskPayload struct {
	Path  string `json:"path"`
	Audio string `json:"audio"`
	User  string `json:"user"`
}

// IndexTaskPayload is the queue payload for one subtitle indexing run.
// Vtt is a bare file name; the worker resolves it inside the user's own
// storage directory, so a payload can never name a path outside it.
type IndexTaskPayload struct {
	Vtt  string `json:"vtt"`
	User string `json:"user"`
}

// ConvertService submits audio conversion jobs and answers status queries.
// All job keys are built by storage.Store.AudioPath so the submit path and
// the query paths can never disagree on key format.
type ConvertService struct {
	registry    *task.Registry
	store       *storage.Store
	asynqClient *asynq.Client
}

func NewConvertService(registry *task.Registry, store *storage.Store, asynqClient *asynq.Client) *ConvertService {
	return &ConvertService{
		registry:    registry,
		store:       store,
		asynqClient: asynqClient,
	}
}

// SubmitConversion queues an audio file for conversion. The job is
// registered as "starting" before the enqueue so a status query issued
// right after submission already sees it.
func (s *ConvertService) SubmitConversion(ctx context.Context, user, audio string) (string, error) {
	path := s.store.AudioPath(user, audio)

	payload, err := json.Marshal(ConvertTaskPayload{
		Path:  path,
		Audio: storage.SecureFilename(audio),
		User:  user,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	s.registry.Set(path, model.JobStatusStarting, "")

	t := asynq.NewTask(TaskTypeConvert, payload)
	if _, err := s.asynqClient.EnqueueContext(ctx, t,
		asynq.Queue("convert"),
		asynq.MaxRetry(0),
	); err != nil {
		s.registry.Remove(path)
		return "", fmt.Errorf("failed to enqueue conversion: %w", err)
	}

	return path, nil
}

// SubmitIndex queues vector indexing of a finished subtitle file, delayed
// so the transcription tool has flushed its output.
func (s *ConvertService) SubmitIndex(ctx context.Context, user, vttPath string) error {
	payload, err := json.Marshal(IndexTaskPayload{
		Vtt:  filepath.Base(vttPath),
		User: user,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	t := asynq.NewTask(TaskTypeIndex, payload)
	if _, err := s.asynqClient.EnqueueContext(ctx, t,
		asynq.Queue("index"),
		asynq.MaxRetry(2),
		asynq.ProcessIn(indexDelay),
	); err != nil {
		return fmt.Errorf("failed to enqueue indexing: %w", err)
	}
	return nil
}

// TaskStatus returns a snapshot of all in-flight conversion jobs
func (s *ConvertService) TaskStatus() *model.TaskStatusResponse {
	return &model.TaskStatusResponse{
		ActiveTasks: s.registry.Snapshot(),
	}
}

// ConvertProcess returns the status of one conversion job. Jobs that were
// never submitted or have already finished report "not found".
func (s *ConvertService) ConvertProcess(user, audio string) *model.ConvertProcessResponse {
	key := s.store.AudioPath(user, audio)

	job, ok := s.registry.Get(key)
	if !ok {
		return &model.ConvertProcessResponse{Status: model.JobStatusNotFound}
	}
	return &model.ConvertProcessResponse{Status: job.Status}
}

// ListVtts lists the user's audio files with their subtitle state
func (s *ConvertService) ListVtts(user string) ([]model.VttEntry, error) {
	audios, err := s.store.ListAudios(user)
	if err != nil {
		return nil, fmt.Errorf("failed to list audio files: %w", err)
	}

	entries := make([]model.VttEntry, 0, len(audios))
	for _, audio := range audios {
		entry := model.VttEntry{
			Audio:  audio,
			Status: "waiting",
		}

		vttPath := s.store.VttPath(user, audio)
		if info, err := os.Stat(vttPath); err == nil {
			entry.Vtt = info.Name()
			entry.Status = "done"
			entry.Time = info.ModTime().Format("2006-01-02 15:04:05")
		} else if _, ok := s.registry.Get(s.store.AudioPath(user, audio)); ok {
			entry.Status = "in progress"
		}

		entries = append(entries, entry)
	}
	return entries, nil
}
