package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/summarizer/api/internal/config"
	"github.com/summarizer/api/internal/model"
	"github.com/summarizer/api/internal/storage"
	"github.com/summarizer/api/internal/task"
)

func newTestConvertService(t *testing.T) (*ConvertService, *task.Registry, *storage.Store) {
	t.Helper()
	registry := task.NewRegistry()
	store := storage.NewStore(config.StorageConfig{Root: t.TempDir()})
	return NewConvertService(registry, store, nil), registry, store
}

func TestConvertProcessUsesCanonicalKey(t *testing.T) {
	svc, registry, store := newTestConvertService(t)

	registry.Set(store.AudioPath("alice", "lecture.mp3"), model.JobStatusProcessing, "")

	got := svc.ConvertProcess("alice", "lecture.mp3")
	if got.Status != model.JobStatusProcessing {
		t.Errorf("expected processing, got %q", got.Status)
	}

	// Same audio name under another user is a different job
	got = svc.ConvertProcess("bob", "lecture.mp3")
	if got.Status != model.JobStatusNotFound {
		t.Errorf("expected not found for other user, got %q", got.Status)
	}
}

func TestConvertProcessSanitizesQuery(t *testing.T) {
	svc, registry, store := newTestConvertService(t)

	// Submission sanitizes the filename; a query with the raw name must
	// still resolve to the same job.
	registry.Set(store.AudioPath("alice", "my lecture.mp3"), model.JobStatusStarting, "")

	got := svc.ConvertProcess("alice", "my lecture.mp3")
	if got.Status != model.JobStatusStarting {
		t.Errorf("expected starting, got %q", got.Status)
	}
}

func TestTaskStatusSnapshot(t *testing.T) {
	svc, registry, store := newTestConvertService(t)

	registry.Set(store.AudioPath("alice", "a.mp3"), model.JobStatusStarting, "")
	registry.Set(store.AudioPath("bob", "b.mp3"), model.JobStatusError, "model not found")

	resp := svc.TaskStatus()
	if len(resp.ActiveTasks) != 2 {
		t.Fatalf("expected 2 active tasks, got %d", len(resp.ActiveTasks))
	}

	job := resp.ActiveTasks[store.AudioPath("bob", "b.mp3")]
	if job.Status != model.JobStatusError || job.Message != "model not found" {
		t.Errorf("unexpected job state: %+v", job)
	}
}

func TestListVttsStates(t *testing.T) {
	svc, registry, store := newTestConvertService(t)

	mustWrite := func(user, name, content string) {
		t.Helper()
		dir := filepath.Dir(store.AudioPath(user, name))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	mustWrite("alice", "waiting.mp3", "x")
	mustWrite("alice", "running.mp3", "x")
	mustWrite("alice", "finished.mp3", "x")
	mustWrite("alice", "finished.vtt", "WEBVTT\n")

	registry.Set(store.AudioPath("alice", "running.mp3"), model.JobStatusProcessing, "")

	entries, err := svc.ListVtts("alice")
	if err != nil {
		t.Fatalf("ListVtts failed: %v", err)
	}

	byAudio := map[string]model.VttEntry{}
	for _, e := range entries {
		byAudio[e.Audio] = e
	}
	if len(byAudio) != 3 {
		t.Fatalf("expected 3 audio entries, got %d: %v", len(byAudio), entries)
	}

	if got := byAudio["waiting.mp3"].Status; got != "waiting" {
		t.Errorf("waiting.mp3: expected waiting, got %q", got)
	}
	if got := byAudio["running.mp3"].Status; got != "in progress" {
		t.Errorf("running.mp3: expected in progress, got %q", got)
	}

	done := byAudio["finished.mp3"]
	if done.Status != "done" {
		t.Errorf("finished.mp3: expected done, got %q", done.Status)
	}
	if done.Vtt != "finished.vtt" {
		t.Errorf("finished.mp3: expected vtt name, got %q", done.Vtt)
	}
	if done.Time == "" {
		t.Error("finished.mp3: expected modification time")
	}
}

func TestListVttsUnknownUser(t *testing.T) {
	svc, _, _ := newTestConvertService(t)

	entries, err := svc.ListVtts("nobody")
	if err != nil {
		t.Fatalf("ListVtts failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %v", entries)
	}
}
