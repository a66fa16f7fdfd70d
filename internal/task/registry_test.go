package task

import (
	"fmt"
	"sync"
	"testing"

	"github.com/summarizer/api/internal/model"
)

func TestRegistrySetGetRemove(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Get("/data/alice/lecture.mp3"); ok {
		t.Fatal("expected empty registry")
	}

	r.Set("/data/alice/lecture.mp3", model.JobStatusStarting, "")
	job, ok := r.Get("/data/alice/lecture.mp3")
	if !ok {
		t.Fatal("expected record after Set")
	}
	if job.Status != model.JobStatusStarting {
		t.Errorf("status = %q, want %q", job.Status, model.JobStatusStarting)
	}

	// Overwrite is last-write-wins
	r.Set("/data/alice/lecture.mp3", model.JobStatusError, "model not found")
	job, _ = r.Get("/data/alice/lecture.mp3")
	if job.Status != model.JobStatusError || job.Message != "model not found" {
		t.Errorf("got %+v, want error/model not found", job)
	}

	r.Remove("/data/alice/lecture.mp3")
	if _, ok := r.Get("/data/alice/lecture.mp3"); ok {
		t.Fatal("expected record removed")
	}

	// Removing an absent key must not panic or error
	r.Remove("/data/alice/lecture.mp3")
}

func TestRegistrySnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Set("/data/bob/talk.mp3", model.JobStatusProcessing, "")

	snap := r.Snapshot()
	snap["/data/bob/talk.mp3"] = model.Job{Status: model.JobStatusDone}
	snap["/data/eve/extra.mp3"] = model.Job{Status: model.JobStatusStarting}

	job, ok := r.Get("/data/bob/talk.mp3")
	if !ok || job.Status != model.JobStatusProcessing {
		t.Errorf("mutating snapshot leaked into registry: %+v", job)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestRegistryConcurrentWriters(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("/data/user%d/audio.mp3", i)
			r.Set(key, model.JobStatusStarting, "")
			r.Set(key, model.JobStatusProcessing, "")
			if _, ok := r.Get(key); !ok {
				t.Errorf("missing record for %s", key)
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Fatalf("Len = %d, want 50", r.Len())
	}
	for key, job := range r.Snapshot() {
		if job.Status != model.JobStatusProcessing {
			t.Errorf("%s: status = %q, want processing", key, job.Status)
		}
	}
}
