package task

import (
	"sync"

	"github.com/summarizer/api/internal/model"
)

// Registry tracks in-flight conversion jobs, keyed by the absolute path of
// the source audio file. Records live only for the duration of their owning
// task; absence is the normal state for finished jobs. Writes to the same
// key are last-write-wins.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
}

// NewRegistry creates an empty job registry
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]model.Job),
	}
}

// Set inserts or overwrites the record for key
func (r *Registry) Set(key string, status model.JobStatus, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[key] = model.Job{Status: status, Message: message}
}

// Get returns the current record for key, if present
func (r *Registry) Get(key string) (model.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[key]
	return job, ok
}

// Remove deletes the record for key. Removing an absent key is a no-op.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, key)
}

// Snapshot returns a copy of all current records
func (r *Registry) Snapshot() map[string]model.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]model.Job, len(r.jobs))
	for k, v := range r.jobs {
		out[k] = v
	}
	return out
}

// Len returns the number of in-flight jobs
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
