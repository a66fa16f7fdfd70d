package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/summarizer/api/internal/service"
	"github.com/summarizer/api/internal/storage"
	"github.com/summarizer/api/internal/vector"
)

// IndexWorker embeds finished subtitle files into the vector store
type IndexWorker struct {
	indexer *vector.Indexer
	store   *storage.Store
}

// NewIndexWorker creates a new index worker. indexer may be nil when the
// vector store is not configured; tasks are then acknowledged and dropped.
func NewIndexWorker(indexer *vector.Indexer, store *storage.Store) *IndexWorker {
	return &IndexWorker{
		indexer: indexer,
		store:   store,
	}
}

// ProcessTask indexes one subtitle file
func (w *IndexWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload service.IndexTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal index payload: %w", err)
	}

	if w.indexer == nil {
		log.Printf("Vector store not configured, skipping index of %s", payload.Vtt)
		return nil
	}

	doc, content, err := w.resolveVtt(payload.User, payload.Vtt)
	if err != nil {
		return fmt.Errorf("failed to read subtitle file: %w", err)
	}

	if err := w.indexer.IndexVtt(ctx, doc, payload.User, string(content)); err != nil {
		return fmt.Errorf("failed to index %s: %w", doc, err)
	}
	return nil
}

// resolveVtt reads the user's copy of the named subtitle file. The name is
// reduced to a bare sanitized file name first, so a payload can never name
// a file outside the user's storage directory.
func (w *IndexWorker) resolveVtt(user, name string) (string, []byte, error) {
	doc := storage.SecureFilename(name)
	content, err := w.store.ReadFile(user, doc)
	return doc, content, err
}
