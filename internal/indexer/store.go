package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apsscout/pagetree/internal/persistence"
	"github.com/apsscout/pagetree/internal/tree"
)

// Store persists document indexes, pipeline checkpoints, and dead letters
// through a persistence backend.
type Store struct {
	backend persistence.Backend
}

func NewStore(backend persistence.Backend) *Store {
	return &Store{backend: backend}
}

func indexKey(docID string) string { return "index_" + docID }

// SaveIndex writes the index as one JSON blob keyed by doc id.
func (s *Store) SaveIndex(ctx context.Context, index *tree.DocumentIndex) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encoding index %s: %w", index.DocID, err)
	}
	return s.backend.Save(ctx, indexKey(index.DocID), data)
}

// LoadIndex returns persistence.ErrNotFound when the document has no index.
func (s *Store) LoadIndex(ctx context.Context, docID string) (*tree.DocumentIndex, error) {
	data, err := s.backend.Load(ctx, indexKey(docID))
	if err != nil {
		return nil, err
	}
	var index tree.DocumentIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decoding index %s: %w", docID, err)
	}
	return &index, nil
}

func (s *Store) Exists(ctx context.Context, docID string) (bool, error) {
	return s.backend.Exists(ctx, indexKey(docID))
}

func (s *Store) Delete(ctx context.Context, docID string) error {
	return s.backend.Delete(ctx, indexKey(docID))
}

// ListDocIDs returns the ids of all persisted indexes.
func (s *Store) ListDocIDs(ctx context.Context) ([]string, error) {
	keys, err := s.backend.ListKeys(ctx, "index_")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k[len("index_"):])
	}
	return ids, nil
}

// Checkpoint records intermediate pipeline state so a failed ingestion can
// be inspected or resumed.
func (s *Store) Checkpoint(ctx context.Context, docID, stage string, payload any) error {
	data, err := json.Marshal(map[string]any{
		"doc_id":     docID,
		"stage":      stage,
		"payload":    payload,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}
	return s.backend.Save(ctx, fmt.Sprintf("checkpoint_%s_%s", docID, stage), data)
}

// DeadLetter captures a failed stage with its error for later review.
func (s *Store) DeadLetter(ctx context.Context, docID, stage string, cause error) error {
	data, err := json.Marshal(map[string]any{
		"doc_id":     docID,
		"stage":      stage,
		"error":      cause.Error(),
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding dead letter: %w", err)
	}
	return s.backend.Save(ctx, fmt.Sprintf("deadletter_%s_%s", docID, stage), data)
}
