package retrieval

import (
	"context"
	"sync"

	"multimodal-knowledge-assistant/internal/model"
)

// MemoryStore is an in-memory ChunkSource with the same upsert semantics as
// the MySQL-backed repository. It backs tests and DB-less runs.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks []model.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Upsert replaces the row with the same (document_id, chunk_index) or
// appends a new one.
func (s *MemoryStore) Upsert(ctx context.Context, chunk *model.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chunks {
		if s.chunks[i].DocumentID == chunk.DocumentID && s.chunks[i].ChunkIndex == chunk.ChunkIndex {
			s.chunks[i].TextChunk = chunk.TextChunk
			s.chunks[i].Embedding = chunk.Embedding
			return nil
		}
	}
	s.chunks = append(s.chunks, *chunk)
	return nil
}

// ScanAll returns a copy of every stored chunk in insertion order.
func (s *MemoryStore) ScanAll(ctx context.Context) ([]model.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

func (s *MemoryStore) DeleteByDocumentID(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	s.chunks = kept
	return nil
}
