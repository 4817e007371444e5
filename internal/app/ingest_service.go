package app

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"multimodal-knowledge-assistant/internal/chunker"
	"multimodal-knowledge-assistant/internal/model"
)

// DocumentStore persists document records.
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByDocID(ctx context.Context, docID string) (*model.Document, error)
	List(ctx context.Context) ([]model.Document, error)
	DeleteByDocID(ctx context.Context, docID string) error
}

// ChunkStore persists chunk rows. Each row is independent; there is no
// transactional batching across the chunks of one document.
type ChunkStore interface {
	Upsert(ctx context.Context, chunk *model.Chunk) error
	DeleteByDocumentID(ctx context.Context, documentID string) error
}

// Embedder maps a text segment to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Extractor converts raw file bytes into plain text.
type Extractor interface {
	Text(ctx context.Context, filename string, data []byte) (string, error)
}

// EmbedJobPublisher hands a stored document off for asynchronous chunk
// embedding.
type EmbedJobPublisher interface {
	PublishEmbedJob(ctx context.Context, docID, content string) error
}

// CorpusVersioner is notified after every corpus change so cached answers
// built on the previous corpus are never served again.
type CorpusVersioner interface {
	BumpVersion(ctx context.Context) error
}

// IngestService turns extracted text into stored documents and embedded
// chunks. Embedding is best-effort enrichment: the operation succeeds once
// the document record is stored, however many chunk embeddings land.
type IngestService struct {
	docs      DocumentStore
	chunks    ChunkStore
	embedder  Embedder
	extractor Extractor
	publisher EmbedJobPublisher // nil = embed inline
	versions  CorpusVersioner   // nil = no cache to invalidate
	chunkSize int
	logger    *zap.Logger
}

type IngestServiceOptions struct {
	Publisher EmbedJobPublisher
	Versions  CorpusVersioner
	ChunkSize int
}

func NewIngestService(
	docs DocumentStore,
	chunks ChunkStore,
	embedder Embedder,
	extractor Extractor,
	logger *zap.Logger,
	opts IngestServiceOptions,
) *IngestService {
	size := opts.ChunkSize
	if size <= 0 {
		size = chunker.DefaultSize
	}
	return &IngestService{
		docs:      docs,
		chunks:    chunks,
		embedder:  embedder,
		extractor: extractor,
		publisher: opts.Publisher,
		versions:  opts.Versions,
		chunkSize: size,
		logger:    logger,
	}
}

// IngestResult reports what one ingestion stored.
type IngestResult struct {
	DocID      string `json:"doc_id"`
	Name       string `json:"name"`
	ChunkCount int    `json:"chunk_count"`
	Queued     bool   `json:"queued"`
}

// IngestFile extracts text from the uploaded file and ingests it. Extraction
// yielding no text is a distinct, user-visible condition, not a generic
// failure.
func (s *IngestService) IngestFile(ctx context.Context, filename string, data []byte) (*IngestResult, error) {
	text, err := s.extractor.Text(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	return s.IngestText(ctx, filename, text)
}

// IngestText stores the document record and then embeds its chunks, either
// inline or through the embed-job queue when a publisher is configured.
func (s *IngestService) IngestText(ctx context.Context, name, content string) (*IngestResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrInvalidInput
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}

	doc := &model.Document{
		DocID:   uuid.NewString(),
		Name:    name,
		Content: content,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishEmbedJob(ctx, doc.DocID, content); err != nil {
			// Fall back to inline embedding; the document is already stored
			// and must not be lost to a broker outage.
			s.logger.Warn("publish embed job failed, embedding inline",
				zap.String("doc_id", doc.DocID), zap.Error(err))
		} else {
			return &IngestResult{DocID: doc.DocID, Name: name, Queued: true}, nil
		}
	}

	stored := s.EmbedChunks(ctx, doc.DocID, content)
	return &IngestResult{DocID: doc.DocID, Name: name, ChunkCount: stored}, nil
}

// EmbedChunks chunks content, embeds each chunk, and upserts the rows.
// Chunk indexes are assigned in chunker output order before any provider
// call. Per-chunk embedding or store failures are logged and skipped; the
// number of stored chunks is returned.
func (s *IngestService) EmbedChunks(ctx context.Context, docID, content string) int {
	stored := 0
	index := 0
	for segment := range chunker.Split(content, s.chunkSize) {
		chunkIndex := index
		index++

		vec, err := s.embedder.Embed(ctx, segment)
		if err != nil {
			s.logger.Warn("embed chunk failed, skipping",
				zap.String("doc_id", docID), zap.Int("chunk_index", chunkIndex), zap.Error(err))
			continue
		}

		chunk := &model.Chunk{
			DocumentID: docID,
			ChunkIndex: chunkIndex,
			TextChunk:  segment,
		}
		chunk.SetEmbedding(vec)
		if err := s.chunks.Upsert(ctx, chunk); err != nil {
			s.logger.Warn("store chunk failed, skipping",
				zap.String("doc_id", docID), zap.Int("chunk_index", chunkIndex), zap.Error(err))
			continue
		}
		stored++
	}

	if stored > 0 {
		s.bumpVersion(ctx)
	}
	return stored
}

// ListDocuments returns all ingested documents.
func (s *IngestService) ListDocuments(ctx context.Context) ([]model.Document, error) {
	return s.docs.List(ctx)
}

// DeleteDocument removes a document and all its chunks.
func (s *IngestService) DeleteDocument(ctx context.Context, docID string) error {
	if strings.TrimSpace(docID) == "" {
		return ErrInvalidInput
	}
	doc, err := s.docs.GetByDocID(ctx, docID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := s.chunks.DeleteByDocumentID(ctx, docID); err != nil {
		return err
	}
	if err := s.docs.DeleteByDocID(ctx, docID); err != nil {
		return err
	}
	s.bumpVersion(ctx)
	return nil
}

func (s *IngestService) bumpVersion(ctx context.Context) {
	if s.versions == nil {
		return
	}
	if err := s.versions.BumpVersion(ctx); err != nil {
		s.logger.Warn("bump corpus version failed", zap.Error(err))
	}
}
