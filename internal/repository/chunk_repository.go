package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"multimodal-knowledge-assistant/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// Upsert writes one chunk row keyed on (document_id, chunk_index). A retried
// ingestion overwrites the text and embedding of an existing row instead of
// accumulating duplicates.
func (r *ChunkRepository) Upsert(ctx context.Context, chunk *model.Chunk) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}, {Name: "chunk_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"text_chunk", "embedding"}),
	}).Create(chunk).Error
	if err != nil {
		return fmt.Errorf("upsert chunk failed: %w", err)
	}
	return nil
}

// ScanAll returns every stored chunk in insertion order. This is the single
// read path the retriever uses; there is no filtering or pagination.
func (r *ChunkRepository) ScanAll(ctx context.Context) ([]model.Chunk, error) {
	var chunks []model.Chunk
	if err := r.db.WithContext(ctx).Order("id").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("scan chunks failed: %w", err)
	}
	return chunks, nil
}

// CountByDocumentID reports how many chunks a document currently has, so
// callers can verify how much of a best-effort ingestion actually landed.
func (r *ChunkRepository) CountByDocumentID(ctx context.Context, documentID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Chunk{}).Where("document_id = ?", documentID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chunks by document failed: %w", err)
	}
	return n, nil
}

func (r *ChunkRepository) DeleteByDocumentID(ctx context.Context, documentID string) error {
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.Chunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by document failed: %w", err)
	}
	return nil
}
