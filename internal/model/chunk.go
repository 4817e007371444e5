package model

import (
	"encoding/json"
	"time"
)

// Chunk stores one text segment of a document together with its embedding.
// Embedding is stored as a JSON array of float32 for portability. The
// (document_id, chunk_index) pair is unique; chunk indexes form a contiguous
// sequence starting at 0 in chunker output order.
type Chunk struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID string    `gorm:"size:64;not null;index;uniqueIndex:idx_doc_chunk" json:"document_id"`
	ChunkIndex int       `gorm:"not null;uniqueIndex:idx_doc_chunk" json:"chunk_index"`
	TextChunk  string    `gorm:"type:longtext;not null" json:"text_chunk"`
	Embedding  string    `gorm:"type:text" json:"-"` // JSON array of float32
	CreatedAt  time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *Chunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *Chunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
