package model

import "time"

// Document is one ingested source file. DocID is assigned at ingestion and
// the extracted content is immutable once stored.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DocID     string    `gorm:"size:64;not null;uniqueIndex" json:"doc_id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Content   string    `gorm:"type:longtext;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
