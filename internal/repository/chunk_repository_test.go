package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"multimodal-knowledge-assistant/internal/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestChunkUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChunkRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `chunks` .*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	chunk := &model.Chunk{DocumentID: "doc-1", ChunkIndex: 0, TextChunk: "alpha beta"}
	chunk.SetEmbedding([]float32{0.5, -0.25})

	require.NoError(t, repo.Upsert(context.Background(), chunk))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChunkScanAllRoundTrip(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChunkRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "document_id", "chunk_index", "text_chunk", "embedding", "created_at"}).
		AddRow(1, "doc-1", 0, "alpha beta", "[0.5,-0.25]", now).
		AddRow(2, "doc-1", 1, "gamma", "[1,2]", now)
	mock.ExpectQuery("SELECT \\* FROM `chunks` ORDER BY id").WillReturnRows(rows)

	chunks, err := repo.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "doc-1", chunks[0].DocumentID)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "alpha beta", chunks[0].TextChunk)
	assert.Equal(t, []float32{0.5, -0.25}, chunks[0].EmbeddingVector())
	assert.Equal(t, []float32{1, 2}, chunks[1].EmbeddingVector())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChunkScanAllPropagatesError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChunkRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `chunks`").WillReturnError(assert.AnError)

	_, err := repo.ScanAll(context.Background())
	assert.Error(t, err)
}

func TestChunkCountByDocumentID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChunkRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `chunks` WHERE document_id = \\?").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountByDocumentID(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestChunkDeleteByDocumentID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChunkRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `chunks` WHERE document_id = \\?").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteByDocumentID(context.Background(), "doc-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
