package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multimodal-knowledge-assistant/internal/model"
)

func TestDocumentCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `documents`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	doc := &model.Document{DocID: "uuid-1", Name: "report.pdf", Content: "extracted text"}
	require.NoError(t, repo.Create(context.Background(), doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentGetByDocIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `documents` WHERE doc_id = \\?").
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "doc_id", "name", "content", "created_at"}))

	doc, err := repo.GetByDocID(context.Background(), "missing")
	require.NoError(t, err, "absent document is not an error")
	assert.Nil(t, doc)
}

func TestDocumentList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "doc_id", "name", "content", "created_at"}).
		AddRow(2, "uuid-2", "b.txt", "bbb", now).
		AddRow(1, "uuid-1", "a.txt", "aaa", now.Add(-time.Hour))
	mock.ExpectQuery("SELECT \\* FROM `documents` ORDER BY created_at DESC").WillReturnRows(rows)

	docs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "uuid-2", docs[0].DocID)
}

func TestDocumentDeleteByDocID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `documents` WHERE doc_id = \\?").
		WithArgs("uuid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteByDocID(context.Background(), "uuid-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
