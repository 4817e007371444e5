package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"multimodal-knowledge-assistant/internal/platform/rabbitmq"
)

// ChunkEmbedder runs the chunk/embed/store pipeline for one document.
type ChunkEmbedder interface {
	EmbedChunks(ctx context.Context, docID, content string) int
}

// EmbedWorker consumes embed jobs and enriches stored documents with
// embedded chunks. Best-effort: the document row already exists by the time
// a job is queued, so a failed job leaves a visible document with fewer (or
// no) chunks.
type EmbedWorker struct {
	conn      *amqp.Connection
	embedder  ChunkEmbedder
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEmbedWorker(conn *amqp.Connection, embedder ChunkEmbedder, queueName string, logger *zap.Logger) *EmbedWorker {
	return &EmbedWorker{
		conn:      conn,
		embedder:  embedder,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *EmbedWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var job rabbitmq.EmbedJob
				if err := json.Unmarshal(d.Body, &job); err != nil {
					w.logger.Error("worker decode embed job failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				stored := w.embedder.EmbedChunks(workerCtx, job.DocID, job.Content)
				w.logger.Info("embed job processed",
					zap.String("doc_id", job.DocID), zap.Int("chunks_stored", stored))
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *EmbedWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
