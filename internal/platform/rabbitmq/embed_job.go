package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EmbedJob asks the worker to chunk and embed a stored document. Chunk
// indexes are derived from the content by the worker, so the document text
// travels with the job.
type EmbedJob struct {
	DocID   string `json:"doc_id"`
	Content string `json:"content"`
}

// EmbedJobPublisher publishes embed jobs to a durable queue.
type EmbedJobPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewEmbedJobPublisher(conn *amqp.Connection, queueName string) *EmbedJobPublisher {
	return &EmbedJobPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *EmbedJobPublisher) PublishEmbedJob(ctx context.Context, docID, content string) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(EmbedJob{DocID: docID, Content: content})
	if err != nil {
		return fmt.Errorf("marshal embed job failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish embed job failed: %w", err)
	}
	return nil
}
