// Package queue pushes finished records onto a Redis list for downstream
// consumers (indexers, notifiers) that live outside this process.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/job-harvester/internal/domain"
)

// Publisher pushes records to a Redis queue. It satisfies sink.Sink.
type Publisher struct {
	client    *redis.Client
	queueName string
}

// NewPublisher creates a publisher for the named queue.
func NewPublisher(client *redis.Client, queueName string) *Publisher {
	if queueName == "" {
		queueName = "jobs:harvested"
	}
	return &Publisher{client: client, queueName: queueName}
}

// Append pushes the records in one pipeline.
func (p *Publisher) Append(ctx context.Context, records ...*domain.JobRecord) error {
	if len(records) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		pipe.LPush(ctx, p.queueName, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec: %w", err)
	}
	return nil
}
