// Package events publishes domain events for other services to consume.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChannelJobIngested is the Redis channel a JobIngested event is published on
const ChannelJobIngested = "EVENT_JOB_INGESTED"

// JobIngested is emitted after a scraped job has been stored
type JobIngested struct {
	Type       string     `json:"type"`
	JobID      uuid.UUID  `json:"job_id"`
	UserID     uuid.UUID  `json:"user_id"`
	CompanyID  *uuid.UUID `json:"company_id"`
	URL        string     `json:"url"`
	IngestedAt time.Time  `json:"ingested_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishJobIngested(ctx context.Context, event JobIngested) error
	Close() error
}

// Nop discards every event
type Nop struct{}

// PublishJobIngested implements Publisher
func (Nop) PublishJobIngested(context.Context, JobIngested) error { return nil }

// Close implements Publisher
func (Nop) Close() error { return nil }
