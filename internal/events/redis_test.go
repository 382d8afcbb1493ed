package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	channel string
	message []byte
	err     error
	closed  bool
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.message, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisPublisher_PublishJobIngested(t *testing.T) {
	rdb := &fakeRedis{}
	p := NewRedisPublisher(rdb)
	companyID := uuid.New()
	event := JobIngested{
		JobID:      uuid.New(),
		UserID:     uuid.New(),
		CompanyID:  &companyID,
		URL:        "https://jobs.example.com/1",
		IngestedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, p.PublishJobIngested(context.Background(), event))

	assert.Equal(t, ChannelJobIngested, rdb.channel)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rdb.message, &got))
	assert.Equal(t, "EVENT_JOB_INGESTED", got["type"])
	assert.Equal(t, event.JobID.String(), got["job_id"])
	assert.Equal(t, companyID.String(), got["company_id"])
	assert.Equal(t, "2025-01-02T03:04:05Z", got["ingested_at"])

	require.NoError(t, p.Close())
	assert.True(t, rdb.closed)
}

func TestRedisPublisher_PublishError(t *testing.T) {
	rdb := &fakeRedis{err: errors.New("connection refused")}

	err := NewRedisPublisher(rdb).PublishJobIngested(context.Background(), JobIngested{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EVENT_JOB_INGESTED")
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-redis-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.ParseURL")
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishJobIngested(context.Background(), JobIngested{}))
	assert.NoError(t, p.Close())
}
