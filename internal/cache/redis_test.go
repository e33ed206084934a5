package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPusher struct {
	keys   []string
	values [][]byte
	err    error
}

func (m *mockPusher) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	m.keys = append(m.keys, key)
	for _, v := range values {
		m.values = append(m.values, v.([]byte))
	}
	return redis.NewIntResult(int64(len(m.values)), m.err)
}

func TestPublishRoundTrip(t *testing.T) {
	p := &mockPusher{}
	log := NewActionLog(p, "")
	assert.Equal(t, DefaultQueueName, log.Queue())

	rec := ActionRecord{
		GameID:        uuid.New(),
		ActionIndex:   3,
		ActorID:       uuid.New(),
		ActionType:    "playCard",
		ActionPayload: map[string]interface{}{"chosenColor": "blue"},
		Timestamp:     1700000000000,
	}
	require.NoError(t, log.Publish(context.Background(), rec))
	require.Len(t, p.values, 1)
	assert.Equal(t, []string{DefaultQueueName}, p.keys)

	got, err := DecodeActionRecord(p.values[0])
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestPublishWrapsRedisError(t *testing.T) {
	boom := errors.New("connection refused")
	log := NewActionLog(&mockPusher{err: boom}, "q")
	err := log.Publish(context.Background(), ActionRecord{GameID: uuid.New()})
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "'q'")
}

func TestDecodeActionRecordRejectsGarbage(t *testing.T) {
	_, err := DecodeActionRecord([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeActionRecord([]byte(`{"action_type":"drawCard"}`))
	assert.ErrorContains(t, err, "game_id")
}
