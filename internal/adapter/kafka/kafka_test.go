package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/jismesh-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("53394611"),
		Value:     []byte(`{"KEY_CODE":"53394611"}`),
		Topic:     "raw-mesh-stats",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("estat")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("53394611"), raw.Key)
	assert.JSONEq(t, `{"KEY_CODE":"53394611"}`, string(raw.Value))
	assert.Equal(t, "raw-mesh-stats", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "estat", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestOutputToMessage(t *testing.T) {
	processed := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC).Format(time.RFC3339)
	event := domain.OutputEvent{
		Key:   []byte("53394611341"),
		Value: []byte(`{"code":"53394611341"}`),
		Headers: map[string]string{
			"processed_at": processed,
			"level":        "6",
			"parent":       "53394611",
		},
	}

	msg := outputToMessage(event)

	assert.Equal(t, []byte("53394611341"), msg.Key)
	assert.JSONEq(t, `{"code":"53394611341"}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "level", msg.Headers[0].Key)
	assert.Equal(t, []byte("6"), msg.Headers[0].Value)
	assert.Equal(t, "parent", msg.Headers[1].Key)
	assert.Equal(t, "processed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(processed), msg.Headers[2].Value)
}

func TestRecordToMessage(t *testing.T) {
	rec := domain.MeshRecord{
		KeyCode: "5339461134",
		Values:  map[string]float64{"人口（総数）": 120},
	}

	msg, err := recordToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("5339461134"), msg.Key)
	assert.JSONEq(t, `{"KEY_CODE":"5339461134","values":{"人口（総数）":120}}`, string(msg.Value))
	assert.Empty(t, msg.Headers)
}
