package sender

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"record-splitter/internal/group"
	"record-splitter/internal/partitioner"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	delay    time.Duration
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, messages ...kafka.Message) error {
	if w.delay > 0 {
		time.Sleep(w.delay)
	}
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, messages...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

// TestKafkaSender_Send проверяет ключ, тело и заголовки сообщения.
func TestKafkaSender_Send(t *testing.T) {
	w := &fakeWriter{}
	ks := &KafkaSender{writer: w, runID: "run-1"}

	set := partitioner.Set{
		ID:      "set.a.200",
		Group:   "set",
		Mode:    group.WeightBudgetMode,
		Records: []string{"r3"},
		Weight:  200,
	}

	require.NoError(t, ks.Send(t.Context(), set))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "set.a.200", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, runIDHeader, msg.Headers[0].Key)
	assert.Equal(t, "run-1", string(msg.Headers[0].Value))

	var body SetMessage
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, SetMessage{
		ID:      "set.a.200",
		Group:   "set",
		Mode:    "weight_budget",
		Weight:  200,
		Records: []string{"r3"},
	}, body)
}

// TestKafkaSender_Send_WaitsForWrite проверяет, что Send
// блокируется до завершения операции записи в Kafka.
func TestKafkaSender_Send_WaitsForWrite(t *testing.T) {
	w := &fakeWriter{delay: 100 * time.Millisecond}
	ks := &KafkaSender{writer: w}

	start := time.Now()
	err := ks.Send(t.Context(), partitioner.Set{ID: "s", Records: []string{"r"}})
	elapsed := time.Since(start)

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Empty(t, w.messages[0].Headers)
}

func TestKafkaSender_Send_Error(t *testing.T) {
	expectedErr := errors.New("write failed")
	ks := &KafkaSender{writer: &fakeWriter{err: expectedErr}}

	err := ks.Send(t.Context(), partitioner.Set{ID: "s"})
	assert.ErrorIs(t, err, expectedErr)
}

func TestKafkaSender_EmptyRecordsEncodeAsList(t *testing.T) {
	w := &fakeWriter{}
	ks := &KafkaSender{writer: w}

	require.NoError(t, ks.Send(t.Context(), partitioner.Set{ID: "s"}))
	assert.JSONEq(t, `{"id":"s","group":"","records":[]}`, string(w.messages[0].Value))
}

func TestKafkaSender_Close(t *testing.T) {
	w := &fakeWriter{}
	ks := &KafkaSender{writer: w}

	require.NoError(t, ks.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaSender_Validation(t *testing.T) {
	_, err := NewKafkaSender(KafkaConfig{Topic: "sets"})
	assert.ErrorIs(t, err, ErrInvalidKafkaConfig)

	ks, err := NewKafkaSender(KafkaConfig{Broker: "localhost:9092", Topic: "sets"})
	require.NoError(t, err)
	assert.NoError(t, ks.Close())
}
