package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaProducer_SendMessage(t *testing.T) {
	w := &recordingWriter{}
	p := newProducerWithWriter(w)

	require.NoError(t, p.SendMessage(context.Background(), "topic-a", "k1", map[string]int{"n": 1}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "topic-a", w.msgs[0].Topic)
	assert.Equal(t, "k1", string(w.msgs[0].Key))

	var got map[string]int
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, 1, got["n"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaProducer_SendMessageError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := newProducerWithWriter(w)
	assert.Error(t, p.SendMessage(context.Background(), "t", "k", "v"))
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(KafkaConfig{})
	assert.Error(t, err)
}
