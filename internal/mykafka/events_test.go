package mykafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	topics []string
	err    error
}

func (r *recorder) PublishEvent(_ context.Context, topic, _ string, _ any) error {
	r.topics = append(r.topics, topic)
	return r.err
}

func TestPublish_SwallowsErrors(t *testing.T) {
	t.Parallel()

	r := &recorder{err: errors.New("broker down")}
	Publish(context.Background(), r, TopicCartEvents, "k", CartEvent{Type: "item_added"})
	assert.Equal(t, []string{TopicCartEvents}, r.topics)

	Publish(context.Background(), nil, TopicCartEvents, "k", CartEvent{})
	require.NoError(t, Nop{}.PublishEvent(context.Background(), TopicUserEvents, "k", UserEvent{}))
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil)
	require.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestNewProducer_DoesNotWaitForBatches(t *testing.T) {
	t.Parallel()

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	assert.LessOrEqual(t, p.writer.BatchTimeout, 10*time.Millisecond)
	assert.False(t, p.writer.Async)
}
