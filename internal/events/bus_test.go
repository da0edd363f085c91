package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New(func() time.Time { return at })
	sub := b.Subscribe("task")
	defer b.Unsubscribe(sub)

	b.Publish(TopicTask, "moved")

	select {
	case evt := <-sub.Ch():
		assert.Equal(t, TopicTask, evt.Type)
		assert.Equal(t, "moved", evt.Payload)
		assert.Equal(t, at, evt.Timestamp)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestBusPrefixMatching(t *testing.T) {
	b := New(nil)
	taskSub := b.Subscribe("task")
	defer b.Unsubscribe(taskSub)
	allSub := b.Subscribe("")
	defer b.Unsubscribe(allSub)

	b.Publish(TopicTask, 1)
	b.Publish(TopicChat, 2)

	require.Len(t, taskSub.Ch(), 1)
	require.Len(t, allSub.Ch(), 2)
	assert.Equal(t, TopicTask, (<-taskSub.Ch()).Type)
}

func TestBusDropsWhenFull(t *testing.T) {
	b := New(nil)
	sub := b.Subscribe("")
	defer b.Unsubscribe(sub)
	for i := 0; i < defaultBufferSize+10; i++ {
		b.Publish(TopicLog, i)
	}
	assert.Len(t, sub.Ch(), defaultBufferSize)
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	b := New(nil)
	sub := b.Subscribe("")
	require.Equal(t, 1, b.SubscriberCount())
	b.Unsubscribe(sub)
	b.Unsubscribe(sub)
	assert.Equal(t, 0, b.SubscriberCount())
	_, ok := <-sub.Ch()
	assert.False(t, ok)
}
