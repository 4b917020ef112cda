package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	id, ch := bus.Subscribe(8)
	defer bus.Unsubscribe(id)

	bus.PublishNew(TypeTaskCreated, "t1", map[string]string{"board_id": "b1"})

	select {
	case ev := <-ch:
		assert.Equal(t, TypeTaskCreated, ev.Type)
		assert.Equal(t, "t1", ev.ResourceID)
		assert.Equal(t, "b1", ev.Metadata["board_id"])
		assert.NotEmpty(t, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	id, ch := bus.Subscribe(1)
	bus.Unsubscribe(id)

	_, open := <-ch
	assert.False(t, open)
}

func TestBusFullSubscriberDropsWithoutBlocking(t *testing.T) {
	bus := New()
	id, ch := bus.Subscribe(1)
	defer bus.Unsubscribe(id)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.PublishNew(TypeTaskUpdated, "t1", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	// The first event made it into the buffer; the rest were dropped.
	ev := <-ch
	require.NotNil(t, ev)
	assert.Empty(t, ch)
}

func TestBusFanOut(t *testing.T) {
	bus := New()
	id1, ch1 := bus.Subscribe(1)
	id2, ch2 := bus.Subscribe(1)
	defer bus.Unsubscribe(id1)
	defer bus.Unsubscribe(id2)

	bus.PublishNew(TypeTaskStatusChanged, "t1", nil)

	for _, ch := range []<-chan *Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, TypeTaskStatusChanged, ev.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}
