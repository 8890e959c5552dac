package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Value int
}

type testEventer interface {
	EventValue() int
}

func (e testEvent) EventValue() int { return e.Value }

func TestBus_PublishSubscribe(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[testEvent](b, 1)
	defer unsubscribe()

	require.NoError(t, b.Publish(context.Background(), testEvent{Value: 123}))

	select {
	case got := <-ch:
		require.Equal(t, 123, got.Value)
	case <-time.After(250 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_InterfaceSubscriptionReceivesConcreteEvents(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[testEventer](b, 1)
	defer unsubscribe()

	require.NoError(t, b.Publish(context.Background(), testEvent{Value: 7}))

	select {
	case got := <-ch:
		require.Equal(t, 7, got.EventValue())
	case <-time.After(250 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_PublishBackpressure(t *testing.T) {
	b := NewBus()
	defer b.Close()

	_, unsubscribe := Subscribe[testEvent](b, 0) // unbuffered; no receiver => blocks
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := b.Publish(ctx, testEvent{Value: 1})
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	defer b.Close()

	_, unsubscribe := Subscribe[testEvent](b, 1)
	require.Equal(t, 1, SubscriberCount[testEvent](b))

	unsubscribe()
	require.Equal(t, 0, SubscriberCount[testEvent](b))

	require.NoError(t, b.Publish(context.Background(), testEvent{Value: 2}))
}

func TestBus_PublishAfterCloseFails(t *testing.T) {
	b := NewBus()

	ch, _ := Subscribe[testEvent](b, 1)
	b.Close()

	_, open := <-ch
	require.False(t, open, "subscription channel should be closed")

	err := b.Publish(context.Background(), testEvent{Value: 3})
	require.ErrorIs(t, err, ErrClosed)
}

func TestBus_MultipleSubscribersAllReceive(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch1, unsub1 := Subscribe[testEvent](b, 1)
	defer unsub1()
	ch2, unsub2 := Subscribe[testEvent](b, 1)
	defer unsub2()

	require.NoError(t, b.Publish(context.Background(), testEvent{Value: 9}))

	for _, ch := range []<-chan testEvent{ch1, ch2} {
		select {
		case got := <-ch:
			require.Equal(t, 9, got.Value)
		case <-time.After(250 * time.Millisecond):
			t.Fatal("timed out waiting for event")
		}
	}
}
