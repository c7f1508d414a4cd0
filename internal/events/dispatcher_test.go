package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_PublishRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	var calls []string
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.UserID)
		return boom
	})
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.UserID)
		return nil
	})
	d.Subscribe(EventUserLoggedIn, func(context.Context, Event) error {
		calls = append(calls, "login")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserRegistered, UserID: "u-1"})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:u-1", "second:u-1"}, calls)
}

func TestDispatcher_PublishWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventUserLoggedIn}))
}

func TestDispatcher_RecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	var ran bool
	d.Subscribe(EventUserLoggedIn, func(context.Context, Event) error { panic("nil map") })
	d.Subscribe(EventUserLoggedIn, func(context.Context, Event) error {
		ran = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserLoggedIn})

	assert.ErrorIs(t, err, ErrHandlerPanic)
	assert.True(t, ran)
}

func TestDispatcher_StopsOnCancelledContext(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls int
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error {
		calls++
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Publish(ctx, Event{Type: EventUserRegistered})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
