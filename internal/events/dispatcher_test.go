package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherDeliversByType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var created, retired int
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error { created++; return nil })
	d.Subscribe(EventTicketRetired, func(context.Context, Event) error { retired++; return nil })

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketStatusChanged}))
	assert.Equal(t, 1, created)
	assert.Equal(t, 0, retired)
}

func TestDispatcherJoinsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	first, second := errors.New("first"), errors.New("second")
	var calls int
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error { calls++; return first })
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error { calls++; return second })

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated})
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Equal(t, 2, calls)
}

func TestDispatcherSurvivesPanickingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var reached bool
	d.Subscribe(EventTicketRetired, func(context.Context, Event) error { panic("metrics exploded") })
	d.Subscribe(EventTicketRetired, func(context.Context, Event) error { reached = true; return nil })

	err := d.Publish(context.Background(), Event{Type: EventTicketRetired})
	assert.ErrorContains(t, err, "metrics exploded")
	assert.True(t, reached)
}
