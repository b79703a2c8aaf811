package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesTypedAndWildcardHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var typed, all []EventType
	d.Subscribe(EventCompanyCreated, func(_ context.Context, e Event) error {
		typed = append(typed, e.Type)
		return nil
	})
	d.SubscribeAll(func(_ context.Context, e Event) error {
		all = append(all, e.Type)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, d.Publish(ctx, New(EventCompanyCreated, Actor{SessionID: "s1"}, OrganizationPayload{Name: "Acme"})))
	require.NoError(t, d.Publish(ctx, New(EventTicketIssued, Actor{SessionID: "s1"}, nil)))

	assert.Equal(t, []EventType{EventCompanyCreated}, typed)
	assert.Equal(t, []EventType{EventCompanyCreated, EventTicketIssued}, all)
}

func TestPublishRunsEveryHandlerAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	ran := 0
	d.Subscribe(EventSignedIn, func(context.Context, Event) error { ran++; return boom })
	d.Subscribe(EventSignedIn, func(context.Context, Event) error { ran++; return nil })

	err := d.Publish(context.Background(), New(EventSignedIn, Actor{}, nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, ran)
}

func TestNewStampsIDAndTime(t *testing.T) {
	e := New(EventSignedOut, Actor{SessionID: "s1"}, nil)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
}
