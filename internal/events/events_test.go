package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/address/addrtest"
)

func TestNew(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	src := addrtest.Contract(1)

	a := New(TypeDeployed, "token", src, now)
	b := New(TypeDeployed, "token", src, now)

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, TypeDeployed, a.Type)
	assert.Equal(t, "token", a.Family)
	assert.Equal(t, src, a.Source)
	assert.Equal(t, now, a.Timestamp)
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	r := &Recorder{}
	src := addrtest.Contract(2)

	r.Publish(ctx, New(TypePaused, "nft", src, time.Now()))
	r.Publish(ctx, New(TypeDeployed, "nft", src, time.Now()))
	r.Publish(ctx, New(TypeUnpaused, "nft", src, time.Now()))

	all := r.Events()
	require.Len(t, all, 3)
	assert.Equal(t, TypePaused, all[0].Type)
	assert.Equal(t, TypeUnpaused, all[2].Type)

	all[0].Type = TypeWasmUpdated
	assert.Equal(t, TypePaused, r.Events()[0].Type)

	assert.Len(t, r.OfType(TypeDeployed), 1)
	assert.Empty(t, r.OfType(TypeFactoryDeployed))
}

func TestPublisherFunc(t *testing.T) {
	var got []Type
	p := PublisherFunc(func(_ context.Context, e Event) {
		got = append(got, e.Type)
	})

	p.Publish(context.Background(), New(TypeAdminTransferred, "master", addrtest.Contract(3), time.Now()))
	Discard.Publish(context.Background(), Event{})

	assert.Equal(t, []Type{TypeAdminTransferred}, got)
}
