package bookstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf/internal/domain"
)

func receive(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "channel closed")
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
		return Snapshot{}
	}
}

func TestSubscribe_InitialAndChanges(t *testing.T) {
	s, _ := newFakeStore(t, Options{}, newBook(1, "Emma"))

	ch, cancel := s.Subscribe()
	defer cancel()

	first := receive(t, ch)
	assert.True(t, first.IsLoading)
	assert.Nil(t, first.Books)

	require.NoError(t, s.Load(context.Background()))

	next := receive(t, ch)
	assert.False(t, next.IsLoading)
	assert.Equal(t, []string{"Emma"}, titles(next.Books))
	assert.Greater(t, next.Version, first.Version)
}

func TestSubscribe_SlowReaderGetsLatest(t *testing.T) {
	s, fake := newFakeStore(t, Options{})
	ctx := context.Background()

	ch, cancel := s.Subscribe()
	defer cancel()

	for i := int64(1); i <= 3; i++ {
		_, err := s.Create(ctx, newBook(i, "Book"))
		require.NoError(t, err)
	}

	snap := receive(t, ch)
	assert.Len(t, snap.Books, 3)
	assert.Equal(t, s.Snapshot().Version, snap.Version)
	assert.Len(t, fake.Books(), 3)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected queued snapshot version %d", extra.Version)
	default:
	}
}

func TestSubscribe_ErrorIsPublished(t *testing.T) {
	s, fake := newFakeStore(t, Options{})

	ch, cancel := s.Subscribe()
	defer cancel()
	receive(t, ch)

	fake.SetDown(true)
	require.Error(t, s.Revalidate(context.Background()))

	snap := receive(t, ch)
	assert.True(t, snap.IsError)
	assert.Error(t, snap.Err)
}

func TestSubscribe_SnapshotsAreIndependentCopies(t *testing.T) {
	b := newBook(1, "Emma")
	b.Category = []string{"classic"}
	s, _ := newFakeStore(t, Options{}, b)
	require.NoError(t, s.Load(context.Background()))

	ch, cancel := s.Subscribe()
	defer cancel()

	snap := receive(t, ch)
	snap.Books[0].Category[0] = "changed"

	got, _ := domain.FindBook(s.Books(), 1)
	assert.Equal(t, []string{"classic"}, got.Category)
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	s, _ := newFakeStore(t, Options{})

	ch, cancel := s.Subscribe()
	receive(t, ch)
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	require.NoError(t, s.Load(context.Background()))
}

func TestSubscribe_CloseEndsSubscriptions(t *testing.T) {
	s, _ := newFakeStore(t, Options{})

	ch, cancel := s.Subscribe()
	defer cancel()
	receive(t, ch)

	s.Close()
	s.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late, lateCancel := s.Subscribe()
	defer lateCancel()
	_, ok = <-late
	assert.False(t, ok)
}
