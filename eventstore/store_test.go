package eventstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/frantoso/jasm-debugger/eventstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) eventstore.Store {
		return eventstore.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) eventstore.Store {
		store, err := eventstore.NewSQLiteStore(":memory:")
		require.NoError(t, err, "create sqlite store")
		return store
	})
}

func runStoreTests(t *testing.T, newStore func(t *testing.T) eventstore.Store) {
	ctx := context.Background()

	t.Run("append and read back", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		e1 := eventstore.NewEntry("conn-1", "X", eventstore.KindSetMachine, []byte(`{"name":"X"}`))
		e2 := eventstore.NewEntry("conn-1", "X", eventstore.KindStateChanged, []byte(`{"newStateId":"a"}`))
		e2.ReceivedAt = e1.ReceivedAt.Add(time.Second)

		require.NoError(t, store.Append(ctx, e1))
		require.NoError(t, store.Append(ctx, e2))

		entries, err := store.ByConnection(ctx, "conn-1", 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, e2.ID, entries[0].ID, "newest first")
		assert.Equal(t, e1.ID, entries[1].ID)
		assert.Equal(t, eventstore.KindSetMachine, entries[1].Kind)
		assert.JSONEq(t, `{"name":"X"}`, string(entries[1].Payload))
	})

	t.Run("limit", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		base := time.Now().UTC()
		for i := 0; i < 5; i++ {
			e := eventstore.NewEntry("conn-1", "X", eventstore.KindStateChanged, nil)
			e.ReceivedAt = base.Add(time.Duration(i) * time.Second)
			require.NoError(t, store.Append(ctx, e))
		}

		entries, err := store.ByConnection(ctx, "conn-1", 2)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("connections are isolated", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Append(ctx, eventstore.NewEntry("conn-1", "X", eventstore.KindSetMachine, nil)))
		require.NoError(t, store.Append(ctx, eventstore.NewEntry("conn-2", "Y", eventstore.KindSetMachine, nil)))

		entries, err := store.ByConnection(ctx, "conn-2", 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Y", entries[0].Machine)
	})

	t.Run("unknown connection is empty", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		entries, err := store.ByConnection(ctx, "nobody", 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestNewEntry(t *testing.T) {
	e := eventstore.NewEntry("conn-1", "X", eventstore.KindSetMachine, []byte("{}"))
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.ReceivedAt.IsZero())

	other := eventstore.NewEntry("conn-1", "X", eventstore.KindSetMachine, []byte("{}"))
	assert.NotEqual(t, e.ID, other.ID)
}

func TestMemoryStoreClosed(t *testing.T) {
	store := eventstore.NewMemoryStore()
	require.NoError(t, store.Close())

	err := store.Append(context.Background(), eventstore.NewEntry("c", "m", eventstore.KindSetMachine, nil))
	assert.ErrorIs(t, err, eventstore.ErrClosed)

	_, err = store.ByConnection(context.Background(), "c", 0)
	assert.ErrorIs(t, err, eventstore.ErrClosed)
}
