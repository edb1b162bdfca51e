package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sokoban "github.com/SeamusWaldron/sokodle"
)

func newState(t *testing.T, id string) *State {
	t.Helper()
	grid := sokoban.GridFromInts([][]int{
		{1, 1, 1, 1, 1},
		{1, 4, 2, 3, 1},
		{1, 1, 1, 1, 1},
	})
	game := sokoban.NewGame(grid)
	return &State{
		ID:        id,
		Level:     LevelRef{Kind: KindDaily, ID: 7},
		Grid:      grid,
		Snapshot:  game.Snapshot(),
		CreatedAt: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}
}

// runStoreContract checks the behaviour every Store must share.
func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		state := newState(t, "s1")
		require.NoError(t, store.Save(ctx, state))

		loaded, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, state.Level, loaded.Level)
		assert.Equal(t, state.Grid, loaded.Grid)
		assert.Equal(t, state.Snapshot.History, loaded.Snapshot.History)
		assert.True(t, state.CreatedAt.Equal(loaded.CreatedAt))

		game, err := sokoban.Restore(loaded.Grid, loaded.Snapshot)
		require.NoError(t, err)
		assert.Equal(t, sokoban.PhaseNotPlaying, game.Phase())
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		state := newState(t, "s2")
		require.NoError(t, store.Save(ctx, state))

		state.Grid[1][1] = sokoban.Floor
		loaded, err := store.Load(ctx, "s2")
		require.NoError(t, err)
		assert.Equal(t, sokoban.Player, loaded.Grid[1][1])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newState(t, "s3")))
		require.NoError(t, store.Delete(ctx, "s3"))

		_, err := store.Load(ctx, "s3")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newState(t, "l1")))
		require.NoError(t, store.Save(ctx, newState(t, "l2")))

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, "l1")
		assert.Contains(t, ids, "l2")
		assert.NotContains(t, ids, "s3")
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})

	store := NewRedisStoreFromClient(client, WithPrefix("test:"))
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Ping(context.Background()))
	runStoreContract(t, store)
	assert.True(t, mr.Exists("test:s1"))
}

func TestRedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})

	now := time.Now()
	store := NewRedisStoreFromClient(client, WithTTL(time.Minute))
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, newState(t, "short")))
	assert.Equal(t, time.Minute, mr.TTL("sokodle:session:short"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)

	now = now.Add(2 * time.Minute)
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, "short", "expired ids are pruned from the index")
}
