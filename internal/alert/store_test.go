package alert

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "fito:alertas:"), mr
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"redis": func(t *testing.T) Store {
			s, _ := newRedisStore(t)
			return s
		},
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := build(t)

			empty, err := store.Active(ctx)
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)

			created := time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)
			first := &Alert{Type: "PLAGA", Description: "broca", Severity: "CRITICA", EntityID: 4, CreatedAt: created}
			second := &Alert{Type: "RESULTADO_TECNICO", Description: "incidencia 85%", Severity: "ALTA", EntityID: 9, CreatedAt: created}
			require.NoError(t, store.Create(ctx, first))
			require.NoError(t, store.Create(ctx, second))
			assert.Equal(t, int64(1), first.ID)
			assert.Equal(t, int64(2), second.ID)

			active, err := store.Active(ctx)
			require.NoError(t, err)
			require.Len(t, active, 2)
			assert.Equal(t, *first, active[0])
			assert.Equal(t, "RESULTADO_TECNICO", active[1].Type)

			require.NoError(t, store.Close(ctx, first.ID))
			assert.ErrorIs(t, store.Close(ctx, first.ID), ErrNotFound)

			active, err = store.Active(ctx)
			require.NoError(t, err)
			require.Len(t, active, 1)
			assert.Equal(t, second.ID, active[0].ID)

			// ids are never reused
			third := &Alert{Type: "PLAGA", Severity: "ALTA"}
			require.NoError(t, store.Create(ctx, third))
			assert.Equal(t, int64(3), third.ID)
		})
	}
}

func TestMemoryStore_Isolated(t *testing.T) {
	ctx := context.Background()
	a, b := NewMemoryStore(), NewMemoryStore()
	x := &Alert{Type: "PLAGA", Severity: "ALTA"}
	y := &Alert{Type: "PLAGA", Severity: "ALTA"}
	require.NoError(t, a.Create(ctx, x))
	require.NoError(t, b.Create(ctx, y))
	assert.Equal(t, x.ID, y.ID)

	listed, err := b.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestRedisStore_Layout(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.Create(ctx, &Alert{Type: "PLAGA", Severity: "CRITICA", EntityID: 7}))

	assert.True(t, mr.Exists("fito:alertas:alert:1"))
	seq, err := mr.Get("fito:alertas:seq")
	require.NoError(t, err)
	assert.Equal(t, "1", seq)
	members, err := mr.ZMembers("fito:alertas:active")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, members)

	require.NoError(t, store.Close(ctx, 1))
	assert.False(t, mr.Exists("fito:alertas:alert:1"))
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	err := store.Create(context.Background(), &Alert{Type: "PLAGA", Severity: "ALTA"})
	assert.Error(t, err)
	_, err = store.Active(context.Background())
	assert.Error(t, err)
}
