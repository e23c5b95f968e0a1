package main

import (
	"context"
	"testing"
	"time"

	"github.com/calvinwijaya/hearts-be/internal/config"
	"github.com/calvinwijaya/hearts-be/internal/game"
	"github.com/calvinwijaya/hearts-be/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultWriterStoresHumanEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users := store.NewMemoryStore()
	for _, id := range []int64{1, 2} {
		_, err := users.GetOrCreate(ctx, store.Identity{ID: id, Username: "p"})
		require.NoError(t, err)
	}

	w := newResultWriter(users, 4)
	go w.Run(ctx)

	w.Record(game.RoundResult{
		TableID: "t1",
		Round:   0,
		EndedAt: time.Now(),
		Entries: []game.RoundEntry{
			{PlayerID: 1, Points: 0, Place: 1},
			{PlayerID: -3, IsBot: true, Points: 5, Place: 2},
			{PlayerID: 2, Points: 21, Place: 3},
		},
	})

	require.Eventually(t, func() bool {
		u, err := users.Get(ctx, 2)
		return err == nil && len(u.History) == 1
	}, time.Second, 5*time.Millisecond)

	u, err := users.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, u.History, 1)
	assert.Equal(t, 1, u.History[0].Place)
	assert.Equal(t, "t1", u.History[0].TableID)
}

func TestResultWriterDropsWhenFull(t *testing.T) {
	w := newResultWriter(store.NewMemoryStore(), 1)
	w.Record(game.RoundResult{TableID: "a"})
	assert.NotPanics(t, func() { w.Record(game.RoundResult{TableID: "b"}) })
	assert.Len(t, w.queue, 1)
}

func TestOpenStore(t *testing.T) {
	s, err := openStore(context.Background(), config.StoreConf{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)

	_, err = openStore(context.Background(), config.StoreConf{Driver: "cassandra"})
	assert.Error(t, err)
}
