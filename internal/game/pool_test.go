package game

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	return NewPool(testOptions(&recorder{}))
}

func admit(t *testing.T, pool *Pool, id int64) (*Player, *Table) {
	t.Helper()
	pl := pool.Player(id, fmt.Sprintf("player %d", id))
	tbl, err := pool.Admit(pl)
	require.NoError(t, err)
	t.Cleanup(tbl.Close)
	return pl, tbl
}

func TestPoolPlayerIsStable(t *testing.T) {
	pool := newTestPool(t)

	a := pool.Player(1, "one")
	b := pool.Player(1, "renamed")
	assert.Same(t, a, b)
	assert.Equal(t, "one", b.DisplayName)

	got, ok := pool.Lookup(1)
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = pool.Lookup(2)
	assert.False(t, ok)
}

func TestPoolFillsTablesInOrder(t *testing.T) {
	pool := newTestPool(t)

	var first *Table
	for id := int64(1); id <= 4; id++ {
		_, tbl := admit(t, pool, id)
		if first == nil {
			first = tbl
		}
		assert.Same(t, first, tbl)
	}
	assert.True(t, first.Started())
	assert.NotSame(t, first, pool.Open(), "a started table is replaced")

	_, next := admit(t, pool, 5)
	assert.NotSame(t, first, next)
	assert.False(t, next.Started())

	bound, ok := pool.TableOf(3)
	require.True(t, ok)
	assert.Same(t, first, bound)
}

func TestPoolReadmitsBoundPlayer(t *testing.T) {
	pool := newTestPool(t)

	lobbyPlayer, lobby := admit(t, pool, 1)
	again, err := pool.Admit(lobbyPlayer)
	require.NoError(t, err)
	assert.Same(t, lobby, again)
	assert.Equal(t, 1, lobby.Summary().Players)

	for id := int64(2); id <= 4; id++ {
		admit(t, pool, id)
	}
	require.True(t, lobby.Started())

	pl, ok := pool.Lookup(2)
	require.True(t, ok)
	require.NoError(t, lobby.Leave(pl))
	withLock(lobby, func() { assert.True(t, pl.AutoPlay) })

	back, err := pool.Admit(pl)
	require.NoError(t, err)
	assert.Same(t, lobby, back)
	withLock(lobby, func() { assert.False(t, pl.AutoPlay) })
}

func TestPoolReleaseAndForget(t *testing.T) {
	pool := newTestPool(t)
	pl, tbl := admit(t, pool, 1)

	assert.False(t, pool.Forget(1), "bound players are kept")

	require.NoError(t, tbl.Leave(pl))
	_, ok := pool.TableOf(1)
	assert.False(t, ok, "leaving the lobby drops the binding")

	admit(t, pool, 1)
	pool.Release(pl)
	_, ok = pool.TableOf(1)
	assert.False(t, ok)

	assert.True(t, pool.Forget(1))
	_, ok = pool.Lookup(1)
	assert.False(t, ok)
}

func TestPoolReleaseAfterStartSplitsPlayer(t *testing.T) {
	pool := newTestPool(t)

	var started *Table
	for id := int64(1); id <= 4; id++ {
		_, started = admit(t, pool, id)
	}
	require.True(t, started.Started())

	old, _ := pool.Lookup(2)
	require.NoError(t, started.Leave(old))
	pool.Release(old)

	fresh := pool.Player(2, "ignored")
	assert.NotSame(t, old, fresh, "the old seat keeps its own hand")
	assert.Equal(t, old.DisplayName, fresh.DisplayName)

	next, err := pool.Admit(fresh)
	require.NoError(t, err)
	t.Cleanup(next.Close)
	assert.NotSame(t, started, next)

	withLock(started, func() {
		assert.True(t, old.AutoPlay)
		assert.NotEmpty(t, old.Hand)
	})
	assert.Empty(t, fresh.Hand)
}

func TestPoolReleasedSeatStopsReceivingEvents(t *testing.T) {
	rec := &recorder{}
	pool := NewPool(testOptions(rec))

	var old *Table
	for id := int64(1); id <= 4; id++ {
		_, old = admit(t, pool, id)
	}
	require.True(t, old.Started())

	gone, _ := pool.Lookup(1)
	require.NoError(t, old.Leave(gone))
	pool.Release(gone)
	_, next := admit(t, pool, 1)
	require.NotSame(t, old, next)

	mark := len(rec.all())
	for i := 0; i < 6; i++ {
		var mover *Player
		var card Card
		withLock(old, func() {
			mover = old.toAct()
			card = chooseAutoMove(mover.Hand, old.trick)
		})
		require.NotSame(t, gone, mover, "the departed seat is auto-played")
		require.NoError(t, old.PlayerMove(mover, card))
	}

	after := rec.all()[mark:]
	require.NotEmpty(t, after)
	for _, d := range after {
		if d.to != nil {
			assert.NotEqual(t, int64(1), *d.to, "private %s event", d.notif.Event)
		}
		assert.NotContains(t, d.seats, int64(1), "broadcast %s event", d.notif.Event)
	}

	withLock(old, func() {
		assert.True(t, gone.AutoPlay)
		assert.Less(t, len(gone.Hand), HandSize, "the departed seat keeps playing")
	})
	assert.ErrorIs(t, old.Rejoin(gone), ErrNotSeated)
}

func TestPoolForgetsOfflinePlayersOfClosedTable(t *testing.T) {
	online := map[int64]bool{1: true, 3: true, 4: true}
	opts := testOptions(&recorder{})
	opts.Connected = func(id int64) bool { return online[id] }
	pool := NewPool(opts)

	var tbl *Table
	for id := int64(1); id <= 4; id++ {
		_, tbl = admit(t, pool, id)
	}
	tbl.Close()

	_, ok := pool.Lookup(2)
	assert.False(t, ok, "offline player is forgotten")
	for _, id := range []int64{1, 3, 4} {
		_, ok := pool.Lookup(id)
		assert.True(t, ok, "player %d is still connected", id)
		_, bound := pool.TableOf(id)
		assert.False(t, bound)
	}
}

func TestPoolUnbindsClosedTable(t *testing.T) {
	pool := newTestPool(t)

	var tbl *Table
	for id := int64(1); id <= 4; id++ {
		_, tbl = admit(t, pool, id)
	}
	tbl.Close()

	for id := int64(1); id <= 4; id++ {
		_, ok := pool.TableOf(id)
		assert.False(t, ok)
	}

	pl, ok := pool.Lookup(1)
	require.True(t, ok)
	fresh, err := pool.Admit(pl)
	require.NoError(t, err)
	t.Cleanup(fresh.Close)
	assert.NotSame(t, tbl, fresh)
}

func TestPoolUnbindIgnoresStaleTable(t *testing.T) {
	pool := newTestPool(t)
	_, tbl := admit(t, pool, 1)

	pool.Unbind(1, NewTable(Options{}))
	bound, ok := pool.TableOf(1)
	require.True(t, ok)
	assert.Same(t, tbl, bound)
}

func TestPoolConcurrentAdmits(t *testing.T) {
	pool := newTestPool(t)
	const n = 40

	tables := make([]*Table, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pl := pool.Player(int64(i+1), "racer")
			tbl, err := pool.Admit(pl)
			assert.NoError(t, err)
			tables[i] = tbl
		}(i)
	}
	wg.Wait()

	seated := make(map[*Table]int)
	for _, tbl := range tables {
		require.NotNil(t, tbl)
		seated[tbl]++
	}
	t.Cleanup(func() {
		for tbl := range seated {
			tbl.Close()
		}
	})

	assert.Len(t, seated, n/MaxPlayers)
	for tbl, count := range seated {
		assert.Equal(t, MaxPlayers, count)
		assert.True(t, tbl.Started())
		assert.Equal(t, MaxPlayers, tbl.Summary().Players)
	}
}
