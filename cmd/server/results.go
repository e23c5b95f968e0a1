package main

import (
	"context"
	"time"

	"github.com/calvinwijaya/hearts-be/internal/game"
	"github.com/calvinwijaya/hearts-be/internal/log"
	"github.com/calvinwijaya/hearts-be/internal/store"
)

const resultWriteTimeout = 5 * time.Second

// resultWriter moves finished rounds off the table lock and into the user
// store.
type resultWriter struct {
	users store.UserStore
	queue chan game.RoundResult
}

func newResultWriter(users store.UserStore, size int) *resultWriter {
	return &resultWriter{
		users: users,
		queue: make(chan game.RoundResult, size),
	}
}

// Record never blocks; it runs under a table lock.
func (w *resultWriter) Record(r game.RoundResult) {
	select {
	case w.queue <- r:
	default:
		log.Warn("results: queue full, dropping round %d of table %s", r.Round, r.TableID)
	}
}

func (w *resultWriter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-w.queue:
			w.write(ctx, r)
		}
	}
}

func (w *resultWriter) write(ctx context.Context, r game.RoundResult) {
	for _, e := range r.Entries {
		if e.IsBot {
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, resultWriteTimeout)
		err := w.users.AppendResult(wctx, e.PlayerID, store.GameResult{
			TableID: r.TableID,
			EndedAt: r.EndedAt,
			Place:   e.Place,
			Points:  e.Points,
		})
		cancel()
		if err != nil {
			log.Error("results: table %s round %d player %d: %v", r.TableID, r.Round, e.PlayerID, err)
		}
	}
}
