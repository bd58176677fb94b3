package game

import (
	"context"
	"log"
	"time"
)

// StartIdleWorker closes tables that have had no connected players for
// idleAfter, checking every interval.
func StartIdleWorker(ctx context.Context, gm *GameManager, idleAfter, interval time.Duration) {
	if gm == nil || idleAfter <= 0 || interval <= 0 {
		log.Println("[IDLE] Manager or timings missing; idle worker not started")
		return
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case now := <-ticker.C:
				reapIdleRooms(gm, idleAfter, now)
			}
		}
	}()
}

// reapIdleRooms removes every table idle for at least idleAfter and returns
// how many were closed.
func reapIdleRooms(gm *GameManager, idleAfter time.Duration, now time.Time) int {
	closed := 0
	for _, r := range gm.Rooms() {
		idle := r.IdleFor(now)
		if idle < idleAfter {
			continue
		}
		if err := gm.RemoveRoom(r.ID); err != nil {
			// removed concurrently
			continue
		}
		log.Printf("[IDLE] Closed table %s after %s without players", r.ID, idle.Round(time.Second))
		closed++
	}
	return closed
}
