package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/billiards/internal/game"
	"github.com/redis/go-redis/v9"
)

// EventsMessage relays a table's event batch published by another process.
type EventsMessage struct {
	Type    string       `json:"type"`
	TableID string       `json:"table_id"`
	Events  []game.Event `json:"events"`
}

// StartEventSubscriber relays event batches from other processes to the
// spectators connected here. Batches this process published are skipped.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, h *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, game.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.EventsChannel)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopping", game.EventsChannel)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				h.relayEvents(msg.Payload)
			}
		}
	}()
}

func (h *Hub) relayEvents(payload string) {
	var batch game.EventBatch
	if err := json.Unmarshal([]byte(payload), &batch); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return
	}
	if batch.Origin == h.manager.Origin() || len(batch.Events) == 0 {
		return
	}
	if h.ClientCount(batch.TableID) == 0 {
		return
	}

	data, err := json.Marshal(EventsMessage{Type: "events", TableID: batch.TableID, Events: batch.Events})
	if err != nil {
		log.Printf("[WS] Error marshaling events for table %s: %v", batch.TableID, err)
		return
	}
	h.BroadcastToTable(batch.TableID, data)
}
