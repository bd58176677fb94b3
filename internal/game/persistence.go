package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiards/internal/physics"
	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis pub/sub channel carrying every table's event batches.
const EventsChannel = "table_events"

const snapshotTTL = time.Hour

// EventBatch is the message published on EventsChannel.
type EventBatch struct {
	TableID string  `json:"table_id"`
	Origin  string  `json:"origin"`
	Events  []Event `json:"events"`
}

func snapshotKey(tableID string) string {
	return "table:" + tableID + ":state"
}

// Store persists tables to Postgres and Redis. Either backend may be nil, in
// which case the matching calls do nothing.
type Store struct {
	db  *sqlx.DB
	rdb *redis.Client
}

func NewStore(db *sqlx.DB, rdb *redis.Client) *Store {
	return &Store{db: db, rdb: rdb}
}

// CreateTable inserts the table row.
func (s *Store) CreateTable(ctx context.Context, tableID string, style RackStyle, difficulty string) {
	if s == nil || s.db == nil {
		return
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tables (id, rack_style, difficulty, created_at) VALUES ($1,$2,$3,NOW()) ON CONFLICT (id) DO NOTHING`,
		tableID, string(style), difficulty,
	)
	if err != nil {
		log.Printf("[DB] Failed to record table %s: %v", tableID, err)
	}
}

// RecordShot stores an accepted shot.
func (s *Store) RecordShot(ctx context.Context, tableID string, player PlayerID, shotNumber int, dir physics.Vec2) {
	if s == nil || s.db == nil {
		return
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO table_shots (table_id, player_id, shot_number, dir_x, dir_y, created_at) VALUES ($1,$2,$3,$4,$5,NOW())`,
		tableID, string(player), shotNumber, dir.X, dir.Y,
	)
	if err != nil {
		log.Printf("[DB] Failed to record shot %d for table %s: %v", shotNumber, tableID, err)
	}
}

// RecordResult stores the final standing of each human and closes the table.
func (s *Store) RecordResult(ctx context.Context, tableID string, outcome map[PlayerID]Result) {
	if s == nil || s.db == nil {
		return
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Printf("[DB] Failed to begin result tx for table %s: %v", tableID, err)
		return
	}
	defer tx.Rollback()

	for p, r := range outcome {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO table_results (table_id, player_id, result) VALUES ($1,$2,$3) ON CONFLICT (table_id, player_id) DO UPDATE SET result = EXCLUDED.result`,
			tableID, string(p), string(r),
		); err != nil {
			log.Printf("[DB] Failed to record result for %s at table %s: %v", p, tableID, err)
			return
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tables SET finished_at = NOW() WHERE id = $1`, tableID); err != nil {
		log.Printf("[DB] Failed to close table %s: %v", tableID, err)
		return
	}
	if err := tx.Commit(); err != nil {
		log.Printf("[DB] Failed to commit result for table %s: %v", tableID, err)
	}
}

// TableResults loads the recorded outcome of a finished table.
func (s *Store) TableResults(ctx context.Context, tableID string) (map[PlayerID]Result, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var rows []struct {
		PlayerID string `db:"player_id"`
		Result   string `db:"result"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT player_id, result FROM table_results WHERE table_id = $1`, tableID); err != nil {
		return nil, fmt.Errorf("load results for %s: %w", tableID, err)
	}
	out := make(map[PlayerID]Result, len(rows))
	for _, r := range rows {
		out[PlayerID(r.PlayerID)] = Result(r.Result)
	}
	return out, nil
}

// SaveSnapshot stores the latest snapshot of a table for an hour.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.rdb.SetEx(ctx, snapshotKey(snap.TableID), data, snapshotTTL).Err()
}

// LoadSnapshot reads a stored snapshot. It reports false when none exists.
func (s *Store) LoadSnapshot(ctx context.Context, tableID string) (Snapshot, bool, error) {
	var snap Snapshot
	if s == nil || s.rdb == nil {
		return snap, false, nil
	}
	data, err := s.rdb.Get(ctx, snapshotKey(tableID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, fmt.Errorf("get snapshot %s: %w", tableID, err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, false, fmt.Errorf("decode snapshot %s: %w", tableID, err)
	}
	return snap, true, nil
}

// PublishEvents fans a non-empty event batch out to other server processes.
func (s *Store) PublishEvents(ctx context.Context, origin, tableID string, events []Event) error {
	if s == nil || s.rdb == nil || len(events) == 0 {
		return nil
	}
	data, err := json.Marshal(EventBatch{TableID: tableID, Origin: origin, Events: events})
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	return s.rdb.Publish(ctx, EventsChannel, data).Err()
}
