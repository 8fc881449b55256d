package main

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DefaultHistoryDSN keeps match history in memory for the life of the process
const DefaultHistoryDSN = "file:history?mode=memory&cache=shared"

// MatchRecord is one finished match
type MatchRecord struct {
	Map      string        `json:"map"`
	Loser    string        `json:"loser"`
	Players  int           `json:"players"`
	Duration time.Duration `json:"durationNs"`
	EndedAt  time.Time     `json:"endedAt"`
}

// History records finished matches with batched background writes
type History struct {
	conn    *sql.DB
	records chan MatchRecord
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// OpenHistory opens the store and starts its writer
func OpenHistory(dsn string) (*History, error) {
	if dsn == "" {
		dsn = DefaultHistoryDSN
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// one connection keeps a shared in-memory database alive and serialises writes
	conn.SetMaxOpenConns(1)
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	h := &History{
		conn:    conn,
		records: make(chan MatchRecord, 256),
		stop:    make(chan struct{}),
	}
	h.wg.Add(1)
	go h.writer()
	return h, nil
}

func migrate(conn *sql.DB) error {
	_, err := conn.Exec(`
	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		map TEXT NOT NULL,
		loser TEXT NOT NULL DEFAULT '',
		players INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		ended_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_matches_ended ON matches(ended_at);
	`)
	if err != nil {
		return fmt.Errorf("migrate history: %w", err)
	}
	return nil
}

// Record enqueues a match for async persistence (non-blocking, nil-safe)
func (h *History) Record(r MatchRecord) {
	if h == nil {
		return
	}
	select {
	case h.records <- r:
	default:
		// queue full, drop rather than block the game loop
		log.Warn().Str("map", r.Map).Msg("history queue full, dropping match")
	}
}

// Close drains pending records and closes the database
func (h *History) Close() error {
	if h == nil {
		return nil
	}
	h.once.Do(func() { close(h.stop) })
	h.wg.Wait()
	return h.conn.Close()
}

func (h *History) writer() {
	defer h.wg.Done()

	batch := make([]MatchRecord, 0, 16)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case r := <-h.records:
			batch = append(batch, r)
			if len(batch) >= 16 {
				h.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				h.flush(batch)
				batch = batch[:0]
			}
		case <-h.stop:
			for {
				select {
				case r := <-h.records:
					batch = append(batch, r)
				default:
					h.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch in one transaction
func (h *History) flush(records []MatchRecord) {
	if len(records) == 0 {
		return
	}
	tx, err := h.conn.Begin()
	if err != nil {
		log.Error().Err(err).Msg("history: begin tx")
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO matches (map, loser, players, duration_ms, ended_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.Error().Err(err).Msg("history: prepare")
		return
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.Map, r.Loser, r.Players, r.Duration.Milliseconds(), r.EndedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			log.Error().Err(err).Msg("history: insert")
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("history: commit")
	}
}

// Recent returns up to limit matches, newest first
func (h *History) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	if h == nil {
		return nil, nil
	}
	rows, err := h.conn.QueryContext(ctx,
		`SELECT map, loser, players, duration_ms, ended_at FROM matches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]MatchRecord, 0, limit)
	for rows.Next() {
		var (
			r       MatchRecord
			ms      int64
			endedAt string
		)
		if err := rows.Scan(&r.Map, &r.Loser, &r.Players, &ms, &endedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		ended, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, fmt.Errorf("parse ended_at %q: %w", endedAt, err)
		}
		r.EndedAt = ended
		out = append(out, r)
	}
	return out, rows.Err()
}
