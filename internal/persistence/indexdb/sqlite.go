package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"tilemark.dev/internal/sim/world"
)

// SQLiteIndex is a read-model index for one world: committed build and
// clear operations, per-tick digests, and worldgen runs. Writes are
// funneled through a single goroutine so the world loop never blocks on
// the database.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqAudit
	reqWorldgen
	reqFlush
)

type req struct {
	kind reqKind

	tick  world.TickLogEntry
	audit world.AuditEntry
	run   WorldgenRun
	ack   chan struct{}
}

// WorldgenRun summarizes one placement-generator execution.
type WorldgenRun struct {
	WorldID      string
	Seed         int64
	SizeX        int
	SizeY        int
	Transmitters int
	Lighthouses  int
	RecordedAt   string
}

func Open(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	idx := &SQLiteIndex{
		db: db,
		ch: make(chan req, 1024),
	}
	idx.wg.Add(1)
	go idx.writer()
	return idx, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			commands INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			tick INTEGER NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			kind TEXT,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			cost INTEGER NOT NULL,
			reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS audit_tick ON audit(tick)`,
		`CREATE TABLE IF NOT EXISTS worldgen_runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			world_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			size_x INTEGER NOT NULL,
			size_y INTEGER NOT NULL,
			transmitters INTEGER NOT NULL,
			lighthouses INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (x *SQLiteIndex) writer() {
	defer x.wg.Done()
	for r := range x.ch {
		switch r.kind {
		case reqTick:
			_, _ = x.db.Exec(
				`INSERT OR REPLACE INTO ticks (tick, digest, commands) VALUES (?, ?, ?)`,
				r.tick.Tick, r.tick.Digest, len(r.tick.Commands))
		case reqAudit:
			_, _ = x.db.Exec(
				`INSERT INTO audit (tick, actor, action, kind, x, y, cost, reason) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				r.audit.Tick, r.audit.Actor, r.audit.Action, r.audit.Kind,
				r.audit.Pos[0], r.audit.Pos[1], r.audit.Cost, r.audit.Reason)
		case reqWorldgen:
			_, _ = x.db.Exec(
				`INSERT INTO worldgen_runs (world_id, seed, size_x, size_y, transmitters, lighthouses, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.run.WorldID, r.run.Seed, r.run.SizeX, r.run.SizeY,
				r.run.Transmitters, r.run.Lighthouses, r.run.RecordedAt)
		case reqFlush:
			close(r.ack)
		}
	}
}

func (x *SQLiteIndex) enqueue(r req) {
	if x.closed.Load() {
		return
	}
	select {
	case x.ch <- r:
	default:
		// Index writes are best-effort; dropping beats stalling the sim.
	}
}

// WriteTick implements world.TickLogger.
func (x *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	x.enqueue(req{kind: reqTick, tick: entry})
	return nil
}

// WriteAudit implements world.AuditLogger.
func (x *SQLiteIndex) WriteAudit(entry world.AuditEntry) error {
	x.enqueue(req{kind: reqAudit, audit: entry})
	return nil
}

func (x *SQLiteIndex) RecordWorldgen(run WorldgenRun) {
	if run.RecordedAt == "" {
		run.RecordedAt = time.Now().UTC().Format(time.RFC3339)
	}
	x.enqueue(req{kind: reqWorldgen, run: run})
}

// Flush waits until every write enqueued before the call has reached
// the database.
func (x *SQLiteIndex) Flush() {
	if x.closed.Load() {
		return
	}
	ack := make(chan struct{})
	x.ch <- req{kind: reqFlush, ack: ack}
	<-ack
}

func (x *SQLiteIndex) Close() error {
	var err error
	x.once.Do(func() {
		x.closed.Store(true)
		close(x.ch)
		x.wg.Wait()
		err = x.db.Close()
	})
	return err
}

// AuditRow is a readback row for tooling and tests.
type AuditRow struct {
	Seq    int64
	Tick   uint64
	Actor  string
	Action string
	Kind   string
	X, Y   int
	Cost   int64
	Reason string
}

func (x *SQLiteIndex) RecentAudits(limit int) ([]AuditRow, error) {
	rows, err := x.db.Query(
		`SELECT seq, tick, actor, action, COALESCE(kind,''), x, y, cost, COALESCE(reason,'')
		 FROM audit ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditRow
	for rows.Next() {
		var r AuditRow
		if err := rows.Scan(&r.Seq, &r.Tick, &r.Actor, &r.Action, &r.Kind, &r.X, &r.Y, &r.Cost, &r.Reason); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (x *SQLiteIndex) LatestWorldgen(worldID string) (WorldgenRun, bool, error) {
	var run WorldgenRun
	err := x.db.QueryRow(
		`SELECT world_id, seed, size_x, size_y, transmitters, lighthouses, recorded_at
		 FROM worldgen_runs WHERE world_id = ? ORDER BY seq DESC LIMIT 1`, worldID).
		Scan(&run.WorldID, &run.Seed, &run.SizeX, &run.SizeY,
			&run.Transmitters, &run.Lighthouses, &run.RecordedAt)
	if err == sql.ErrNoRows {
		return run, false, nil
	}
	if err != nil {
		return run, false, err
	}
	return run, true, nil
}

func (x *SQLiteIndex) TickDigest(tick uint64) (string, bool, error) {
	var digest string
	err := x.db.QueryRow(`SELECT digest FROM ticks WHERE tick = ?`, tick).Scan(&digest)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return digest, true, nil
}
