// Package log holds the append-only world history: per-tick digests and
// the audit trail of committed commands, each as its own zstd-framed
// JSONL stream so external tooling can tail or prune them independently.
package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"tilemark.dev/internal/sim/world"
)

// stream is one rotating JSONL sink. Files rotate on UTC-hour
// boundaries, named <prefix>-<yyyymmddhh>.jsonl.zst; every line is
// flushed through the encoder so a crash loses at most the zstd frame
// in flight.
type stream struct {
	dir    string
	prefix string

	mu  sync.Mutex
	key string
	f   *os.File
	enc *zstd.Encoder
	buf *bufio.Writer
}

func openStream(dir, prefix string) *stream {
	return &stream{dir: dir, prefix: prefix}
}

func (s *stream) append(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if key := time.Now().UTC().Format("2006010215"); key != s.key {
		if err := s.rotateLocked(key); err != nil {
			return err
		}
	}
	if _, err := s.buf.Write(b); err != nil {
		return err
	}
	if err := s.buf.WriteByte('\n'); err != nil {
		return err
	}
	return s.buf.Flush()
}

func (s *stream) rotateLocked(key string) error {
	if err := s.finishLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	name := filepath.Join(s.dir, fmt.Sprintf("%s-%s.jsonl.zst", s.prefix, key))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	s.f = f
	s.enc = enc
	s.buf = bufio.NewWriterSize(enc, 128*1024)
	s.key = key
	return nil
}

// finishLocked seals the current file: buffered lines drain into the
// encoder and the zstd frame is terminated so readers see a complete
// stream.
func (s *stream) finishLocked() error {
	var err error
	if s.buf != nil {
		_ = s.buf.Flush()
		s.buf = nil
	}
	if s.enc != nil {
		err = s.enc.Close()
		s.enc = nil
	}
	if s.f != nil {
		_ = s.f.Close()
		s.f = nil
	}
	return err
}

func (s *stream) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishLocked()
}

// TickLogger records one digest entry per simulation tick under
// <worldDir>/ticks.
type TickLogger struct{ s *stream }

func NewTickLogger(worldDir string) *TickLogger {
	return &TickLogger{s: openStream(filepath.Join(worldDir, "ticks"), "ticks")}
}

func (l *TickLogger) WriteTick(e world.TickLogEntry) error { return l.s.append(e) }
func (l *TickLogger) Close() error                         { return l.s.close() }

// auditRecord stamps a per-process sequence number onto each entry so
// gaps in the trail are detectable after the fact.
type auditRecord struct {
	Seq uint64 `json:"seq"`
	world.AuditEntry
}

// AuditLogger records every committed build/clear operation under
// <worldDir>/audit.
type AuditLogger struct {
	s   *stream
	mu  sync.Mutex
	seq uint64
}

func NewAuditLogger(worldDir string) *AuditLogger {
	return &AuditLogger{s: openStream(filepath.Join(worldDir, "audit"), "audit")}
}

func (l *AuditLogger) WriteAudit(e world.AuditEntry) error {
	l.mu.Lock()
	l.seq++
	rec := auditRecord{Seq: l.seq, AuditEntry: e}
	l.mu.Unlock()
	return l.s.append(rec)
}

func (l *AuditLogger) Close() error { return l.s.close() }
