package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"tilemark.dev/internal/sim/world"
)

func readJSONL(t *testing.T, dir string) []map[string]any {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("log files = %v (%v)", matches, err)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var out []map[string]any
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad line: %v", err)
		}
		out = append(out, m)
	}
	return out
}

func TestTickLogger_WritesCompressedJSONL(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)

	if err := l.WriteTick(world.TickLogEntry{Tick: 1, Digest: "d1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.WriteTick(world.TickLogEntry{Tick: 2, Digest: "d2"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	lines := readJSONL(t, filepath.Join(dir, "ticks"))
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0]["digest"] != "d1" || lines[1]["tick"] != float64(2) {
		t.Fatalf("lines = %v", lines)
	}
}

func TestAuditLogger_WritesEntries(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)

	err := l.WriteAudit(world.AuditEntry{
		Tick: 9, Actor: "company_1", Action: "BUILD",
		Kind: "STATUE", Pos: [2]int{4, 5}, Cost: 310,
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.WriteAudit(world.AuditEntry{
		Tick: 12, Actor: "company_1", Action: "CLEAR",
		Kind: "STATUE", Pos: [2]int{4, 5}, Cost: 120,
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	lines := readJSONL(t, filepath.Join(dir, "audit"))
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0]["actor"] != "company_1" || lines[0]["kind"] != "STATUE" {
		t.Fatalf("entry = %v", lines[0])
	}
	if lines[0]["seq"] != float64(1) || lines[1]["seq"] != float64(2) {
		t.Fatalf("sequence numbers = %v, %v", lines[0]["seq"], lines[1]["seq"])
	}
}
