package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c0de128/mealmate-backup/internal/logger"
)

func record(id string, ts time.Time, status Status, size int64) Record {
	return Record{
		ID:         id,
		Timestamp:  ts,
		Filename:   id + ".dump",
		SizeBytes:  size,
		DurationMS: 100,
		Status:     status,
	}
}

func TestAppendAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, logger.Nop())
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	recs := []Record{
		record("a", now.Add(-2*time.Hour), StatusSuccess, 100),
		record("b", now.Add(-time.Hour), StatusFailed, 0),
		record("c", now, StatusSuccess, 300),
	}
	for _, rec := range recs {
		if err := store.Append(rec); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	// A fresh store over the same directory sees the same ledger.
	reloaded, err := NewStore(dir, logger.Nop())
	if err != nil {
		t.Fatalf("NewStore (reload) returned error: %v", err)
	}
	got := reloaded.List(Filter{})
	if len(got) != 3 {
		t.Fatalf("reloaded %d records, want 3", len(got))
	}
	for i, rec := range got {
		if rec.ID != recs[i].ID || rec.Status != recs[i].Status {
			t.Errorf("record %d = %+v, want %+v", i, rec, recs[i])
		}
		if !rec.Timestamp.Equal(recs[i].Timestamp) {
			t.Errorf("record %d timestamp = %v, want %v", i, rec.Timestamp, recs[i].Timestamp)
		}
	}
}

func TestLoadSkipsTornLine(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, ManifestFilename)
	content := `{"id":"a","timestamp":"2026-01-02T03:04:05Z","status":"success"}
{"id":"b","timest`
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	store, err := NewStore(dir, logger.Nop())
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("loaded %d records, want 1 (torn line skipped)", store.Len())
	}
}

func TestPruneOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, logger.Nop())
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	now := time.Now()
	store.Append(record("old", now.Add(-72*time.Hour), StatusSuccess, 100))
	store.Append(record("new", now, StatusSuccess, 200))

	if pruned := store.PruneOlderThan(now.Add(-24 * time.Hour)); pruned != 1 {
		t.Fatalf("pruned %d records, want 1", pruned)
	}
	got := store.List(Filter{})
	if len(got) != 1 || got[0].ID != "new" {
		t.Fatalf("remaining records = %+v, want only \"new\"", got)
	}

	// Prune is persisted through the manifest rewrite.
	reloaded, err := NewStore(dir, logger.Nop())
	if err != nil {
		t.Fatalf("NewStore (reload) returned error: %v", err)
	}
	if reloaded.Len() != 1 {
		t.Fatalf("reloaded %d records after prune, want 1", reloaded.Len())
	}

	// Nothing new since the last pass: second prune is a no-op.
	if pruned := store.PruneOlderThan(now.Add(-24 * time.Hour)); pruned != 0 {
		t.Fatalf("second prune removed %d records, want 0", pruned)
	}
}

func TestListFilterAndPagination(t *testing.T) {
	store, err := NewStore("", logger.Nop())
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	now := time.Now()
	store.Append(record("a", now, StatusSuccess, 1))
	store.Append(record("b", now, StatusFailed, 0))
	store.Append(record("c", now, StatusSuccess, 2))
	store.Append(record("d", now, StatusSuccess, 3))

	succ := store.List(Filter{Status: StatusSuccess})
	if len(succ) != 3 {
		t.Fatalf("success filter returned %d records, want 3", len(succ))
	}

	page := store.List(Filter{Status: StatusSuccess, Offset: 1, Limit: 1})
	if len(page) != 1 || page[0].ID != "c" {
		t.Fatalf("page = %+v, want only \"c\"", page)
	}

	if got := store.List(Filter{Offset: 10}); len(got) != 0 {
		t.Fatalf("out-of-range offset returned %d records, want 0", len(got))
	}
}

func TestStats(t *testing.T) {
	store, err := NewStore("", logger.Nop())
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	if st := store.Stats(); st.Total != 0 || st.MeanDurationMS != 0 {
		t.Fatalf("empty stats = %+v, want zeroes", st)
	}

	oldest := time.Now().Add(-time.Hour)
	newest := time.Now()
	store.Append(Record{ID: "a", Timestamp: oldest, Status: StatusSuccess, SizeBytes: 100, DurationMS: 50})
	store.Append(Record{ID: "b", Timestamp: newest, Status: StatusFailed, SizeBytes: 0, DurationMS: 150})

	st := store.Stats()
	if st.Total != 2 || st.Succeeded != 1 || st.Failed != 1 {
		t.Errorf("counts = %+v, want total 2, 1 success, 1 failed", st)
	}
	if st.TotalSizeBytes != 100 {
		t.Errorf("total size = %d, want 100 (failed runs excluded)", st.TotalSizeBytes)
	}
	if st.MeanDurationMS != 100 {
		t.Errorf("mean duration = %d, want 100", st.MeanDurationMS)
	}
	if !st.OldestTimestamp.Equal(oldest) || !st.NewestTimestamp.Equal(newest) {
		t.Errorf("timestamps = %v / %v, want %v / %v",
			st.OldestTimestamp, st.NewestTimestamp, oldest, newest)
	}
}
