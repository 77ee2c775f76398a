package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/c0de128/mealmate-backup/internal/logger"
)

// ManifestFilename is the append-only ledger file kept inside the backup
// directory, one JSON record per line. It lets retention and statistics
// survive a process restart.
const ManifestFilename = "manifest.jsonl"

// Status of one backup run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// RemoteUpload captures the outcome of the best-effort off-site push.
// An upload failure never fails the owning backup.
type RemoteUpload struct {
	Uploaded bool   `json:"uploaded"`
	Key      string `json:"key,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Record describes one backup attempt. Records are immutable once appended
// and are owned exclusively by the Store.
type Record struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Filename     string        `json:"filename,omitempty"`
	FilePath     string        `json:"file_path,omitempty"`
	SizeBytes    int64         `json:"size_bytes"`
	Compressed   bool          `json:"compressed"`
	Encrypted    bool          `json:"encrypted"`
	DurationMS   int64         `json:"duration_ms"`
	Checksum     string        `json:"checksum,omitempty"`
	Status       Status        `json:"status"`
	Error        string        `json:"error,omitempty"`
	RemoteUpload *RemoteUpload `json:"remote_upload,omitempty"`
}

// Filter narrows and pages List results. A zero Limit means no limit.
type Filter struct {
	Status Status
	Offset int
	Limit  int
}

// Stats are derived, read-only aggregates over the ledger.
type Stats struct {
	Total           int       `json:"total"`
	Succeeded       int       `json:"succeeded"`
	Failed          int       `json:"failed"`
	TotalSizeBytes  int64     `json:"total_size_bytes"`
	OldestTimestamp time.Time `json:"oldest_timestamp,omitzero"`
	NewestTimestamp time.Time `json:"newest_timestamp,omitzero"`
	MeanDurationMS  int64     `json:"mean_duration_ms"`
}

// Store is the ordered ledger of backup attempts, insertion order =
// chronological. Appends also go to the manifest file when the store is
// backed by a directory.
type Store struct {
	mu      sync.Mutex
	path    string // manifest path, empty for a memory-only store
	records []Record
	log     logger.Logger
}

// NewStore opens (or starts) the ledger for dir, loading any existing
// manifest. Pass an empty dir for a memory-only store.
func NewStore(dir string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Global()
	}
	s := &Store{log: log}
	if dir == "" {
		return s, nil
	}
	s.path = filepath.Join(dir, ManifestFilename)
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open manifest %q: %w", s.path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			// A torn trailing line from a crash is skipped, not fatal.
			s.log.Warn("skipping unreadable manifest line",
				"manifest", s.path,
				"line", line,
				"error", err.Error(),
			)
			continue
		}
		s.records = append(s.records, rec)
	}
	return sc.Err()
}

// Append adds rec to the ledger and writes it to the manifest.
func (s *Store) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if s.path == "" {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open manifest %q: %w", s.path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("append manifest record: %w", err)
	}
	return nil
}

// PruneOlderThan drops every record with a timestamp before cutoff and
// rewrites the manifest. It returns the number of records removed.
func (s *Store) PruneOlderThan(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, rec := range s.records {
		if !rec.Timestamp.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	pruned := len(s.records) - len(kept)
	s.records = kept

	if pruned > 0 && s.path != "" {
		if err := s.rewrite(); err != nil {
			s.log.Warn("manifest rewrite failed", "manifest", s.path, "error", err.Error())
		}
	}
	return pruned
}

// rewrite replaces the manifest with the current records via a temp file
// rename. Caller holds the lock.
func (s *Store) rewrite() error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	for _, rec := range s.records {
		if err := enc.Encode(rec); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}

// List returns the records matching filter, oldest first.
func (s *Store) List(filter Filter) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		matched = append(matched, rec)
	}

	if filter.Offset >= len(matched) {
		return []Record{}
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched
}

// Len reports the number of records in the ledger.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Stats computes aggregates over the whole ledger. Size totals count
// successful runs only; the mean duration covers every attempt.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	var totalDuration int64
	for _, rec := range s.records {
		st.Total++
		totalDuration += rec.DurationMS
		switch rec.Status {
		case StatusSuccess:
			st.Succeeded++
			st.TotalSizeBytes += rec.SizeBytes
		case StatusFailed:
			st.Failed++
		}
		if st.OldestTimestamp.IsZero() || rec.Timestamp.Before(st.OldestTimestamp) {
			st.OldestTimestamp = rec.Timestamp
		}
		if rec.Timestamp.After(st.NewestTimestamp) {
			st.NewestTimestamp = rec.Timestamp
		}
	}
	if st.Total > 0 {
		st.MeanDurationMS = totalDuration / int64(st.Total)
	}
	return st
}
