package operations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/c0de128/mealmate-backup/internal/history"
)

// Cleanup deletes artifacts whose modification time has fallen out of the
// retention window and independently prunes ledger entries older than the
// same cutoff. The two prunes are deliberately not transactional; a
// mismatch between disk and ledger lasts at most until the next pass.
// Per-file failures are logged and skipped, never propagated.
func (m *Manager) Cleanup(ctx context.Context) error {
	cfg := m.cfg.Load()
	cutoff := m.now().AddDate(0, 0, -cfg.Backup.RetentionDays)

	entries, err := os.ReadDir(cfg.Backup.Directory)
	if err != nil {
		return fmt.Errorf("read backup directory %q: %w", cfg.Backup.Directory, err)
	}

	removed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() || entry.Name() == history.ManifestFilename {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			m.log.Warn("retention stat failed", "file", entry.Name(), "error", err.Error())
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(cfg.Backup.Directory, entry.Name())
		if err := os.Remove(path); err != nil {
			m.log.Warn("retention delete failed", "file", entry.Name(), "error", err.Error())
			continue
		}
		removed++
		m.log.Info("retention removed artifact", "file", entry.Name())
	}

	if pruned := m.history.PruneOlderThan(cutoff); pruned > 0 || removed > 0 {
		m.log.Info("retention cleanup finished",
			"files_removed", removed,
			"records_pruned", pruned,
			"retention_days", cfg.Backup.RetentionDays,
		)
	}
	return nil
}
