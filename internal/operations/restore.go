package operations

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/c0de128/mealmate-backup/internal/database"
)

// RestoreBackup reverses exactly the transformations recorded in the
// artifact's extension chain, then feeds the plain dump to the restore
// utility. targetDB defaults to the database named in the connection
// string. There is no partial-success model: any stage failure
// propagates, and intermediates live in a per-restore temp directory
// removed on every exit path.
func (m *Manager) RestoreBackup(ctx context.Context, backupPath, targetDB string) error {
	cfg := m.cfg.Load()

	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("%w: backup file %q: %v", database.ErrRestoreFailed, backupPath, err)
	}

	work := backupPath
	staged := strings.HasSuffix(work, EncryptedSuffix) || strings.HasSuffix(work, CompressedSuffix)
	if staged {
		tmpDir, err := os.MkdirTemp("", "mealmate-restore-*")
		if err != nil {
			return fmt.Errorf("%w: temp dir: %v", database.ErrRestoreFailed, err)
		}
		defer os.RemoveAll(tmpDir)

		// Stage reversal works on a copy so the stored artifact is never
		// touched.
		work = filepath.Join(tmpDir, filepath.Base(backupPath))
		if err := copyFile(backupPath, work); err != nil {
			return fmt.Errorf("%w: stage artifact: %v", database.ErrRestoreFailed, err)
		}
	}

	if strings.HasSuffix(work, EncryptedSuffix) {
		pass, err := m.passphrase(ctx, cfg)
		if err != nil {
			return err
		}
		decrypted, err := DecryptFile(work, pass)
		if err != nil {
			return err
		}
		work = decrypted
	}

	if strings.HasSuffix(work, CompressedSuffix) {
		decompressed, err := DecompressGzip(work)
		if err != nil {
			return err
		}
		work = decompressed
	}

	if err := m.db.Restore(ctx, work, targetDB); err != nil {
		return err
	}

	m.log.Info("restore completed",
		"source", filepath.Base(backupPath),
		"database", targetDB,
	)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
