package operations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/c0de128/mealmate-backup/internal/config"
	"github.com/c0de128/mealmate-backup/internal/history"
)

// artifactPrefix names every artifact this service produces. The extension
// chain appended to it (.dump[.gz][.enc]) records which stages ran and is
// what RestoreBackup reverses.
const (
	artifactPrefix     = "mealmate_backup"
	artifactTimeFormat = "2006-01-02_15-04-05"
	DumpSuffix         = ".dump"
)

// CreateBackup runs the full pipeline: dump, optional compression,
// optional encryption, checksum, best-effort remote upload, ledger append,
// retention cleanup. It never returns a partially-populated success
// record; any stage failure before the checksum yields a failed record
// with size 0 and the error populated. A second call while one is in
// flight fails fast with ErrBackupInProgress and appends nothing.
func (m *Manager) CreateBackup(ctx context.Context) (*history.Record, error) {
	if !m.running.CompareAndSwap(false, true) {
		return nil, ErrBackupInProgress
	}
	defer m.running.Store(false)

	cfg := m.cfg.Load()
	start := m.now()
	rec := history.Record{
		ID:        uuid.NewString(),
		Timestamp: start,
		Status:    history.StatusFailed,
	}

	fail := func(err error) (*history.Record, error) {
		rec.DurationMS = m.now().Sub(start).Milliseconds()
		rec.SizeBytes = 0
		rec.Error = err.Error()
		m.appendRecord(&rec)
		m.log.Error("backup failed", "id", rec.ID, "error", err.Error())
		return &rec, err
	}

	// Dump
	dumpPath := filepath.Join(
		cfg.Backup.Directory,
		fmt.Sprintf("%s_%s%s", artifactPrefix, start.Format(artifactTimeFormat), DumpSuffix),
	)
	if err := m.db.Dump(ctx, dumpPath); err != nil {
		return fail(err)
	}
	artifact := dumpPath

	// Compression
	if cfg.Backup.Compression {
		compressed, err := CompressGzip(artifact)
		if err != nil {
			return fail(err)
		}
		artifact = compressed
		rec.Compressed = true
	}

	// Encryption
	if cfg.Backup.Encryption.Enabled {
		pass, err := m.passphrase(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		encrypted, err := EncryptFile(artifact, pass)
		if err != nil {
			return fail(err)
		}
		artifact = encrypted
		rec.Encrypted = true
	}

	// Checksum of the final artifact, whichever stages ran
	sum, err := ChecksumFile(artifact)
	if err != nil {
		return fail(err)
	}
	rec.Checksum = sum
	rec.FilePath = artifact
	rec.Filename = filepath.Base(artifact)
	if info, err := os.Stat(artifact); err == nil {
		rec.SizeBytes = info.Size()
	}

	// Remote upload is best-effort: its outcome lands in the record, never
	// in the run status.
	if cfg.Backup.RemoteUpload.Enabled {
		rec.RemoteUpload = m.uploadArtifact(ctx, cfg, artifact)
	}

	rec.Status = history.StatusSuccess
	rec.DurationMS = m.now().Sub(start).Milliseconds()
	m.appendRecord(&rec)

	m.log.Info("backup completed",
		"id", rec.ID,
		"file", rec.Filename,
		"size_bytes", rec.SizeBytes,
		"compressed", rec.Compressed,
		"encrypted", rec.Encrypted,
		"duration_ms", rec.DurationMS,
	)

	if err := m.Cleanup(ctx); err != nil {
		m.log.Warn("retention cleanup failed", "error", err.Error())
	}
	return &rec, nil
}

// uploadArtifact pushes the artifact off-site. Failures are captured in
// the returned outcome and logged, isolating the backup from the remote
// store's availability.
func (m *Manager) uploadArtifact(ctx context.Context, cfg *config.Config, artifact string) *history.RemoteUpload {
	outcome := &history.RemoteUpload{}

	uploader, err := m.newUploader(ctx, cfg.Backup.RemoteUpload)
	if err != nil {
		outcome.Error = err.Error()
		m.log.Warn("remote uploader init failed", "error", err.Error())
		return outcome
	}

	key, err := uploader.Upload(ctx, artifact)
	if err != nil {
		outcome.Error = err.Error()
		m.log.Warn("remote upload failed", "file", filepath.Base(artifact), "error", err.Error())
		return outcome
	}

	outcome.Uploaded = true
	outcome.Key = key
	m.log.Info("remote upload completed", "key", key)
	return outcome
}

func (m *Manager) appendRecord(rec *history.Record) {
	if err := m.history.Append(*rec); err != nil {
		m.log.Warn("history append failed", "id", rec.ID, "error", err.Error())
	}
}
