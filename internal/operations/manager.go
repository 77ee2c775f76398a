package operations

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/c0de128/mealmate-backup/internal/config"
	"github.com/c0de128/mealmate-backup/internal/database"
	"github.com/c0de128/mealmate-backup/internal/history"
	"github.com/c0de128/mealmate-backup/internal/logger"
	"github.com/c0de128/mealmate-backup/internal/upload"
	"github.com/c0de128/mealmate-backup/internal/vault"
)

// KeySource resolves the encryption passphrase from an external secret
// store. Satisfied by *vault.Client.
type KeySource interface {
	GetPassphrase(ctx context.Context, kvPath string) (string, error)
}

// UploaderFactory builds an uploader for one run from the current remote
// target coordinates. Built per run so a config update takes effect
// without restarting.
type UploaderFactory func(ctx context.Context, cfg config.RemoteUploadConfig) (upload.Uploader, error)

// Manager owns the backup and restore pipelines, the run guard, the
// history ledger, and retention.
type Manager struct {
	cfg     atomic.Pointer[config.Config]
	db      database.Database
	history *history.Store
	log     logger.Logger

	// running is the single-flight guard. Entered with CompareAndSwap so
	// two near-simultaneous callers can never both start a pipeline.
	running atomic.Bool

	keys        KeySource
	newUploader UploaderFactory
	now         func() time.Time
}

// Option overrides a Manager collaborator.
type Option func(*Manager)

// WithKeySource wires a secret store for vault-sourced passphrases.
func WithKeySource(ks KeySource) Option {
	return func(m *Manager) { m.keys = ks }
}

// WithUploaderFactory overrides how per-run uploaders are built.
func WithUploaderFactory(f UploaderFactory) Option {
	return func(m *Manager) { m.newUploader = f }
}

// WithClock overrides the time source. Used by retention tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager wires a Manager from an already-normalized config.
func NewManager(
	cfg *config.Config,
	db database.Database,
	hist *history.Store,
	log logger.Logger,
	opts ...Option,
) *Manager {
	if log == nil {
		log = logger.Global()
	}
	m := &Manager{
		db:      db,
		history: hist,
		log:     log,
		now:     time.Now,
		newUploader: func(ctx context.Context, ru config.RemoteUploadConfig) (upload.Uploader, error) {
			return upload.NewS3Uploader(ctx, ru)
		},
	}
	m.cfg.Store(cfg)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerFromFile loads and validates the YAML config at configPath and
// wires the Postgres engine, the persisted ledger, and, when configured,
// the Vault passphrase source.
func NewManagerFromFile(ctx context.Context, configPath string) (*Manager, error) {
	var cfg config.Config
	if err := cfg.Load(configPath); err != nil {
		return nil, err
	}

	log := logger.Global()

	db, err := database.NewPostgres(cfg.DatabaseURL,
		database.WithPostgresTimeout(cfg.Backup.CommandTimeout),
		database.WithPostgresLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize postgres engine: %w", err)
	}

	hist, err := history.NewStore(cfg.Backup.Directory, log)
	if err != nil {
		return nil, fmt.Errorf("open history ledger: %w", err)
	}

	var opts []Option
	if cfg.Backup.Encryption.KeySource == config.KeySourceVault {
		vaultClient, err := vault.NewClient(ctx,
			vault.WithAddress(cfg.Vault.Address),
			vault.WithAppRole(cfg.Vault.RoleID, cfg.Vault.RoleName),
		)
		if err != nil {
			return nil, fmt.Errorf("vault client init: %w", err)
		}
		opts = append(opts, WithKeySource(vaultClient))
	}

	return NewManager(&cfg, db, hist, log, opts...), nil
}

// Config returns the current immutable config snapshot.
func (m *Manager) Config() *config.Config {
	return m.cfg.Load()
}

// UpdateConfig decodes partial overrides over a copy of the current
// config, validates the result, and swaps it in wholesale.
func (m *Manager) UpdateConfig(partial map[string]any) error {
	next, err := m.cfg.Load().Overlay(partial)
	if err != nil {
		return err
	}
	m.cfg.Store(&next)
	m.log.Info("configuration updated",
		"retention_days", next.Backup.RetentionDays,
		"compression", next.Backup.Compression,
		"encryption", next.Backup.Encryption.Enabled,
		"remote_upload", next.Backup.RemoteUpload.Enabled,
	)
	return nil
}

// IsBackupRunning reports whether a pipeline is currently in flight.
func (m *Manager) IsBackupRunning() bool {
	return m.running.Load()
}

// GetHistory returns ledger records matching the filter, oldest first.
func (m *Manager) GetHistory(filter history.Filter) []history.Record {
	return m.history.List(filter)
}

// GetStats returns aggregate statistics over the ledger.
func (m *Manager) GetStats() history.Stats {
	return m.history.Stats()
}

// passphrase resolves the encryption passphrase for the current config,
// lazily: an enabled-but-keyless config fails here, at first use.
func (m *Manager) passphrase(ctx context.Context, cfg *config.Config) (string, error) {
	enc := cfg.Backup.Encryption
	if enc.KeySource == config.KeySourceVault {
		if m.keys == nil {
			return "", ErrMissingEncryptionKey
		}
		pass, err := m.keys.GetPassphrase(ctx, enc.VaultKVPath)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMissingEncryptionKey, err)
		}
		return pass, nil
	}
	if enc.Key == "" {
		return "", ErrMissingEncryptionKey
	}
	return enc.Key, nil
}
