package database

import (
	"context"
	"errors"
)

var (
	ErrTimeout       = errors.New("operation timed out")
	ErrDumpFailed    = errors.New("dump failed")
	ErrRestoreFailed = errors.New("restore failed")
)

// Database is the capability boundary around an external dump/restore
// utility. Dump produces a snapshot artifact at outputPath; Restore
// consumes one into targetDB (the connection's own database when empty).
type Database interface {
	GetName() string
	GetEngine() string
	Dump(ctx context.Context, outputPath string) error
	Restore(ctx context.Context, dumpPath, targetDB string) error
}
