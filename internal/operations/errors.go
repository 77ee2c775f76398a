package operations

import "errors"

var (
	// ErrBackupInProgress is returned when a second pipeline is requested
	// while one is still in flight.
	ErrBackupInProgress = errors.New("a backup is already in progress")

	// ErrMissingEncryptionKey means encryption was requested but no
	// passphrase could be resolved. Detected at first use, not at config
	// validation.
	ErrMissingEncryptionKey = errors.New("encryption key is not configured")

	ErrCompressionFailed = errors.New("compression failed")
	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
)
