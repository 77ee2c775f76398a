package operations

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// ChecksumFile returns the sha256 hex digest of the file's bytes. The
// digest is recorded at backup time for corruption detection before a
// restore; restore itself does not re-verify it.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("checksum %q: %w", path, err)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("checksum %q: %w", path, err)
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
