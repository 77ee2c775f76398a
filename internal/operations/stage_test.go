package operations

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeArtifact(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("mealmate dump bytes "), 500)
	path := writeArtifact(t, "snapshot.dump", data)

	compressed, err := CompressGzip(path)
	if err != nil {
		t.Fatalf("CompressGzip returned error: %v", err)
	}
	if compressed != path+CompressedSuffix {
		t.Errorf("compressed path = %q, want %q", compressed, path+CompressedSuffix)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("uncompressed intermediate still exists")
	}

	decompressed, err := DecompressGzip(compressed)
	if err != nil {
		t.Fatalf("DecompressGzip returned error: %v", err)
	}
	got, err := os.ReadFile(decompressed)
	if err != nil {
		t.Fatalf("read decompressed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip lost data: %d bytes, want %d", len(got), len(data))
	}
}

func TestDecompressRejectsWrongSuffix(t *testing.T) {
	path := writeArtifact(t, "snapshot.dump", []byte("x"))
	if _, err := DecompressGzip(path); !errors.Is(err, ErrCompressionFailed) {
		t.Fatalf("DecompressGzip error = %v, want ErrCompressionFailed", err)
	}
}

func TestEncryptRoundTrip(t *testing.T) {
	data := []byte("snapshot of the recipe tables")
	path := writeArtifact(t, "snapshot.dump", data)

	encrypted, err := EncryptFile(path, "correct horse")
	if err != nil {
		t.Fatalf("EncryptFile returned error: %v", err)
	}
	if encrypted != path+EncryptedSuffix {
		t.Errorf("encrypted path = %q, want %q", encrypted, path+EncryptedSuffix)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("plaintext intermediate still exists")
	}
	ciphertext, err := os.ReadFile(encrypted)
	if err != nil {
		t.Fatalf("read ciphertext: %v", err)
	}
	if bytes.Contains(ciphertext, data) {
		t.Fatalf("ciphertext contains plaintext")
	}

	decrypted, err := DecryptFile(encrypted, "correct horse")
	if err != nil {
		t.Fatalf("DecryptFile returned error: %v", err)
	}
	got, err := os.ReadFile(decrypted)
	if err != nil {
		t.Fatalf("read decrypted: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip lost data: %q, want %q", got, data)
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	data := []byte("identical bytes")
	first := writeArtifact(t, "a.dump", data)
	second := writeArtifact(t, "b.dump", data)

	encFirst, err := EncryptFile(first, "pass")
	if err != nil {
		t.Fatalf("EncryptFile returned error: %v", err)
	}
	encSecond, err := EncryptFile(second, "pass")
	if err != nil {
		t.Fatalf("EncryptFile returned error: %v", err)
	}

	a, _ := os.ReadFile(encFirst)
	b, _ := os.ReadFile(encSecond)
	if bytes.Equal(a, b) {
		t.Fatalf("two encryptions of identical input produced identical output")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	path := writeArtifact(t, "snapshot.dump", []byte("secret"))
	encrypted, err := EncryptFile(path, "right")
	if err != nil {
		t.Fatalf("EncryptFile returned error: %v", err)
	}
	if _, err := DecryptFile(encrypted, "wrong"); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("DecryptFile error = %v, want ErrDecryptionFailed", err)
	}
}

func TestEncryptEmptyPassphrase(t *testing.T) {
	path := writeArtifact(t, "snapshot.dump", []byte("x"))
	if _, err := EncryptFile(path, ""); !errors.Is(err, ErrMissingEncryptionKey) {
		t.Fatalf("EncryptFile error = %v, want ErrMissingEncryptionKey", err)
	}
	if _, err := DecryptFile(path+EncryptedSuffix, ""); !errors.Is(err, ErrMissingEncryptionKey) {
		t.Fatalf("DecryptFile error = %v, want ErrMissingEncryptionKey", err)
	}
}

func TestChecksumFile(t *testing.T) {
	data := []byte("checksum me")
	path := writeArtifact(t, "snapshot.dump", data)

	got, err := ChecksumFile(path)
	if err != nil {
		t.Fatalf("ChecksumFile returned error: %v", err)
	}
	want := fmt.Sprintf("%x", sha256.Sum256(data))
	if got != want {
		t.Fatalf("checksum = %s, want %s", got, want)
	}
}
