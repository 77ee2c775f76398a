package operations

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// EncryptedSuffix marks an encrypted artifact in the extension chain.
const EncryptedSuffix = ".enc"

// Key derivation parameters. Changing either breaks decryption of
// existing artifacts.
var (
	hkdfSalt = []byte("mealmate-backup")
	hkdfInfo = []byte("artifact-encryption-v1")
)

// deriveKey stretches the configured passphrase into a 32-byte AES key
// with HKDF-SHA256.
func deriveKey(passphrase string) ([]byte, error) {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(passphrase), hkdfSalt, hkdfInfo)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// EncryptFile encrypts inputPath with AES-256-GCM into inputPath.enc and
// removes the plaintext intermediate. A fresh random nonce is written ahead
// of the ciphertext, so two backups of identical bytes never share output.
func EncryptFile(inputPath, passphrase string) (string, error) {
	if passphrase == "" {
		return "", ErrMissingEncryptionKey
	}
	outputPath := inputPath + EncryptedSuffix

	plaintext, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("%w: read %q: %v", ErrEncryptionFailed, inputPath, err)
	}

	gcm, err := newGCM(passphrase)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: nonce: %v", ErrEncryptionFailed, err)
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	if err := os.WriteFile(outputPath, ciphertext, 0o600); err != nil {
		return "", fmt.Errorf("%w: write %q: %v", ErrEncryptionFailed, outputPath, err)
	}

	if err := os.Remove(inputPath); err != nil {
		return "", fmt.Errorf("%w: remove intermediate %q: %v", ErrEncryptionFailed, inputPath, err)
	}
	return outputPath, nil
}

// DecryptFile reverses EncryptFile, writing the plaintext next to the input
// with the .enc suffix stripped. GCM authentication makes a wrong
// passphrase or a corrupted artifact fail loudly.
func DecryptFile(inputPath, passphrase string) (string, error) {
	if passphrase == "" {
		return "", ErrMissingEncryptionKey
	}
	if !strings.HasSuffix(inputPath, EncryptedSuffix) {
		return "", fmt.Errorf("%w: %q does not end in %s", ErrDecryptionFailed, inputPath, EncryptedSuffix)
	}
	outputPath := strings.TrimSuffix(inputPath, EncryptedSuffix)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("%w: read %q: %v", ErrDecryptionFailed, inputPath, err)
	}

	gcm, err := newGCM(passphrase)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("%w: artifact shorter than nonce", ErrDecryptionFailed)
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	if err := os.WriteFile(outputPath, plaintext, 0o600); err != nil {
		return "", fmt.Errorf("%w: write %q: %v", ErrDecryptionFailed, outputPath, err)
	}
	return outputPath, nil
}

func newGCM(passphrase string) (cipher.AEAD, error) {
	key, err := deriveKey(passphrase)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
