// Package crypto provides password-based encryption for the catalog database file.
//
// Files are encrypted with AES-256-GCM. The on-disk layout is
// salt(16) | nonce(16) | tag(16) | ciphertext, with the key derived via
// PBKDF2-SHA256.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES key size in bytes (AES-256).
	KeySize = 32
	// SaltSize is the PBKDF2 salt size in bytes.
	SaltSize = 16
	// NonceSize is the GCM nonce size in bytes.
	NonceSize = 16
	// TagSize is the GCM authentication tag size in bytes.
	TagSize = 16
	// Iterations is the PBKDF2 iteration count.
	Iterations = 100000
)

// ErrDecryptFailed is returned when decryption fails, either because the
// password is wrong or the file is corrupted or tampered with.
var ErrDecryptFailed = errors.New("failed to decrypt: incorrect password or corrupted file")

// Encrypt encrypts data with the given password.
func Encrypt(data []byte, password string) ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	// Seal appends the tag after the ciphertext; the file layout stores the
	// tag before it, so split and reorder.
	sealed := gcm.Seal(nil, nonce, data, nil)
	ciphertext := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	out := make([]byte, 0, SaltSize+NonceSize+TagSize+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, tag...)
	out = append(out, ciphertext...)
	return out, nil
}

// Decrypt decrypts data with the given password.
func Decrypt(data []byte, password string) ([]byte, error) {
	if len(data) < SaltSize+NonceSize+TagSize {
		return nil, ErrDecryptFailed
	}

	salt := data[:SaltSize]
	nonce := data[SaltSize : SaltSize+NonceSize]
	tag := data[SaltSize+NonceSize : SaltSize+NonceSize+TagSize]
	ciphertext := data[SaltSize+NonceSize+TagSize:]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// EncryptFile encrypts a file in place. A missing file is not an error:
// the encryption setting simply applies once the file exists.
func EncryptFile(path, password string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	encrypted, err := Encrypt(data, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, encrypted, 0o600); err != nil {
		return fmt.Errorf("failed to write encrypted file: %w", err)
	}
	return nil
}

// DecryptFile decrypts a file in place. The file is left untouched when
// decryption fails.
func DecryptFile(path, password string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	plaintext, err := Decrypt(data, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, plaintext, 0o600); err != nil {
		return fmt.Errorf("failed to write decrypted file: %w", err)
	}
	return nil
}

// DecryptToTemp decrypts a file into a temporary file and returns its path.
// A missing source file yields an empty temp file, so a new database can be
// created under encryption. The caller owns the temp file and must remove it.
func DecryptToTemp(path, password string) (string, error) {
	tmp, err := os.CreateTemp("", "csvcatalog-*.db")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			tmp.Close()
			return tmp.Name(), nil
		}
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	plaintext, err := Decrypt(data, password)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}

	if _, err := tmp.Write(plaintext); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return tmp.Name(), nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, Iterations, KeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
