package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"

	"github.com/marketsync/backend/internal/domain/platform"
)

const (
	cipherSaltSize = 16

	// scrypt parameters per the package recommendation for interactive use
	scryptN = 32768
	scryptR = 8
	scryptP = 1
	keySize = 32
)

// ErrCipherKeyRequired is returned when the cipher is built without a key
var ErrCipherKeyRequired = errors.New("credential cipher key is required")

// AESCredentialCipher seals platform credentials with AES-256-GCM. The key
// is derived from the configured secret with scrypt using a fresh salt per
// seal, so two blobs of the same credentials never match.
type AESCredentialCipher struct {
	secret []byte
}

// NewAESCredentialCipher creates a cipher from the configured secret
func NewAESCredentialCipher(secret string) (*AESCredentialCipher, error) {
	if secret == "" {
		return nil, ErrCipherKeyRequired
	}
	return &AESCredentialCipher{secret: []byte(secret)}, nil
}

// Seal encrypts credentials into an opaque blob: salt || nonce || ciphertext
func (c *AESCredentialCipher) Seal(creds platform.Credentials) ([]byte, error) {
	plaintext, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}

	salt := make([]byte, cipherSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := c.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	blob := make([]byte, 0, cipherSaltSize+gcm.NonceSize()+len(plaintext)+gcm.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = gcm.Seal(blob, nonce, plaintext, nil)
	return blob, nil
}

// Open decrypts a blob produced by Seal
func (c *AESCredentialCipher) Open(blob []byte) (platform.Credentials, error) {
	if len(blob) <= cipherSaltSize {
		return nil, errors.New("credential blob too short")
	}

	salt := blob[:cipherSaltSize]
	gcm, err := c.aead(salt)
	if err != nil {
		return nil, err
	}

	rest := blob[cipherSaltSize:]
	if len(rest) <= gcm.NonceSize() {
		return nil, errors.New("credential blob too short")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt credentials: %w", err)
	}

	var creds platform.Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("unmarshal credentials: %w", err)
	}
	return creds, nil
}

func (c *AESCredentialCipher) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(c.secret, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Ensure AESCredentialCipher implements CredentialCipher
var _ platform.CredentialCipher = (*AESCredentialCipher)(nil)
