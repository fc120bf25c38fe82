package cookievault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType names the AEAD used to seal a cookie file.
type CipherType string

const (
	CipherChaCha20Poly1305  CipherType = "chacha20-poly1305"
	CipherXChaCha20Poly1305 CipherType = "xchacha20-poly1305"
	CipherAES256GCM         CipherType = "aes-256-gcm"
)

// KeySize is the key length every supported cipher takes.
const KeySize = chacha20poly1305.KeySize

// cipherIDs is the on-disk byte identifying the cipher in a sealed header.
var cipherIDs = map[CipherType]byte{
	CipherChaCha20Poly1305:  1,
	CipherXChaCha20Poly1305: 2,
	CipherAES256GCM:         3,
}

// Cipher wraps an AEAD with its type.
type Cipher struct {
	aead       cipher.AEAD
	cipherType CipherType
}

// NewCipher builds the AEAD for t. key must be KeySize bytes.
func NewCipher(t CipherType, key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size: got %d, want %d", len(key), KeySize)
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch t {
	case CipherChaCha20Poly1305:
		aead, err = chacha20poly1305.New(key)
	case CipherXChaCha20Poly1305:
		aead, err = chacha20poly1305.NewX(key)
	case CipherAES256GCM:
		var block cipher.Block
		if block, err = aes.NewCipher(key); err == nil {
			aead, err = cipher.NewGCM(block)
		}
	default:
		return nil, fmt.Errorf("unsupported cipher %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s cipher: %w", t, err)
	}

	return &Cipher{aead: aead, cipherType: t}, nil
}

// Type returns the cipher type.
func (c *Cipher) Type() CipherType { return c.cipherType }

// seal returns [nonce][ciphertext+tag], authenticating ad.
func (c *Cipher) seal(plaintext, ad []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, ad), nil
}

func (c *Cipher) open(sealed, ad []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(sealed) < n {
		return nil, fmt.Errorf("ciphertext too short: got %d, need at least %d", len(sealed), n)
	}
	plaintext, err := c.aead.Open(nil, sealed[:n], sealed[n:], ad)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
