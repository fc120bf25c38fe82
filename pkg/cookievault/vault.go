// Package cookievault keeps the yt-dlp cookie file encrypted at rest and
// hands the executor a short-lived plaintext copy for each run.
package cookievault

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// magic starts every sealed file: "MFCV", format version, cipher id.
var magic = []byte("MFCV")

const formatVersion = 1

// ErrNoKey is returned when a sealed file is opened by a vault without a key.
var ErrNoKey = errors.New("cookievault: cookie file is sealed but no key is configured")

// Vault seals and opens cookie files. A Vault without a cipher passes plain
// files through.
type Vault struct {
	cipher *Cipher
}

// New returns a vault using c; c may be nil.
func New(c *Cipher) *Vault {
	return &Vault{cipher: c}
}

// NewFromHex builds a vault from a hex-encoded key. An empty key gives a
// pass-through vault.
func NewFromHex(t CipherType, keyHex string) (*Vault, error) {
	if keyHex == "" {
		return New(nil), nil
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid cookie key (must be %d-char hex): %w", KeySize*2, err)
	}
	c, err := NewCipher(t, key)
	if err != nil {
		return nil, err
	}
	return New(c), nil
}

func header(id byte) []byte {
	return append(append([]byte(nil), magic...), formatVersion, id)
}

// IsSealed reports whether data carries the sealed-file header.
func IsSealed(data []byte) bool {
	return len(data) >= len(magic)+2 && bytes.HasPrefix(data, magic)
}

// Seal encrypts a Netscape cookie file body.
func (v *Vault) Seal(plaintext []byte) ([]byte, error) {
	if v.cipher == nil {
		return nil, ErrNoKey
	}
	h := header(cipherIDs[v.cipher.Type()])
	body, err := v.cipher.seal(plaintext, h)
	if err != nil {
		return nil, err
	}
	return append(h, body...), nil
}

// Open returns the plaintext of data. Unsealed data is returned unchanged.
func (v *Vault) Open(data []byte) ([]byte, error) {
	if !IsSealed(data) {
		return data, nil
	}
	if v.cipher == nil {
		return nil, ErrNoKey
	}

	h := data[:len(magic)+2]
	if h[len(magic)] != formatVersion {
		return nil, fmt.Errorf("cookievault: unsupported format version %d", h[len(magic)])
	}
	if h[len(magic)+1] != cipherIDs[v.cipher.Type()] {
		return nil, fmt.Errorf("cookievault: file was sealed with a different cipher than %s", v.cipher.Type())
	}
	return v.cipher.open(data[len(h):], h)
}

// SealFile encrypts src into dst with 0600 permissions.
func (v *Vault) SealFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read cookies: %w", err)
	}
	if IsSealed(data) {
		return fmt.Errorf("cookievault: %s is already sealed", src)
	}
	sealed, err := v.Seal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, sealed, 0o600)
}

// Materialize returns a path yt-dlp can read for the cookie file at path,
// and a cleanup func the caller runs once the process exits. Plain files are
// used in place; sealed files are decrypted to a private temp file.
func (v *Vault) Materialize(path string) (string, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", func() {}, fmt.Errorf("read cookies: %w", err)
	}
	if !IsSealed(data) {
		return path, func() {}, nil
	}

	plaintext, err := v.Open(data)
	if err != nil {
		return "", func() {}, err
	}

	f, err := os.CreateTemp("", "mediafetch-cookies-*.txt")
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp cookies file: %w", err)
	}
	tmp := f.Name()
	cleanup := func() {
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			slog.Warn("cookievault: failed to remove temp cookies file", "path", tmp, "error", err)
		}
	}

	if _, err := f.Write(plaintext); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write temp cookies file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close temp cookies file: %w", err)
	}
	return tmp, cleanup, nil
}
