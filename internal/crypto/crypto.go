// Package crypto implements the symmetric cipher used for premium secrets
// at rest. Tokens are AES-256-CBC with a fresh random IV per value, encoded
// as hex(iv) + ":" + hex(ciphertext).
//
// CBC carries no integrity check: a truncated or bit-flipped ciphertext can
// decrypt to garbage without an error. Known weakness, kept because stored
// tokens must stay readable across versions.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const keySize = 32

var (
	ErrBadToken = errors.New("malformed secret token")
	ErrBadKey   = errors.New("aes key must be 32 bytes hex encoded")
)

type Cipher struct {
	key []byte
}

// NewCipher builds a cipher from a hex-encoded 32-byte key.
func NewCipher(keyHex string) (*Cipher, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrBadKey, len(key))
	}
	return &Cipher{key: key}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pad([]byte(plaintext))
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct), nil
}

func (c *Cipher) Decrypt(token string) (string, error) {
	ivHex, ctHex, ok := strings.Cut(token, ":")
	if !ok {
		return "", fmt.Errorf("%w: missing delimiter", ErrBadToken)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", fmt.Errorf("%w: iv not hex", ErrBadToken)
	}
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: iv length %d", ErrBadToken, len(iv))
	}

	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext not hex", ErrBadToken)
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d", ErrBadToken, len(ct))
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}

	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)

	pt, err = unpad(pt)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// PKCS#7
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext block", ErrBadToken)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("%w: bad padding", ErrBadToken)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrBadToken)
		}
	}
	return b[:len(b)-n], nil
}
