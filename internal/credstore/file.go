package credstore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

// File is a Store persisted to disk, sealed with a key derived from a
// user-supplied secret. Tokens are never written in the clear.
type File struct {
	mu     sync.Mutex
	path   string
	secret []byte
}

type filePayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// NewFile creates a file-backed store at path. The file is created lazily on
// the first Save.
func NewFile(path, secret string) (*File, error) {
	if path == "" {
		return nil, errors.New("credstore: path is required")
	}
	if secret == "" {
		return nil, errors.New("credstore: secret is required")
	}
	return &File{path: path, secret: []byte(secret)}, nil
}

// Tokens reads and unseals the stored pair. A missing or unreadable file
// yields an empty pair: the caller simply has no session.
func (f *File) Tokens() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return "", ""
	}
	if len(raw) < saltSize+nonceSize {
		return "", ""
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[saltSize:saltSize+nonceSize])

	key, err := f.deriveKey(raw[:saltSize])
	if err != nil {
		return "", ""
	}

	plain, ok := secretbox.Open(nil, raw[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return "", ""
	}

	var p filePayload
	if err := json.Unmarshal(plain, &p); err != nil {
		return "", ""
	}
	return p.AccessToken, p.RefreshToken
}

// Save seals the pair and writes it with a rename so a crash never leaves a
// partially written file.
func (f *File) Save(access, refresh string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	plain, err := json.Marshal(filePayload{AccessToken: access, RefreshToken: refresh})
	if err != nil {
		return err
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("credstore: salt: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("credstore: nonce: %w", err)
	}

	key, err := f.deriveKey(salt)
	if err != nil {
		return err
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plain)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, plain, &nonce, key)

	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Clear removes the file. Idempotent.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *File) deriveKey(salt []byte) (*[keySize]byte, error) {
	raw, err := scrypt.Key(f.secret, salt, 1<<15, 8, 1, keySize)
	if err != nil {
		return nil, fmt.Errorf("credstore: derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}
