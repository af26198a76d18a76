package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrBlobNotFound is returned when an address does not resolve to a stored blob.
var ErrBlobNotFound = errors.New("blob not found")

// Blob is a stored binary payload together with its MIME type.
type Blob struct {
	Data     []byte
	MimeType string
}

var extensionByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// LocalStorage persists blobs on disk under a base directory using
// content-addressed names: <sha256[:2]>/<sha256><ext>.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Put stores data and returns its address. Identical content maps to the
// same address and is written once; blobs are never removed, so an address
// shared by several records stays valid.
func (s *LocalStorage) Put(data []byte, mimeType string) (string, error) {
	ext, ok := extensionByMime[strings.ToLower(mimeType)]
	if !ok {
		return "", fmt.Errorf("unsupported blob type %q", mimeType)
	}
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	address := filepath.ToSlash(filepath.Join(digest[:2], digest+ext))

	path := s.resolve(address)
	if _, err := os.Stat(path); err == nil {
		return address, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare blob directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return "", fmt.Errorf("write blob file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("commit blob file: %w", err)
	}
	return address, nil
}

// Get loads a blob by address.
func (s *LocalStorage) Get(address string) (*Blob, error) {
	if !validAddress(address) {
		return nil, ErrBlobNotFound
	}
	data, err := os.ReadFile(s.resolve(address))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read blob file: %w", err)
	}
	return &Blob{Data: data, MimeType: mimeByExtension[strings.ToLower(filepath.Ext(address))]}, nil
}

func (s *LocalStorage) resolve(address string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(address))
}

func validAddress(address string) bool {
	if address == "" || filepath.IsAbs(address) || strings.Contains(address, "..") {
		return false
	}
	_, ok := mimeByExtension[strings.ToLower(filepath.Ext(address))]
	return ok
}
