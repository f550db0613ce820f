// Package fs provides file system adapters for walking and hashing files.
package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ocx-dev/ocx/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes sha-256 content hashes for installed components.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashFile returns the hex-encoded sha-256 of a file's content.
func (h *Hasher) HashFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := sha256.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// HashComponent returns the sha-256 over the concatenated, path-sorted file
// contents under root, along with the per-file hashes. Paths are separated by
// a NUL byte so moving bytes between files cannot produce the same digest.
func (h *Hasher) HashComponent(root string, paths []string) (string, map[string]string, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	digest := sha256.New()
	perFile := make(map[string]string, len(sorted))

	for _, rel := range sorted {
		path := filepath.Join(root, rel)

		f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
		if err != nil {
			return "", nil, zerr.With(zerr.Wrap(err, "failed to open installed file"), "path", rel)
		}

		fileDigest := sha256.New()
		_, _ = digest.Write([]byte(rel))
		_, _ = digest.Write([]byte{0})
		if _, err := io.Copy(io.MultiWriter(digest, fileDigest), f); err != nil {
			_ = f.Close()
			return "", nil, zerr.With(zerr.Wrap(err, "failed to hash installed file"), "path", rel)
		}
		_ = f.Close()
		_, _ = digest.Write([]byte{0})

		perFile[rel] = hex.EncodeToString(fileDigest.Sum(nil))
	}

	return hex.EncodeToString(digest.Sum(nil)), perFile, nil
}
