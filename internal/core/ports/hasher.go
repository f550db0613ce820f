package ports

// Hasher computes the content hashes recorded in lock entries. The component
// hash is always computed from bytes on disk, never from a registry's claimed
// hash, so local integrity checks are self-consistent.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashFile returns the sha-256 of one file's content, hex encoded.
	HashFile(path string) (string, error)

	// HashComponent returns the sha-256 over the concatenated, path-sorted
	// contents of the given files under root, plus the per-file hashes.
	HashComponent(root string, paths []string) (content string, perFile map[string]string, err error)
}
