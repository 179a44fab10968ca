package storage

import "fmt"

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open creates a store for the named backend. path is the directory for
// the file backend and the database path for sqlite; it is ignored for
// memory.
func Open(backend, path string) (KV, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
