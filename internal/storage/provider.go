// Package storage defines the vault file-system abstraction.
package storage

// Entry is one child of a vault directory.
type Entry struct {
	Name  string
	IsDir bool
}

// Provider is the interface for vault file operations. Paths are relative to
// the vault root and use forward slashes; "" is the root itself.
type Provider interface {
	// Root returns the absolute path of the vault directory.
	Root() string
	// Rel converts an absolute path below the root into a vault path.
	Rel(abs string) (string, error)
	// ReadDir lists the children of dir sorted by name.
	ReadDir(dir string) ([]Entry, error)
	// Read returns the raw bytes of the file at path.
	// Missing files yield an error matching fs.ErrNotExist.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Create writes content to a new file at path. It fails with an error
	// matching fs.ErrExist when path already exists, and never replaces it.
	Create(path string, content []byte) error
	// Exists reports whether path exists.
	Exists(path string) bool
}
