package importer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// FileImporter resolves import specifiers to files on disk.
type FileImporter interface {
	// ID returns the handle the compiler uses to address this importer.
	ID() uint32

	// FindFile returns the absolute path of the file url refers to, or ""
	// if this importer does not recognize it.
	FindFile(ctx context.Context, url string, fromImport bool) (string, error)
}

// CustomImporter canonicalizes and loads stylesheets from any source.
type CustomImporter interface {
	// ID returns the handle the compiler uses to address this importer.
	ID() uint32

	// Canonicalize returns the absolute, canonical form of url, or "" if
	// this importer does not recognize it.
	Canonicalize(ctx context.Context, url string, fromImport bool) (string, error)

	// Load returns the stylesheet at a URL previously returned by
	// Canonicalize, or nil if it cannot be found.
	Load(ctx context.Context, canonicalURL string) (*message.ImportSuccess, error)
}

var lastID atomic.Uint32

// Identity hands out a process-unique importer handle the first time ID is
// called and returns the same handle afterwards. Embed it in importer types.
type Identity struct {
	once sync.Once
	id   uint32
}

// ID implements the ID method of FileImporter and CustomImporter.
func (i *Identity) ID() uint32 {
	i.once.Do(func() {
		i.id = lastID.Add(1)
	})

	return i.id
}

// FileImporterFunc adapts a function to a FileImporter.
type FileImporterFunc struct {
	Identity

	fn func(ctx context.Context, url string, fromImport bool) (string, error)
}

// Compile-time verification that FileImporterFunc implements FileImporter.
var _ FileImporter = (*FileImporterFunc)(nil)

// NewFileImporterFunc returns a FileImporter that delegates to fn.
func NewFileImporterFunc(fn func(ctx context.Context, url string, fromImport bool) (string, error)) *FileImporterFunc {
	return &FileImporterFunc{fn: fn}
}

// FindFile implements FileImporter.
func (f *FileImporterFunc) FindFile(ctx context.Context, url string, fromImport bool) (string, error) {
	return f.fn(ctx, url, fromImport)
}
