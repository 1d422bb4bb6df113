package sass

import (
	"context"
	"io/fs"
	"net/url"

	"github.com/wagiedev/sass-embedded-go/internal/importer"
)

// FileImporter redirects loads to files on disk. The compiler reads the
// files itself.
type FileImporter = importer.FileImporter

// CustomImporter resolves and loads stylesheets for the compiler.
type CustomImporter = importer.CustomImporter

// ImporterIdentity gives an importer the stable id the compiler refers to
// it by. Embed it in custom importer types.
type ImporterIdentity = importer.Identity

// Fetcher loads stylesheets from file, http and https URLs.
type Fetcher = importer.Fetcher

// NewFileImporterFunc adapts fn to a FileImporter. fn returns a file path
// or file: URL, or "" when it cannot handle the URL.
func NewFileImporterFunc(fn func(ctx context.Context, url string, fromImport bool) (string, error)) FileImporter {
	return importer.NewFileImporterFunc(fn)
}

// NewLoadPathImporter returns a FileImporter that searches dirs with the
// Sass partial and index rules.
func NewLoadPathImporter(dirs ...string) FileImporter {
	return importer.NewLoadPathImporter(dirs...)
}

// NewFSImporter returns a CustomImporter serving stylesheets from fsys, such
// as an embed.FS. Canonical URLs use scheme, or "fs" when empty.
func NewFSImporter(fsys fs.FS, scheme string) CustomImporter {
	return importer.NewFSImporter(fsys, scheme)
}

// NewRelativeURLImporter returns a CustomImporter that resolves loads against
// base and fetches them with fetcher. A nil fetcher uses http.DefaultClient.
func NewRelativeURLImporter(base *url.URL, fetcher *Fetcher) CustomImporter {
	return importer.NewRelativeURLImporter(base, fetcher).AutoCanonicalize()
}

// NewURLResolverImporter returns a CustomImporter that maps each load to a
// URL with resolve and fetches it with fetcher.
func NewURLResolverImporter(
	resolve func(ctx context.Context, url string) (*url.URL, error),
	fetcher *Fetcher,
) CustomImporter {
	return importer.NewURLResolverImporter(resolve, fetcher)
}

// FileURL converts a file system path into an absolute file: URL.
func FileURL(path string) (string, error) {
	return importer.FileURL(path)
}
