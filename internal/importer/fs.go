package importer

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// DefaultFSScheme is the URL scheme FSImporter uses unless configured.
const DefaultFSScheme = "fs"

// FSImporter is a CustomImporter serving stylesheets from an fs.FS, such as
// an embed.FS compiled into the binary. Canonical URLs have the form
// "scheme:/dir/_file.scss".
type FSImporter struct {
	Identity

	fsys   fs.FS
	scheme string
}

// Compile-time verification that FSImporter implements CustomImporter.
var _ CustomImporter = (*FSImporter)(nil)

// NewFSImporter creates an importer over fsys. An empty scheme selects
// DefaultFSScheme.
func NewFSImporter(fsys fs.FS, scheme string) *FSImporter {
	if scheme == "" {
		scheme = DefaultFSScheme
	}

	return &FSImporter{fsys: fsys, scheme: scheme}
}

// Canonicalize implements CustomImporter. Scheme-less URLs are resolved
// from the root of the file system; URLs with another scheme are ignored.
func (f *FSImporter) Canonicalize(_ context.Context, rawURL string, _ bool) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil
	}

	if u.Scheme != "" && u.Scheme != f.scheme {
		return "", nil
	}

	p := u.Path
	if p == "" {
		p = u.Opaque
	}

	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if !fs.ValidPath(p) || p == "." {
		return "", nil
	}

	found, err := ResolveFS(f.fsys, p)
	if err != nil || found == "" {
		return "", err
	}

	return f.scheme + ":/" + found, nil
}

// Load implements CustomImporter.
func (f *FSImporter) Load(_ context.Context, canonicalURL string) (*message.ImportSuccess, error) {
	p, ok := strings.CutPrefix(canonicalURL, f.scheme+":/")
	if !ok {
		return nil, fmt.Errorf("%q was not canonicalized by this importer", canonicalURL)
	}

	data, err := fs.ReadFile(f.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", canonicalURL, err)
	}

	return &message.ImportSuccess{
		Contents: string(data),
		Syntax:   message.SyntaxFromPath(p),
	}, nil
}
