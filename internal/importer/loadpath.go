package importer

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// LoadPathImporter is a FileImporter that searches a list of directories,
// applying Sass partial, extension and index resolution.
type LoadPathImporter struct {
	Identity

	dirs []string
}

// Compile-time verification that LoadPathImporter implements FileImporter.
var _ FileImporter = (*LoadPathImporter)(nil)

// NewLoadPathImporter creates an importer over dirs, searched in order.
func NewLoadPathImporter(dirs ...string) *LoadPathImporter {
	return &LoadPathImporter{dirs: dirs}
}

// FindFile implements FileImporter.
func (l *LoadPathImporter) FindFile(ctx context.Context, rawURL string, _ bool) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil
	}

	switch u.Scheme {
	case "file":
		p, err := FilePath(rawURL)
		if err != nil {
			return "", err
		}

		found, err := resolve(filepath.ToSlash(p), func(name string) bool {
			info, err := os.Stat(filepath.FromSlash(name))

			return err == nil && !info.IsDir()
		})
		if err != nil || found == "" {
			return "", err
		}

		return filepath.FromSlash(found), nil
	case "":
	default:
		return "", nil
	}

	rel := path.Clean(u.Path)
	if !fs.ValidPath(rel) {
		return "", nil
	}

	for _, dir := range l.dirs {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		found, err := ResolveFS(os.DirFS(dir), rel)
		if err != nil {
			return "", err
		}

		if found != "" {
			return filepath.Abs(filepath.Join(dir, filepath.FromSlash(found)))
		}
	}

	return "", nil
}
