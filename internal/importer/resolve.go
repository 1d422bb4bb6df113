package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

var sassExtensions = []string{".sass", ".scss", ".css"}

// Candidates lists the files the Sass resolution algorithm tries for p, in
// groups. Within a group at most one file may exist; the first group with a
// match wins. p uses forward slashes.
//
// For "dir/name" the groups are: name and _name with each extension, then
// name.css, then dir/name/index and dir/name/_index with each extension.
// A p that already carries an extension only yields itself and its partial.
func Candidates(p string) [][]string {
	dir, base := path.Split(p)
	ext := path.Ext(base)

	if ext == ".sass" || ext == ".scss" || ext == ".css" {
		if ext == ".css" {
			return [][]string{{p}}
		}

		return [][]string{{p, dir + "_" + base}}
	}

	var sassOnly []string

	for _, e := range sassExtensions[:2] {
		sassOnly = append(sassOnly, dir+base+e, dir+"_"+base+e)
	}

	var index []string

	for _, e := range sassExtensions[:2] {
		index = append(index, p+"/index"+e, p+"/_index"+e)
	}

	return [][]string{
		sassOnly,
		{dir + base + ".css"},
		index,
		{p + "/index.css"},
	}
}

// ResolveFS resolves p inside fsys using Candidates. It returns "" when no
// candidate exists and an error when a group matches more than one file.
func ResolveFS(fsys fs.FS, p string) (string, error) {
	return resolve(p, func(name string) bool {
		info, err := fs.Stat(fsys, name)

		return err == nil && !info.IsDir()
	})
}

func resolve(p string, exists func(string) bool) (string, error) {
	for _, group := range Candidates(p) {
		var found []string

		for _, c := range group {
			if exists(c) {
				found = append(found, c)
			}
		}

		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			return "", fmt.Errorf("it's not clear which file to import for %q, found: %s", p, strings.Join(found, ", "))
		}
	}

	return "", nil
}

// FileURL converts a file system path into an absolute file: URL.
func FileURL(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("absolute path of %s: %w", p, err)
	}

	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}

	return (&url.URL{Scheme: "file", Path: slashed}).String(), nil
}

// FilePath converts an absolute file: URL into a file system path.
func FilePath(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", err
	}

	if u.Scheme != "file" {
		return "", errors.New("not a file: URL: " + fileURL)
	}

	p := u.Path
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}

	return filepath.FromSlash(p), nil
}
