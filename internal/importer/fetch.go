package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"

	sasserrors "github.com/wagiedev/sass-embedded-go/internal/errors"
)

// maxStylesheetSize bounds a stylesheet loaded over HTTP.
const maxStylesheetSize = 32 * 1024 * 1024

// Fetcher loads stylesheets from http, https and file URLs.
type Fetcher struct {
	Client *http.Client
}

func (f *Fetcher) client() *http.Client {
	if f == nil || f.Client == nil {
		return http.DefaultClient
	}

	return f.Client
}

// Fetch returns the contents at u. A missing resource yields (nil, nil).
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	switch u.Scheme {
	case "file":
		p, err := FilePath(u.String())
		if err != nil {
			return nil, err
		}

		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return data, err
	case "http", "https":
		return f.fetchHTTP(ctx, u)
	default:
		return nil, fmt.Errorf("%w: %s", sasserrors.ErrUnsupportedURLScheme, u.Scheme)
	}
}

// Exists reports whether u can be fetched.
func (f *Fetcher) Exists(ctx context.Context, u *url.URL) (bool, error) {
	switch u.Scheme {
	case "file":
		p, err := FilePath(u.String())
		if err != nil {
			return false, err
		}

		info, err := os.Stat(p)

		return err == nil && !info.IsDir(), nil
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
		if err != nil {
			return false, err
		}

		resp, err := f.client().Do(req)
		if err != nil {
			return false, fmt.Errorf("head %s: %w", u, err)
		}

		resp.Body.Close()

		return resp.StatusCode == http.StatusOK, nil
	default:
		return false, fmt.Errorf("%w: %s", sasserrors.ErrUnsupportedURLScheme, u.Scheme)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("get %s: unexpected status %s", u, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStylesheetSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}

	if len(data) > maxStylesheetSize {
		return nil, fmt.Errorf("read %s: stylesheet larger than %d bytes", u, maxStylesheetSize)
	}

	return data, nil
}
