package importer

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// RelativeURLImporter is a CustomImporter that resolves specifiers against
// a base URL and loads them over http, https or file. It serves the
// relative loads of a stylesheet compiled from a URL.
type RelativeURLImporter struct {
	Identity

	base    *url.URL
	fetcher *Fetcher
	auto    bool
}

// Compile-time verification that RelativeURLImporter implements CustomImporter.
var _ CustomImporter = (*RelativeURLImporter)(nil)

// NewRelativeURLImporter creates an importer rooted at base. A nil fetcher
// uses http.DefaultClient.
func NewRelativeURLImporter(base *url.URL, fetcher *Fetcher) *RelativeURLImporter {
	return &RelativeURLImporter{base: base, fetcher: fetcher}
}

// AutoCanonicalize makes Canonicalize probe the Sass resolution candidates
// (partials, extensions, index files) instead of returning the resolved URL
// as-is. It returns the receiver.
func (r *RelativeURLImporter) AutoCanonicalize() *RelativeURLImporter {
	r.auto = true

	return r
}

// Canonicalize implements CustomImporter. Only URLs sharing the base URL's
// scheme are handled.
func (r *RelativeURLImporter) Canonicalize(ctx context.Context, rawURL string, _ bool) (string, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", nil
	}

	resolved := r.base.ResolveReference(ref)
	if resolved.Scheme != r.base.Scheme {
		return "", nil
	}

	if !r.auto {
		return resolved.String(), nil
	}

	for _, group := range Candidates(resolved.Path) {
		for _, candidate := range group {
			u := *resolved
			u.Path = candidate

			ok, err := r.fetcher.Exists(ctx, &u)
			if err != nil {
				return "", err
			}

			if ok {
				return u.String(), nil
			}
		}
	}

	return "", nil
}

// Load implements CustomImporter.
func (r *RelativeURLImporter) Load(ctx context.Context, canonicalURL string) (*message.ImportSuccess, error) {
	return loadURL(ctx, r.fetcher, canonicalURL)
}

// URLResolverImporter is a CustomImporter backed by a function mapping a
// specifier to the URL of a resource, for example a lookup in an embedding
// application's asset table. A nil URL from the resolver means not found.
type URLResolverImporter struct {
	Identity

	resolve func(ctx context.Context, url string) (*url.URL, error)
	fetcher *Fetcher
}

// Compile-time verification that URLResolverImporter implements CustomImporter.
var _ CustomImporter = (*URLResolverImporter)(nil)

// NewURLResolverImporter creates an importer that canonicalizes with resolve.
func NewURLResolverImporter(resolve func(ctx context.Context, url string) (*url.URL, error), fetcher *Fetcher) *URLResolverImporter {
	return &URLResolverImporter{resolve: resolve, fetcher: fetcher}
}

// Canonicalize implements CustomImporter.
func (r *URLResolverImporter) Canonicalize(ctx context.Context, rawURL string, _ bool) (string, error) {
	u, err := r.resolve(ctx, rawURL)
	if err != nil || u == nil {
		return "", err
	}

	return u.String(), nil
}

// Load implements CustomImporter.
func (r *URLResolverImporter) Load(ctx context.Context, canonicalURL string) (*message.ImportSuccess, error) {
	return loadURL(ctx, r.fetcher, canonicalURL)
}

func loadURL(ctx context.Context, fetcher *Fetcher, canonicalURL string) (*message.ImportSuccess, error) {
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", canonicalURL, err)
	}

	data, err := fetcher.Fetch(ctx, u)
	if err != nil || data == nil {
		return nil, err
	}

	return &message.ImportSuccess{
		Contents: string(data),
		Syntax:   message.SyntaxFromPath(path.Base(u.Path)),
	}, nil
}
