package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrUnsupportedScheme = errors.New("resource: unsupported scheme")
	ErrFetchFailed       = errors.New("resource: could not fetch")
)

// Timeout applied to remote resources opened without a context deadline.
const DefaultFetchTimeout = 30 * time.Second

// The Resource type wraps a streamable scene description, compiled archive or
// any other local file or remote http(s) document.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns the last element of the resource path.
func (r *Resource) Name() string {
	if r.IsRemote() {
		return path.Base(r.url.Path)
	}
	return filepath.Base(r.url.Path)
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Read the remaining contents and close the resource.
func (r *Resource) ReadAll() ([]byte, error) {
	defer r.Close()
	return io.ReadAll(r)
}

// Open a resource. If relTo is specified and pathToResource does not define a
// scheme, the new resource is resolved relative to the directory of relTo;
// this is how scene descriptions include each other.
//
// Remote resources are fetched with DefaultFetchTimeout. The caller must
// close the returned resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultFetchTimeout)
	res, err := NewResourceContext(ctx, pathToResource, relTo)
	if err != nil {
		cancel()
		return nil, err
	}
	if res.IsRemote() {
		res.ReadCloser = &cancelCloser{ReadCloser: res.ReadCloser, cancel: cancel}
	} else {
		cancel()
	}
	return res, nil
}

// Open a resource; remote fetches are bound to ctx.
func NewResourceContext(ctx context.Context, pathToResource string, relTo *Resource) (*Resource, error) {
	// Windows separators are accepted for local files
	target, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	if target.Scheme == "" && relTo != nil && !filepath.IsAbs(target.Path) {
		if target, err = resolveRelative(target.Path, relTo); err != nil {
			return nil, err
		}
	}

	var reader io.ReadCloser
	switch target.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(target.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		reader, err = fetch(ctx, target)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w '%s'", ErrUnsupportedScheme, target.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        target,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	target, err := url.Parse(name)
	if err != nil {
		target = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        target,
	}
}

func resolveRelative(rel string, relTo *Resource) (*url.URL, error) {
	if relTo.IsRemote() {
		base := *relTo.url
		base.Path = path.Join(path.Dir(base.Path), rel)
		base.RawQuery = ""
		return &base, nil
	}

	prefix, err := filepath.Abs(relTo.url.Path)
	if err != nil {
		return nil, fmt.Errorf("resource: could not detect abs path for %s: %w", relTo.url.String(), err)
	}
	return &url.URL{Path: filepath.Join(filepath.Dir(prefix), rel)}, nil
}

func fetch(ctx context.Context, target *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %v", ErrFetchFailed, target.String(), err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w '%s': status %d", ErrFetchFailed, target.String(), resp.StatusCode)
	}
	return resp.Body, nil
}

// Releases the fetch context once the body is closed.
type cancelCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelCloser) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
