package dictionary

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
)

// Marker tells whether a cached dictionary is still current.
// Local files use their modification time; remote sources use RemoteMarker,
// which always compares equal to itself.
type Marker struct {
	ModTime int64
	Remote  bool
}

// RemoteMarker is the marker of every remote source.
var RemoteMarker = Marker{Remote: true}

// Source is where a dictionary comes from. ParseSource picks the variant.
type Source interface {
	// ID is the identifier the source was parsed from; it keys the cache.
	ID() string
	// Marker reports the current freshness marker without reading content.
	Marker(ctx context.Context) (Marker, error)
	// Fetch returns the raw dictionary bytes.
	Fetch(ctx context.Context, f *Fetcher) ([]byte, error)
}

// LocalSource is a dictionary file on the local filesystem.
type LocalSource struct {
	Path string
}

// RemoteSource is a dictionary served over http or https.
type RemoteSource struct {
	URL string
}

// ParseSource resolves an identifier once: anything starting with http://
// or https:// is remote, everything else is a filesystem path.
func ParseSource(id string) Source {
	if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
		return RemoteSource{URL: id}
	}
	return LocalSource{Path: id}
}

func (s LocalSource) ID() string { return s.Path }

func (s LocalSource) Marker(ctx context.Context) (Marker, error) {
	if err := ctx.Err(); err != nil {
		return Marker{}, err
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		return Marker{}, newLoadError(s.Path, "stat", classifyFSError(err), err)
	}
	return Marker{ModTime: info.ModTime().UnixNano()}, nil
}

func (s LocalSource) Fetch(ctx context.Context, _ *Fetcher) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, newLoadError(s.Path, "fetch", classifyFSError(err), err)
	}
	return data, nil
}

func classifyFSError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return ErrIO
}

func (s RemoteSource) ID() string { return s.URL }

func (s RemoteSource) Marker(context.Context) (Marker, error) {
	return RemoteMarker, nil
}

func (s RemoteSource) Fetch(ctx context.Context, f *Fetcher) ([]byte, error) {
	if f == nil {
		f = defaultFetcher
	}
	data, err := f.Get(ctx, s.URL)
	if err != nil {
		return nil, newLoadError(s.URL, "fetch", ErrNetwork, err)
	}
	return data, nil
}

// Fetcher performs remote GETs. It never follows redirects, sends no
// credentials and does not look at the status code: whatever body the
// server answers with is the dictionary.
type Fetcher struct {
	client *resty.Client
}

var defaultFetcher = NewFetcher(0)

// NewFetcher returns a Fetcher. A zero timeout means requests only end when
// the server answers or the context is cancelled.
func NewFetcher(timeout time.Duration) *Fetcher {
	client := resty.New().
		SetLogger(log.Default()).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Fetcher{client: client}
}

// Get returns the full response body of a GET to url.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() >= http.StatusBadRequest {
		log.Warnf("Dictionary %s answered %s, using the body anyway", url, res.Status())
	}
	log.Debugf("Fetched %d bytes from %s in %v", len(res.Body()), url, res.Time())
	return res.Body(), nil
}
