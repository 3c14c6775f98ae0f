package ytvideodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ytparty/server/pkg/party"
)

var (
	ErrFetch              = errors.New("failed to fetch video metadata")
	ErrInvalidVideoId     = errors.New("invalid video id")
	ErrVideoNotFound      = errors.New("video not found")
	ErrVideoNotEmbeddable = errors.New("video is not embeddable")
)

const (
	defaultOEmbedURL = "https://www.youtube.com/oembed"
	defaultWatchURL  = "https://www.youtube.com/watch"
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"
)

type Fetcher struct {
	client    *http.Client
	oembedURL string
	watchURL  string
	userAgent string
}

type Option func(*Fetcher)

func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout bounds every fetch. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.client = &http.Client{Timeout: timeout}
	}
}

func WithOEmbedURL(u string) Option {
	return func(f *Fetcher) {
		f.oembedURL = u
	}
}

func WithWatchURL(u string) Option {
	return func(f *Fetcher) {
		f.watchURL = u
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    http.DefaultClient,
		oembedURL: defaultOEmbedURL,
		watchURL:  defaultWatchURL,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch returns metadata for videoId. Every failure wraps ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, videoId string) (party.VideoMetadata, error) {
	if !IsValidVideoId(videoId) {
		return party.VideoMetadata{}, fmt.Errorf("%w: %w", ErrFetch, ErrInvalidVideoId)
	}

	metadata, err := f.fetchWithEmbed(ctx, videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return party.VideoMetadata{}, fmt.Errorf("%w: %w", ErrFetch, err)
		}

		metadata, err = f.fetchFromPage(ctx, videoId)
		if err != nil {
			return party.VideoMetadata{}, fmt.Errorf("%w: from page: %w", ErrFetch, err)
		}
	}

	if metadata.Title == "" || metadata.Author == "" {
		return party.VideoMetadata{}, fmt.Errorf("%w: missing title or author", ErrFetch)
	}

	return metadata, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	return f.client.Do(req)
}
