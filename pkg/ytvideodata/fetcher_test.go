package ytvideodata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytparty/server/pkg/party"
)

const watchPage = `<!DOCTYPE html><html><head>
<title>Never Gonna Give You Up - YouTube</title>
<meta property="og:title" content="Never Gonna Give You Up">
<meta property="og:image" content="https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg">
</head><body>
<span itemprop="author" itemscope itemtype="http://schema.org/Person">
<link itemprop="url" href="http://www.youtube.com/@RickAstleyYT">
<link itemprop="name" content="Rick Astley">
</span>
</body></html>`

func newTestServer(t *testing.T, oembedStatus int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", r.URL.Query().Get("url"))
		if oembedStatus != http.StatusOK {
			w.WriteHeader(oembedStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"T","author_name":"A","thumbnail_url":"u"}`))
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(watchPage))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newTestFetcher(srv *httptest.Server) *Fetcher {
	return New(
		WithHTTPClient(srv.Client()),
		WithOEmbedURL(srv.URL+"/oembed"),
		WithWatchURL(srv.URL+"/watch"),
	)
}

func TestFetchWithEmbed(t *testing.T) {
	f := newTestFetcher(newTestServer(t, http.StatusOK))

	metadata, err := f.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, party.VideoMetadata{Id: "dQw4w9WgXcQ", Title: "T", Author: "A", Thumbnail: "u"}, metadata)
}

func TestFetchFallsBackToPage(t *testing.T) {
	f := newTestFetcher(newTestServer(t, http.StatusUnauthorized))

	metadata, err := f.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna Give You Up", metadata.Title)
	assert.Equal(t, "Rick Astley", metadata.Author)
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", metadata.Thumbnail)
}

func TestFetchErrors(t *testing.T) {
	f := newTestFetcher(newTestServer(t, http.StatusNotFound))

	_, err := f.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, ErrVideoNotFound)

	_, err = f.Fetch(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, ErrInvalidVideoId)

	f = newTestFetcher(newTestServer(t, http.StatusInternalServerError))
	_, err = f.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetchMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"","author_name":"A"}`))
	}))
	defer srv.Close()

	f := New(WithHTTPClient(srv.Client()), WithOEmbedURL(srv.URL))
	_, err := f.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrFetch)
}

type stubFetcher struct {
	metadata party.VideoMetadata
	err      error
	calls    int
}

func (s *stubFetcher) Fetch(context.Context, string) (party.VideoMetadata, error) {
	s.calls++
	if s.err != nil {
		return party.VideoMetadata{}, s.err
	}
	return s.metadata, nil
}

func TestCachingFetcher(t *testing.T) {
	base := &stubFetcher{metadata: party.VideoMetadata{Id: "dQw4w9WgXcQ", Title: "T", Author: "A"}}
	c := NewCachingFetcher(base, 8, time.Minute)

	for i := 0; i < 3; i++ {
		metadata, err := c.Fetch(context.Background(), "dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.Equal(t, base.metadata, metadata)
	}
	assert.Equal(t, 1, base.calls, "successful lookups must be cached")

	failing := &stubFetcher{err: errors.New("boom")}
	c = NewCachingFetcher(failing, 8, time.Minute)
	_, err := c.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	_, err = c.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Equal(t, 2, failing.calls, "failures must not be cached")
}
