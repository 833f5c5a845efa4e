package jobsearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/cv-jobmatch/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return NewClient(Config{APIURL: srv.URL + "/search", Timeout: 5 * time.Second}, nil, nil), &calls
}

func TestClient_SearchSendsQuery(t *testing.T) {
	var got url.Values
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"type":"JOBS","jobs":[]}`))
	})

	_, err := c.Search(context.Background(), Query{Keywords: "python, docker", UserIP: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, "en_US", got.Get("locale"))
	assert.Equal(t, "python, docker", got.Get("keywords"))
	assert.Equal(t, "United States", got.Get("location"))
	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, "10.0.0.1", got.Get("user_ip"))
	assert.Equal(t, "Mozilla/5.0", got.Get("user_agent"))
	assert.False(t, got.Has("affid"))
}

func TestClient_SearchAffIDAndOverrides(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"jobs":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIURL: srv.URL, AffID: "abc123", Locale: "en_GB"}, srv.Client(), nil)
	_, err := c.Search(context.Background(), Query{Keywords: "go", Location: "London", Page: 2, UserAgent: "curl/8"})
	require.NoError(t, err)

	assert.Equal(t, "abc123", got.Get("affid"))
	assert.Equal(t, "en_GB", got.Get("locale"))
	assert.Equal(t, "London", got.Get("location"))
	assert.Equal(t, "2", got.Get("page"))
	assert.Equal(t, "curl/8", got.Get("user_agent"))
}

func TestClient_SearchMapsJobs(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"JOBS","hits":2,"jobs":[
			{"title":"Go Engineer","company":"Acme","locations":"Austin, TX","description":"Build APIs","url":"http://x"},
			{"title":"Data Scientist","company":null}
		]}`))
	})

	jobs, err := c.Search(context.Background(), Query{Keywords: "python"})
	require.NoError(t, err)

	assert.Equal(t, []models.JobListing{
		{Title: "Go Engineer", Company: "Acme", Location: "Austin, TX", Description: "Build APIs"},
		{Title: "Data Scientist", Company: "N/A", Location: "N/A", Description: "N/A"},
	}, jobs)
}

func TestClient_SearchNoJobs(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type":"JOBS"}`))
	})

	jobs, err := c.Search(context.Background(), Query{Keywords: "cobol"})
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestClient_SearchUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>oops</html>"))
			},
		},
		{
			name: "error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"type":"ERROR","error":"invalid affid"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.handler)
			jobs, err := c.Search(context.Background(), Query{Keywords: "python"})
			assert.ErrorIs(t, err, ErrUpstreamUnavailable)
			assert.Nil(t, jobs)
		})
	}
}

func TestClient_SearchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(Config{APIURL: srv.URL}, nil, nil)
	_, err := c.Search(context.Background(), Query{Keywords: "python"})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

type fakeKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = val
	return nil
}

func TestCachedSearcher_HitSkipsUpstream(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobs":[{"title":"SRE","company":"Acme","locations":"Remote","description":"k8s"}]}`))
	})
	kv := newFakeKV()
	s := NewCachedSearcher(c, kv, time.Minute, nil)

	first, err := s.Search(context.Background(), Query{Keywords: "kubernetes", UserIP: "1.1.1.1"})
	require.NoError(t, err)
	second, err := s.Search(context.Background(), Query{Keywords: "kubernetes", UserIP: "2.2.2.2"})
	require.NoError(t, err)

	assert.Equal(t, 1, *calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "SRE", second[0].Title)
}

func TestCachedSearcher_DifferentLocationMisses(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobs":[]}`))
	})
	s := NewCachedSearcher(c, newFakeKV(), time.Minute, nil)

	_, _ = s.Search(context.Background(), Query{Keywords: "python"})
	_, _ = s.Search(context.Background(), Query{Keywords: "python", Location: "Berlin"})
	_, _ = s.Search(context.Background(), Query{Keywords: "python", Location: "United States"})

	assert.Equal(t, 2, *calls, "explicit default location shares the entry")
}

func TestCachedSearcher_FailuresNotCached(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	kv := newFakeKV()
	s := NewCachedSearcher(c, kv, time.Minute, nil)

	_, err := s.Search(context.Background(), Query{Keywords: "python"})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	_, err = s.Search(context.Background(), Query{Keywords: "python"})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)

	assert.Equal(t, 2, *calls)
	assert.Equal(t, 0, kv.sets)
}

func TestCachedSearcher_CacheErrorsIgnored(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobs":[{"title":"Dev"}]}`))
	})
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	kv.setErr = errors.New("connection refused")
	s := NewCachedSearcher(c, kv, time.Minute, nil)

	jobs, err := s.Search(context.Background(), Query{Keywords: "python"})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, 1, *calls)
}

func TestCachedSearcher_CachedEmptyResult(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobs":[]}`))
	})
	s := NewCachedSearcher(c, newFakeKV(), time.Minute, nil)

	_, err := s.Search(context.Background(), Query{Keywords: "cobol"})
	require.NoError(t, err)
	jobs, err := s.Search(context.Background(), Query{Keywords: "cobol"})
	require.NoError(t, err)

	assert.Equal(t, 1, *calls)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("en_US", Query{Keywords: "python", Location: "US", Page: 1, UserIP: "1"})
	b := cacheKey("en_US", Query{Keywords: "python", Location: "US", Page: 1, UserIP: "2"})
	c := cacheKey("en_GB", Query{Keywords: "python", Location: "US", Page: 1})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, cacheKeyPrefix)
}
