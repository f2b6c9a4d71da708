package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWikiServer(t *testing.T, pages map[string]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		q := r.URL.Query()
		assert.Equal(t, "parse", q.Get("action"))
		assert.Equal(t, "wikitext", q.Get("prop"))
		assert.Equal(t, "1", q.Get("redirects"))

		w.Header().Set("Content-Type", "application/json")
		page := q.Get("page")
		if page == "Broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		text, ok := pages[page]
		if !ok {
			_, _ = w.Write([]byte(`{"error":{"code":"missingtitle","info":"The page you specified doesn't exist."}}`))
			return
		}
		_, _ = w.Write([]byte(`{"parse":{"title":"` + page + `","wikitext":{"*":` + quote(text) + `}}}`))
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestFetchText(t *testing.T) {
	srv, _ := newWikiServer(t, map[string]string{
		"Zulrah": "{{DropsLine|name=Tanzanite fang|rarity=1/512}}\nmore",
	})
	client := NewClient(srv.Client(), srv.URL, "test-agent", 5*time.Second, 0)

	text, err := client.FetchText(context.Background(), "Zulrah")
	require.NoError(t, err)
	assert.Equal(t, "{{DropsLine|name=Tanzanite fang|rarity=1/512}}\nmore", text)
}

func TestFetchTextMissingPage(t *testing.T) {
	srv, _ := newWikiServer(t, map[string]string{"Empty": "   "})
	client := NewClient(srv.Client(), srv.URL, "test-agent", 5*time.Second, 0)

	_, err := client.FetchText(context.Background(), "Nope")
	assert.True(t, errors.Is(err, ErrPageNotFound))

	_, err = client.FetchText(context.Background(), "Empty")
	assert.True(t, errors.Is(err, ErrPageNotFound))
}

func TestFetchTextHTTPError(t *testing.T) {
	srv, _ := newWikiServer(t, nil)
	client := NewClient(srv.Client(), srv.URL, "test-agent", 5*time.Second, 0)

	_, err := client.FetchText(context.Background(), "Broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPageNotFound))
	assert.Contains(t, err.Error(), "HTTP error: 500")
}

func TestRequestsAreSpaced(t *testing.T) {
	srv, hits := newWikiServer(t, map[string]string{"A": "a", "B": "b"})
	delay := 50 * time.Millisecond
	client := NewClient(srv.Client(), srv.URL, "test-agent", 5*time.Second, delay)

	start := time.Now()
	_, err := client.FetchText(context.Background(), "A")
	require.NoError(t, err)
	_, err = client.FetchText(context.Background(), "B")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), delay)
	assert.Equal(t, int32(2), hits.Load())
}

func TestWaitHonoursCancellation(t *testing.T) {
	srv, hits := newWikiServer(t, map[string]string{"A": "a"})
	client := NewClient(srv.Client(), srv.URL, "test-agent", 5*time.Second, time.Hour)

	_, err := client.FetchText(context.Background(), "A")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.FetchText(ctx, "A")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchItemIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":4151,"name":"Abyssal whip"},{"id":12922,"name":" Tanzanite fang "},{"id":0,"name":"Broken"},{"id":5,"name":""}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), "unused", "test-agent", 5*time.Second, 0)
	ids, err := client.FetchItemIDs(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"abyssal whip": 4151, "tanzanite fang": 12922}, ids)
}

func TestFetchItemIDsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), "unused", "test-agent", 5*time.Second, 0)
	_, err := client.FetchItemIDs(context.Background(), srv.URL)
	assert.Error(t, err)
}
