package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchReturnsBodyAndCacheTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "TestAgent/1.0" {
			t.Errorf("Expected User-Agent TestAgent/1.0, got: %s", ua)
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.Write([]byte("<rss/>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "TestAgent/1.0", 0)
	result, err := fetcher.Fetch(context.Background(), server.URL, "", "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.NotModified {
		t.Error("Expected a modified result")
	}
	if string(result.Body) != "<rss/>" {
		t.Errorf("Expected body <rss/>, got: %s", result.Body)
	}
	if result.ETag != `"v1"` {
		t.Errorf("Expected ETag \"v1\", got: %s", result.ETag)
	}
	if result.LastModified != "Mon, 02 Jan 2006 15:04:05 GMT" {
		t.Errorf("Unexpected Last-Modified: %s", result.LastModified)
	}
}

func TestFetchSendsConditionalHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != `"v1"` {
			t.Errorf("Expected If-None-Match \"v1\", got: %s", r.Header.Get("If-None-Match"))
		}
		if r.Header.Get("If-Modified-Since") != "Mon, 02 Jan 2006 15:04:05 GMT" {
			t.Errorf("Unexpected If-Modified-Since: %s", r.Header.Get("If-Modified-Since"))
		}
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "TestAgent/1.0", 0)
	result, err := fetcher.Fetch(context.Background(), server.URL, `"v1"`, "Mon, 02 Jan 2006 15:04:05 GMT")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !result.NotModified {
		t.Error("Expected a not-modified result")
	}
	if result.ETag != `"v1"` {
		t.Errorf("Expected prior ETag to be preserved, got: %s", result.ETag)
	}
	if result.LastModified != "Mon, 02 Jan 2006 15:04:05 GMT" {
		t.Errorf("Expected prior Last-Modified to be preserved, got: %s", result.LastModified)
	}
}

func TestFetchOmitsConditionalHeadersWithoutTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["If-None-Match"]; ok {
			t.Error("Expected no If-None-Match header")
		}
		if _, ok := r.Header["If-Modified-Since"]; ok {
			t.Error("Expected no If-Modified-Since header")
		}
		w.Write([]byte("<rss/>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "TestAgent/1.0", 0)
	if _, err := fetcher.Fetch(context.Background(), server.URL, "", ""); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

func TestFetchHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "TestAgent/1.0", 0)
	_, err := fetcher.Fetch(context.Background(), server.URL, "", "")
	if err == nil {
		t.Fatal("Expected an error for HTTP 500")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected a FetchError, got: %T", err)
	}
	if fetchErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status code 500, got: %d", fetchErr.StatusCode)
	}
}

func TestFetchKeepsPriorTokensWhenResponseOmitsThem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<rss/>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "TestAgent/1.0", 0)
	result, err := fetcher.Fetch(context.Background(), server.URL, `"old"`, "Tue, 03 Jan 2006 00:00:00 GMT")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.ETag != `"old"` {
		t.Errorf("Expected prior ETag to carry over, got: %s", result.ETag)
	}
	if result.LastModified != "Tue, 03 Jan 2006 00:00:00 GMT" {
		t.Errorf("Expected prior Last-Modified to carry over, got: %s", result.LastModified)
	}
}
