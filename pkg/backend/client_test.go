package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDoSetsFixedHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, "1.2.3")
	if _, err := client.Do(context.Background(), "op", http.MethodPost, "/Products/Search", map[string]any{"x": 1}); err != nil {
		t.Fatal(err)
	}

	for header, want := range map[string]string{
		"Accept":           "application/json",
		"Odata-Version":    "4.0",
		"Odata-Maxversion": "4.0",
		"X-Commerce-Role":  "anonymous",
		"User-Agent":       "retailbridge/1.2.3",
		"Content-Type":     "application/json",
	} {
		if v := got.Get(header); v != want {
			t.Errorf("%s = %q, want %q", header, v, want)
		}
	}
}

func TestDoOmitsContentTypeWithoutBody(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, "test")
	if _, err := client.Do(context.Background(), "op", http.MethodGet, "/Products/GetById(recordId=1,channelId=2)", nil); err != nil {
		t.Fatal(err)
	}
	if v := got.Get("Content-Type"); v != "" {
		t.Errorf("Content-Type = %q on a bodiless GET", v)
	}
}

func TestDoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"value":[1,2]}`)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, "test")
	outcome, err := client.Do(context.Background(), "op", http.MethodGet, "/x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.StatusCode != http.StatusOK {
		t.Errorf("status = %d", outcome.StatusCode)
	}
	if outcome.ClientError != nil {
		t.Errorf("unexpected client error: %+v", outcome.ClientError)
	}
	if string(outcome.Payload) != `{"value":[1,2]}` {
		t.Errorf("payload = %s", outcome.Payload)
	}
}

func TestDoClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"message":"no such product"}}`)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, "test")
	outcome, err := client.Do(context.Background(), "products_get_by_id", http.MethodGet, "/x", nil)
	if err != nil {
		t.Fatalf("4xx must not be an error: %v", err)
	}
	ce := outcome.ClientError
	if ce == nil {
		t.Fatal("expected a client error")
	}
	if ce.StatusCode != http.StatusNotFound || ce.Reason != "Not Found" {
		t.Errorf("client error = %+v", ce)
	}
	if ce.Details != "no such product" {
		t.Errorf("details = %q", ce.Details)
	}
	if ce.Operation != "products_get_by_id" {
		t.Errorf("operation = %q", ce.Operation)
	}
	if ce.Timestamp == "" {
		t.Error("timestamp not set")
	}
}

func TestDoClientErrorPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, "access denied")
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, "test")
	outcome, err := client.Do(context.Background(), "op", http.MethodGet, "/x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.ClientError == nil || outcome.ClientError.Details != "access denied" {
		t.Errorf("outcome = %+v", outcome)
	}
}

func TestDoServerErrorIsFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream down")
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, "test")
	outcome, err := client.Do(context.Background(), "op", http.MethodGet, "/x", nil)
	if err == nil {
		t.Fatalf("expected an error, got outcome %+v", outcome)
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "upstream down") {
		t.Errorf("error = %v", err)
	}
}

func TestDoTransportFailureIsFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := New(srv.URL, time.Second, "test")
	if _, err := client.Do(context.Background(), "op", http.MethodGet, "/x", nil); err == nil {
		t.Fatal("expected an error for a refused connection")
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	client := New(srv.URL+"/", time.Second, "test")
	if _, err := client.Do(context.Background(), "op", http.MethodGet, "/Products/Search", nil); err != nil {
		t.Fatal(err)
	}
	if path != "/Products/Search" {
		t.Errorf("path = %q", path)
	}
}
