package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/retailbridge/retailbridge/pkg/mcp"
)

type stubInvoker struct{}

func (stubInvoker) Call(ctx context.Context, name string, args json.RawMessage) (mcp.ToolCallResult, error) {
	return mcp.ToolCallResult{Content: []mcp.ContentBlock{{Type: "text", Text: "called " + name}}}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	tools := []mcp.ToolDefinition{{Name: "customers_search", Description: "search"}}
	d := mcp.NewDispatcher(stubInvoker{}, tools, "2024-11-05", "retailbridge", "test")
	srv := httptest.NewServer(NewHTTP(d, d.Capabilities()).Router())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestEnvelopeRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	resp, body := post(t, srv.URL+"/api/mcp", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var envelope mcp.Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("body = %s: %v", body, err)
	}
	if string(envelope.ID) != "1" || envelope.Error != nil {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestEnvelopeNotificationGets204(t *testing.T) {
	srv := newTestServer(t)
	resp, body := post(t, srv.URL+"/api/mcp", `{"jsonrpc":"2.0","method":"notifications/initialized"}`)

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if len(body) != 0 {
		t.Errorf("body = %q, want empty", body)
	}
}

func TestEnvelopeParseError(t *testing.T) {
	srv := newTestServer(t)
	_, body := post(t, srv.URL+"/api/mcp", `{"jsonrpc":`)

	var envelope mcp.Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("body = %s: %v", body, err)
	}
	if envelope.Error == nil || envelope.Error.Code != mcp.CodeParseError {
		t.Errorf("error = %+v", envelope.Error)
	}
	if string(envelope.ID) != "null" {
		t.Errorf("id = %s, want null", envelope.ID)
	}
}

func TestWrappedToolsCall(t *testing.T) {
	srv := newTestServer(t)
	resp, body := post(t, srv.URL+"/api/mcp/tools/call", `{"name":"customers_search","arguments":{"searchText":"smith"}}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var envelope mcp.Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Error != nil {
		t.Fatalf("error = %+v", envelope.Error)
	}
	if !strings.HasPrefix(string(envelope.ID), `"http-`) {
		t.Errorf("id = %s, want http- prefix", envelope.ID)
	}
	if !strings.Contains(string(body), "called customers_search") {
		t.Errorf("body = %s", body)
	}
}

func TestWrappedToolsList(t *testing.T) {
	srv := newTestServer(t)
	_, body := post(t, srv.URL+"/api/mcp/tools/list", ``)

	var envelope struct {
		Result struct {
			Tools []mcp.ToolDefinition `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("body = %s: %v", body, err)
	}
	if len(envelope.Result.Tools) != 1 {
		t.Errorf("tools = %+v", envelope.Result.Tools)
	}
}

func TestWrappedInvalidJSONRejected(t *testing.T) {
	srv := newTestServer(t)
	resp, body := post(t, srv.URL+"/api/mcp/tools/call", `{"name":`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var envelope mcp.Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Error == nil || envelope.Error.Code != mcp.CodeParseError {
		t.Errorf("error = %+v", envelope.Error)
	}
}

func TestCapabilities(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/mcp/capabilities")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var caps mcp.InitializeResult
	if err := json.NewDecoder(resp.Body).Decode(&caps); err != nil {
		t.Fatal(err)
	}
	if caps.ProtocolVersion != "2024-11-05" || caps.ServerInfo.Name != "retailbridge" {
		t.Errorf("capabilities = %+v", caps)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/mcp/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var health map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ok" || health["timestamp"] == "" {
		t.Errorf("health = %v", health)
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := post(t, srv.URL+"/api/mcp", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("no X-Request-ID header")
	}
}
