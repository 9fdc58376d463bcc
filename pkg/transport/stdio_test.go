package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// echoDispatcher answers every request with its own id and drops
// notifications, mimicking the real dispatcher's contract.
type echoDispatcher struct{}

func (echoDispatcher) Handle(ctx context.Context, raw []byte) []byte {
	var req struct {
		ID json.RawMessage `json:"id"`
	}
	_ = json.Unmarshal(raw, &req)
	if len(req.ID) == 0 {
		return nil
	}
	return []byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":{}}`)
}

func TestStdioRespondsInOrder(t *testing.T) {
	in := strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")
	var out strings.Builder

	if err := NewStdio(echoDispatcher{}).Run(context.Background(), in, &out); err != nil {
		t.Fatal(err)
	}

	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	var ids []string
	for scanner.Scan() {
		var resp struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response line %q: %v", scanner.Text(), err)
		}
		ids = append(ids, string(resp.ID))
	}
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Errorf("ids = %v, want [1 2]", ids)
	}
}

func TestStdioSkipsNotificationsAndBlankLines(t *testing.T) {
	in := strings.NewReader(
		"\n" +
			`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
			"   \n" +
			`{"jsonrpc":"2.0","id":7,"method":"tools/list"}` + "\n")
	var out strings.Builder

	if err := NewStdio(echoDispatcher{}).Run(context.Background(), in, &out); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(out.String(), "\n"); got != 1 {
		t.Errorf("wrote %d lines, want 1: %q", got, out.String())
	}
	if !strings.Contains(out.String(), `"id":7`) {
		t.Errorf("output = %q", out.String())
	}
}

func TestStdioStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n")
	var out strings.Builder

	if err := NewStdio(echoDispatcher{}).Run(ctx, in, &out); err == nil {
		t.Fatal("expected context error")
	}
	if out.Len() != 0 {
		t.Errorf("wrote output after cancel: %q", out.String())
	}
}
