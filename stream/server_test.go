package stream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/holiman/uint256"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventlog"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/ledger"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/stream"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/tracker"
)

const owner = token.Address("0xOwner")

func newTestServer(t *testing.T) (*ledger.Chain, *httptest.Server) {
	t.Helper()
	chain, err := ledger.New(context.Background(), ledger.Config{
		Owner:         owner,
		ExchangeRatio: uint256.NewInt(1_000_000),
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(stream.NewServer(chain, nil))
	t.Cleanup(ts.Close)
	return chain, ts
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status = %v", body["status"])
	}
	if body["entries"].(float64) != 1 { // deploy entry
		t.Fatalf("entries = %v, want 1", body["entries"])
	}
}

func TestLogEndpoint(t *testing.T) {
	chain, ts := newTestServer(t)
	ctx := context.Background()

	if _, err := chain.BuyTokens(ctx, "0xClient", uint256.NewInt(2_000_000)); err != nil {
		t.Fatalf("buyTokens: %v", err)
	}

	resp, err := http.Get(ts.URL + "/log?from=1")
	if err != nil {
		t.Fatalf("GET /log: %v", err)
	}
	defer resp.Body.Close()

	var entries []eventlog.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Op != eventlog.OpBuyTokens {
		t.Fatalf("entries = %v, want single buyTokens", entries)
	}
}

func TestTaskEndpoints(t *testing.T) {
	chain, ts := newTestServer(t)

	id, err := chain.OpenMaintenanceTask(context.Background(), "0xClient", tracker.OpenParams{
		ClientName:       "Acme",
		SystemName:       "Press 2",
		MaintenanceName:  "Hydraulic check",
		Cost:             uint256.NewInt(5),
		Repairman:        "0xRepairman",
		QualityInspector: "0xInspector",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	resp, err := http.Get(ts.URL + "/tasks/0")
	if err != nil {
		t.Fatalf("GET /tasks/0: %v", err)
	}
	defer resp.Body.Close()

	var task tracker.Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if task.ID != id || task.SystemName != "Press 2" {
		t.Fatalf("task = %+v", task)
	}

	if resp, err := http.Get(ts.URL + "/tasks/99"); err != nil {
		t.Fatalf("GET /tasks/99: %v", err)
	} else if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestWebSocketFeed(t *testing.T) {
	chain, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the server to register the subscription before committing.
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(ts.URL + "/health")
		if err != nil {
			t.Fatalf("GET /health: %v", err)
		}
		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		resp.Body.Close()
		if body["clients"].(float64) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := chain.BuyTokens(context.Background(), "0xClient", uint256.NewInt(3_000_000)); err != nil {
		t.Fatalf("buyTokens: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var e eventlog.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Op != eventlog.OpBuyTokens {
		t.Fatalf("op = %s, want buyTokens", e.Op)
	}
	if e.Attrs["issued"] != "3" {
		t.Fatalf("issued = %v, want 3", e.Attrs["issued"])
	}
}
