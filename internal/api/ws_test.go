package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tradecalc/calc-engine/internal/store"
)

func dialWS(t *testing.T) *websocket.Conn {
	t.Helper()

	st := store.NewMemoryStore()
	if err := store.SeedDefaults(context.Background(), st); err != nil {
		t.Fatalf("seeding presets: %v", err)
	}
	svc := NewService(st)

	r := chi.NewRouter()
	r.Get("/api/v1/ws", svc.HandleWS)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("ws dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, id int64, calculator string, fields any) wsResponse {
	t.Helper()

	raw, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal fields: %v", err)
	}
	if err := conn.WriteJSON(wsRequest{ID: id, Calculator: calculator, Fields: raw}); err != nil {
		t.Fatalf("ws write failed: %v", err)
	}
	var resp wsResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ws read failed: %v", err)
	}
	return resp
}

func TestWS_RecomputeSession(t *testing.T) {
	conn := dialWS(t)

	resp := sendWS(t, conn, 1, "pnl", map[string]string{
		"side": "long", "entry_price": "100", "exit_price": "110", "quantity": "1",
	})
	if !resp.OK {
		t.Fatalf("expected ok, got error %q", resp.Error)
	}
	if resp.ID != 1 || resp.Calculator != "pnl" {
		t.Errorf("response does not echo the request: %+v", resp)
	}
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	if result["net_pnl"] != "10" {
		t.Errorf("expected net_pnl 10, got %v", result["net_pnl"])
	}
}

func TestWS_KeystrokeSequence(t *testing.T) {
	conn := dialWS(t)

	// A user typing "110" one digit at a time: every message is a full
	// recompute and each reply supersedes the previous one.
	partials := []struct {
		exit string
		ok   bool
	}{
		{"1", true},
		{"11", true},
		{"110", true},
	}
	for i, p := range partials {
		resp := sendWS(t, conn, int64(i), "pnl", map[string]string{
			"side": "long", "entry_price": "100", "exit_price": p.exit, "quantity": "1",
		})
		if resp.OK != p.ok {
			t.Errorf("exit %q: expected ok=%v, got %v (%s)", p.exit, p.ok, resp.OK, resp.Error)
		}
		if resp.ID != int64(i) {
			t.Errorf("exit %q: expected id %d, got %d", p.exit, i, resp.ID)
		}
	}
}

func TestWS_ValidationFailureWithheldResult(t *testing.T) {
	conn := dialWS(t)

	resp := sendWS(t, conn, 7, "pnl", map[string]string{
		"side": "long", "entry_price": "abc", "exit_price": "110", "quantity": "1",
	})
	if resp.OK {
		t.Fatal("expected a validation failure")
	}
	if resp.Result != nil {
		t.Error("failure reply must not carry a result")
	}
	if resp.Error == "" {
		t.Error("failure reply must carry an error message")
	}
}

func TestWS_UnknownCalculator(t *testing.T) {
	conn := dialWS(t)

	resp := sendWS(t, conn, 2, "astrology", map[string]string{})
	if resp.OK {
		t.Fatal("expected an error for an unknown calculator")
	}
}

func TestWS_PresetBackedBreach(t *testing.T) {
	conn := dialWS(t)

	resp := sendWS(t, conn, 3, "breach", map[string]any{
		"side":               "long",
		"average_entry":      "5000",
		"quantity":           "2",
		"remaining_drawdown": "500",
		"instrument":         map[string]string{"preset_symbol": "ES"},
	})
	if !resp.OK {
		t.Fatalf("expected ok, got error %q", resp.Error)
	}
	result := resp.Result.(map[string]any)
	if result["breach_price"] != "4995" {
		t.Errorf("expected breach_price 4995, got %v", result["breach_price"])
	}
}
