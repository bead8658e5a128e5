package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tradecalc/calc-engine/internal/metrics"
)

// wsRequest is one recompute message from a form client. Fields carries the
// same JSON body the corresponding POST endpoint accepts, so a client keeps
// sending the full field set on every change; each message fully supersedes
// the previous one.
type wsRequest struct {
	ID         int64           `json:"id"`
	Calculator string          `json:"calculator"`
	Fields     json.RawMessage `json:"fields"`
}

// wsResponse echoes the request id so the client can discard replies
// superseded by newer keystrokes. On a validation failure OK is false and
// Result is withheld entirely.
type wsResponse struct {
	ID         int64  `json:"id"`
	Calculator string `json:"calculator"`
	OK         bool   `json:"ok"`
	Result     any    `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
}

var errUnknownCalculator = errors.New("api: unknown calculator")

// dispatch recomputes one calculator from its raw field payload.
func (s *Service) dispatch(ctx context.Context, calculator string, fields json.RawMessage) (any, error) {
	switch calculator {
	case "average-entry":
		var req averageEntryRequest
		if err := json.Unmarshal(fields, &req); err != nil {
			return nil, err
		}
		return s.computeAverageEntry(ctx, req)
	case "pnl":
		var req pnlRequest
		if err := json.Unmarshal(fields, &req); err != nil {
			return nil, err
		}
		return s.computePnL(ctx, req)
	case "mark-pnl":
		var req markPnLRequest
		if err := json.Unmarshal(fields, &req); err != nil {
			return nil, err
		}
		return s.computeMarkPnL(ctx, req)
	case "liquidation":
		var req liquidationRequest
		if err := json.Unmarshal(fields, &req); err != nil {
			return nil, err
		}
		return s.computeLiquidation(ctx, req)
	case "target-average":
		var req targetAverageRequest
		if err := json.Unmarshal(fields, &req); err != nil {
			return nil, err
		}
		return s.computeTargetAverage(ctx, req)
	case "breach":
		var req breachRequest
		if err := json.Unmarshal(fields, &req); err != nil {
			return nil, err
		}
		return s.computeBreach(ctx, req)
	case "risk":
		var req riskRequest
		if err := json.Unmarshal(fields, &req); err != nil {
			return nil, err
		}
		return s.computeRisk(ctx, req)
	default:
		return nil, errUnknownCalculator
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true // Allow all origins during development.
	},
}

// HandleWS handles WebSocket upgrade requests at GET /api/v1/ws. Each
// connection is an independent recompute session: no state is shared
// between sessions and nothing a client sends is persisted.
func (s *Service) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "err", err)
		return
	}

	sessionID := uuid.New().String()
	metrics.WebSocketClients.Inc()
	slog.Info("ws session opened", "session", sessionID)

	done := make(chan struct{})

	// Ping ticker to keep the connection alive through proxies.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	defer func() {
		close(done)
		conn.Close()
		metrics.WebSocketClients.Dec()
		slog.Info("ws session closed", "session", sessionID)
	}()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req wsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			s.writeWS(conn, wsResponse{OK: false, Error: "invalid message"})
			continue
		}

		result, err := s.dispatch(ctx, req.Calculator, req.Fields)
		if err != nil {
			metrics.ValidationFailures.WithLabelValues(req.Calculator).Inc()
			s.writeWS(conn, wsResponse{
				ID:         req.ID,
				Calculator: req.Calculator,
				OK:         false,
				Error:      err.Error(),
			})
			continue
		}

		s.writeWS(conn, wsResponse{
			ID:         req.ID,
			Calculator: req.Calculator,
			OK:         true,
			Result:     result,
		})
	}
}

func (s *Service) writeWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		slog.Error("ws write failed", "err", err)
	}
}
