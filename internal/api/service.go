// Package api provides the HTTP handlers and WebSocket recompute sessions
// that expose the trading calculators to form-UI clients.
//
// This layer is the presentation boundary: numeric fields arrive as free
// text and pass through numparse, results are rounded for display here and
// nowhere else (2 decimal places for dollar amounts, 8 for prices), and an
// input-validation failure produces an error payload with no result body,
// never a zero.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tradecalc/calc-engine/internal/calc"
	"github.com/tradecalc/calc-engine/internal/instrument"
	"github.com/tradecalc/calc-engine/internal/metrics"
	"github.com/tradecalc/calc-engine/internal/model"
	"github.com/tradecalc/calc-engine/internal/numparse"
	"github.com/tradecalc/calc-engine/internal/propfirm"
	"github.com/tradecalc/calc-engine/internal/store"
)

// Service handles calculator and preset requests.
type Service struct {
	store store.Store
}

// NewService creates a new calculator service backed by the given preset store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// money rounds a dollar amount for display.
func money(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// price rounds a price or unit move for display.
func price(d decimal.Decimal) decimal.Decimal { return d.Round(8) }

// --- Request types ---
// Numeric fields are JSON strings: they carry raw form text and go through
// numparse, so "1,5" and "12." parse and "" / junk are validation failures.

type legInput struct {
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

// specInput identifies an instrument either by preset symbol or by inline
// value-spec fields.
type specInput struct {
	PresetSymbol string `json:"preset_symbol,omitempty"`
	Kind         string `json:"kind,omitempty"`
	TickSize     string `json:"tick_size,omitempty"`
	TickValue    string `json:"tick_value,omitempty"`
	PointValue   string `json:"point_value,omitempty"`
	PipSize      string `json:"pip_size,omitempty"`
	PipValue     string `json:"pip_value,omitempty"`
}

type averageEntryRequest struct {
	Legs   []legInput `json:"legs"`
	Strict bool       `json:"strict,omitempty"`
}

type pnlRequest struct {
	Side       string `json:"side"`
	EntryPrice string `json:"entry_price"`
	ExitPrice  string `json:"exit_price"`
	Quantity   string `json:"quantity"`
	FeeRate    string `json:"fee_rate,omitempty"`
}

type markPnLRequest struct {
	Side       string    `json:"side"`
	EntryPrice string    `json:"entry_price"`
	MarkPrice  string    `json:"mark_price"`
	Quantity   string    `json:"quantity"`
	Instrument specInput `json:"instrument"`
}

type liquidationRequest struct {
	Side                  string `json:"side"`
	EntryPrice            string `json:"entry_price"`
	Leverage              string `json:"leverage"`
	MaintenanceMarginRate string `json:"maintenance_margin_rate,omitempty"`
}

type targetAverageRequest struct {
	CurrentPrice    string `json:"current_price"`
	CurrentQuantity string `json:"current_quantity"`
	TargetAverage   string `json:"target_average"`
	NewPrice        string `json:"new_price"`
}

type breachRequest struct {
	Side               string    `json:"side"`
	AverageEntry       string    `json:"average_entry"`
	Quantity           string    `json:"quantity"`
	RemainingDrawdown  string    `json:"remaining_drawdown,omitempty"`
	DailyLossRemaining string    `json:"daily_loss_remaining,omitempty"`
	Instrument         specInput `json:"instrument"`
}

type riskRequest struct {
	Side       string     `json:"side"`
	Legs       []legInput `json:"legs"`
	StopPrice  string     `json:"stop_price"`
	Instrument specInput  `json:"instrument"`
}

// --- Input helpers ---

func parseSide(s string) (calc.Side, error) {
	side := calc.Side(s)
	if !side.Valid() {
		return "", calc.ErrInvalidSide
	}
	return side, nil
}

func parseLeg(in legInput) (calc.Leg, error) {
	p, err := numparse.Decimal(in.Price)
	if err != nil {
		return calc.Leg{}, err
	}
	q, err := numparse.Decimal(in.Quantity)
	if err != nil {
		return calc.Leg{}, err
	}
	return calc.Leg{Price: p, Quantity: q}, nil
}

// optionalDecimal parses a field that may legitimately be absent;
// an empty field yields the zero decimal.
func optionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, nil
	}
	return numparse.Decimal(s)
}

// resolveSpec loads a preset's value spec or builds one from inline fields.
func (s *Service) resolveSpec(ctx context.Context, in specInput) (instrument.Spec, error) {
	if in.PresetSymbol != "" {
		p, err := s.store.GetPreset(ctx, in.PresetSymbol)
		if err != nil {
			return instrument.Spec{}, err
		}
		return p.Spec, nil
	}

	spec := instrument.Spec{Kind: instrument.Kind(in.Kind)}
	var err error
	if spec.TickSize, err = optionalDecimal(in.TickSize); err != nil {
		return instrument.Spec{}, err
	}
	if spec.TickValue, err = optionalDecimal(in.TickValue); err != nil {
		return instrument.Spec{}, err
	}
	if spec.PointValueOverride, err = optionalDecimal(in.PointValue); err != nil {
		return instrument.Spec{}, err
	}
	if spec.PipSize, err = optionalDecimal(in.PipSize); err != nil {
		return instrument.Spec{}, err
	}
	if spec.PipValue, err = optionalDecimal(in.PipValue); err != nil {
		return instrument.Spec{}, err
	}
	return spec, spec.Validate()
}

// --- Compute layer ---
// Shared by the HTTP handlers and WebSocket sessions. Each function is a
// full recompute of one calculator from raw form fields; the returned
// value carries display-rounded decimals only.

func (s *Service) computeAverageEntry(_ context.Context, req averageEntryRequest) (any, error) {
	if req.Strict {
		legs := make([]calc.Leg, 0, len(req.Legs))
		for _, in := range req.Legs {
			leg, err := parseLeg(in)
			if err != nil {
				return nil, err
			}
			legs = append(legs, leg)
		}
		res, err := calc.AverageEntry(legs)
		if err != nil {
			return nil, err
		}
		metrics.CalculationsTotal.WithLabelValues("average-entry", "ok").Inc()
		return map[string]any{
			"total_quantity": price(res.TotalQuantity),
			"average_price":  price(res.AveragePrice),
			"total_cost":     money(res.TotalCost),
		}, nil
	}

	if len(req.Legs) == 0 {
		return nil, calc.ErrNoLegs
	}
	first, err := parseLeg(req.Legs[0])
	if err != nil {
		return nil, err
	}
	// The optional second leg degrades gracefully: unparseable text is the
	// same as an absent leg while the user is still typing.
	var second calc.Leg
	if len(req.Legs) > 1 {
		second, _ = parseLeg(req.Legs[1])
	}

	res, err := calc.BlendEntry(first, second)
	if err != nil {
		return nil, err
	}
	metrics.CalculationsTotal.WithLabelValues("average-entry", "ok").Inc()
	return map[string]any{
		"total_quantity": price(res.TotalQuantity),
		"average_price":  price(res.AveragePrice),
		"average_shift":  price(res.AverageShift),
		"has_second_leg": res.HasSecondLeg,
	}, nil
}

func (s *Service) computePnL(_ context.Context, req pnlRequest) (any, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}
	entry, err := numparse.Decimal(req.EntryPrice)
	if err != nil {
		return nil, err
	}
	exit, err := numparse.Decimal(req.ExitPrice)
	if err != nil {
		return nil, err
	}
	qty, err := numparse.Decimal(req.Quantity)
	if err != nil {
		return nil, err
	}
	feeRate, err := optionalDecimal(req.FeeRate)
	if err != nil {
		return nil, err
	}

	res, err := calc.PnL(calc.PnLInput{
		Side:       side,
		EntryPrice: entry,
		ExitPrice:  exit,
		Quantity:   qty,
		FeeRate:    feeRate,
	})
	if err != nil {
		return nil, err
	}
	metrics.CalculationsTotal.WithLabelValues("pnl", "ok").Inc()
	return map[string]any{
		"entry_notional": money(res.EntryNotional),
		"exit_notional":  money(res.ExitNotional),
		"gross_pnl":      money(res.GrossPnL),
		"fees":           money(res.Fees),
		"net_pnl":        money(res.NetPnL),
		"roi":            res.ROI.Round(4),
	}, nil
}

func (s *Service) computeMarkPnL(ctx context.Context, req markPnLRequest) (any, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}
	entry, err := numparse.Decimal(req.EntryPrice)
	if err != nil {
		return nil, err
	}
	mark, err := numparse.Decimal(req.MarkPrice)
	if err != nil {
		return nil, err
	}
	qty, err := numparse.Decimal(req.Quantity)
	if err != nil {
		return nil, err
	}
	spec, err := s.resolveSpec(ctx, req.Instrument)
	if err != nil {
		return nil, err
	}

	res, err := calc.MarkPnL(side, entry, mark, qty, spec)
	if err != nil {
		return nil, err
	}
	metrics.CalculationsTotal.WithLabelValues("mark-pnl", "ok").Inc()
	return map[string]any{
		"pnl":  money(res.PnL),
		"move": price(res.Move),
		"unit": res.Unit,
	}, nil
}

func (s *Service) computeLiquidation(_ context.Context, req liquidationRequest) (any, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}
	entry, err := numparse.Decimal(req.EntryPrice)
	if err != nil {
		return nil, err
	}
	leverage, err := numparse.Decimal(req.Leverage)
	if err != nil {
		return nil, err
	}
	mmr := calc.DefaultMaintenanceMarginRate
	if req.MaintenanceMarginRate != "" {
		if mmr, err = numparse.Decimal(req.MaintenanceMarginRate); err != nil {
			return nil, err
		}
	}

	res, err := calc.LiquidationPrice(side, entry, leverage, mmr)
	if err != nil {
		return nil, err
	}
	metrics.CalculationsTotal.WithLabelValues("liquidation", "ok").Inc()
	return map[string]any{
		"liquidation_price": price(res.Price),
		"simplified":        res.Simplified,
	}, nil
}

func (s *Service) computeTargetAverage(_ context.Context, req targetAverageRequest) (any, error) {
	cp, err := numparse.Decimal(req.CurrentPrice)
	if err != nil {
		return nil, err
	}
	cq, err := numparse.Decimal(req.CurrentQuantity)
	if err != nil {
		return nil, err
	}
	target, err := numparse.Decimal(req.TargetAverage)
	if err != nil {
		return nil, err
	}
	np, err := numparse.Decimal(req.NewPrice)
	if err != nil {
		return nil, err
	}

	res, err := calc.TargetAverage(cp, cq, target, np)
	if err != nil {
		return nil, err
	}
	metrics.CalculationsTotal.WithLabelValues("target-average", string(res.Outcome)).Inc()
	return map[string]any{
		"outcome":  res.Outcome,
		"quantity": price(res.Quantity),
	}, nil
}

func (s *Service) computeBreach(ctx context.Context, req breachRequest) (any, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}
	avg, err := numparse.Decimal(req.AverageEntry)
	if err != nil {
		return nil, err
	}
	qty, err := numparse.Decimal(req.Quantity)
	if err != nil {
		return nil, err
	}
	remaining, err := optionalDecimal(req.RemainingDrawdown)
	if err != nil {
		return nil, err
	}
	daily, err := optionalDecimal(req.DailyLossRemaining)
	if err != nil {
		return nil, err
	}
	spec, err := s.resolveSpec(ctx, req.Instrument)
	if err != nil {
		return nil, err
	}

	res, err := propfirm.BreachPrice(propfirm.BreachQuery{
		Side:               side,
		AverageEntry:       avg,
		Quantity:           qty,
		RemainingDrawdown:  remaining,
		DailyLossRemaining: daily,
		Spec:               spec,
	})
	if err != nil {
		return nil, err
	}
	metrics.CalculationsTotal.WithLabelValues("breach", "ok").Inc()
	return map[string]any{
		"max_adverse_move":    price(res.MaxAdverseMove),
		"breach_price":        price(res.BreachPrice),
		"unit":                res.Unit,
		"effective_remaining": money(res.EffectiveRemaining),
	}, nil
}

func (s *Service) computeRisk(ctx context.Context, req riskRequest) (any, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}
	legs := make([]calc.Leg, 0, len(req.Legs))
	for _, in := range req.Legs {
		leg, err := parseLeg(in)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}
	stop, err := numparse.Decimal(req.StopPrice)
	if err != nil {
		return nil, err
	}
	spec, err := s.resolveSpec(ctx, req.Instrument)
	if err != nil {
		return nil, err
	}

	avg, err := calc.AverageEntry(legs)
	if err != nil {
		return nil, err
	}
	risk, err := propfirm.RiskToStop(side, avg.AveragePrice, avg.TotalQuantity, stop, spec)
	if err != nil {
		return nil, err
	}
	metrics.CalculationsTotal.WithLabelValues("risk", "ok").Inc()
	return map[string]any{
		"risk":           money(risk),
		"unit":           spec.Unit(),
		"average_price":  price(avg.AveragePrice),
		"total_quantity": price(avg.TotalQuantity),
	}, nil
}

// --- HTTP handlers ---

// AverageEntry handles POST /api/v1/calc/average-entry
func (s *Service) AverageEntry(w http.ResponseWriter, r *http.Request) {
	var req averageEntryRequest
	if !decode(w, r, &req) {
		return
	}
	s.finish(r.Context(), w, "average-entry", func(ctx context.Context) (any, error) {
		return s.computeAverageEntry(ctx, req)
	})
}

// PnL handles POST /api/v1/calc/pnl
func (s *Service) PnL(w http.ResponseWriter, r *http.Request) {
	var req pnlRequest
	if !decode(w, r, &req) {
		return
	}
	s.finish(r.Context(), w, "pnl", func(ctx context.Context) (any, error) {
		return s.computePnL(ctx, req)
	})
}

// MarkPnL handles POST /api/v1/calc/mark-pnl
func (s *Service) MarkPnL(w http.ResponseWriter, r *http.Request) {
	var req markPnLRequest
	if !decode(w, r, &req) {
		return
	}
	s.finish(r.Context(), w, "mark-pnl", func(ctx context.Context) (any, error) {
		return s.computeMarkPnL(ctx, req)
	})
}

// Liquidation handles POST /api/v1/calc/liquidation
func (s *Service) Liquidation(w http.ResponseWriter, r *http.Request) {
	var req liquidationRequest
	if !decode(w, r, &req) {
		return
	}
	s.finish(r.Context(), w, "liquidation", func(ctx context.Context) (any, error) {
		return s.computeLiquidation(ctx, req)
	})
}

// TargetAverage handles POST /api/v1/calc/target-average
func (s *Service) TargetAverage(w http.ResponseWriter, r *http.Request) {
	var req targetAverageRequest
	if !decode(w, r, &req) {
		return
	}
	s.finish(r.Context(), w, "target-average", func(ctx context.Context) (any, error) {
		return s.computeTargetAverage(ctx, req)
	})
}

// Breach handles POST /api/v1/calc/breach
func (s *Service) Breach(w http.ResponseWriter, r *http.Request) {
	var req breachRequest
	if !decode(w, r, &req) {
		return
	}
	s.finish(r.Context(), w, "breach", func(ctx context.Context) (any, error) {
		return s.computeBreach(ctx, req)
	})
}

// Risk handles POST /api/v1/calc/risk
func (s *Service) Risk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if !decode(w, r, &req) {
		return
	}
	s.finish(r.Context(), w, "risk", func(ctx context.Context) (any, error) {
		return s.computeRisk(ctx, req)
	})
}

// ListPresets handles GET /api/v1/presets
func (s *Service) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.store.ListPresets(r.Context())
	if err != nil {
		writeError(w, "failed to list presets", http.StatusInternalServerError)
		return
	}
	if presets == nil {
		presets = []model.Preset{}
	}
	writeJSON(w, http.StatusOK, presets)
}

// GetPreset handles GET /api/v1/presets/{symbol}
func (s *Service) GetPreset(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	p, err := s.store.GetPreset(r.Context(), symbol)
	if err != nil {
		writeError(w, "preset not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpsertPreset handles PUT /api/v1/presets/{symbol}
func (s *Service) UpsertPreset(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	var p model.Preset
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p.Symbol = symbol

	if err := p.Spec.Validate(); err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.store.UpsertPreset(r.Context(), &p); err != nil {
		writeError(w, "failed to store preset", http.StatusInternalServerError)
		return
	}

	slog.Info("preset upserted", "symbol", symbol, "kind", p.Spec.Kind)
	writeJSON(w, http.StatusOK, p)
}

// --- Response plumbing ---

// finish runs a compute function and maps its outcome onto the wire:
// result with 200, validation failure with 422 and no result body.
func (s *Service) finish(ctx context.Context, w http.ResponseWriter, name string, compute func(context.Context) (any, error)) {
	result, err := compute(ctx)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, store.ErrPresetNotFound) {
			status = http.StatusNotFound
		} else {
			metrics.ValidationFailures.WithLabelValues(name).Inc()
		}
		writeError(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decode reads a JSON body, answering 400 on malformed input.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
