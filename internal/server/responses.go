package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"parking-ledger/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// LedgerRequest is the body of park and depart calls. A missing timestamp
// means now.
type LedgerRequest struct {
	Plate     string     `json:"plate" validate:"required,plate"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type ParkResponse struct {
	Plate     string    `json:"plate"`
	Ticket    string    `json:"ticket"`
	ArrivedAt time.Time `json:"arrived_at"`
}

type DepartResponse struct {
	Plate      string    `json:"plate"`
	Ticket     string    `json:"ticket"`
	ArrivedAt  time.Time `json:"arrived_at"`
	DepartedAt time.Time `json:"departed_at"`
	Hours      int       `json:"hours"`
	Fee        int       `json:"fee"`
}

type VehicleStatus struct {
	Plate     string    `json:"plate"`
	Ticket    string    `json:"ticket"`
	ArrivedAt time.Time `json:"arrived_at"`
}

type StatusResponse struct {
	Capacity  int             `json:"capacity"`
	Occupied  int             `json:"occupied"`
	Available int             `json:"available"`
	Summary   string          `json:"summary"`
	Vehicles  []VehicleStatus `json:"vehicles"`
}

type FeeQuoteResponse struct {
	Hours int `json:"hours"`
	Fee   int `json:"fee"`
}

type BatchResponse struct {
	Results []string `json:"results"`
}

func newVehicleStatus(e parking.Entry) VehicleStatus {
	return VehicleStatus{
		Plate:     e.Vehicle.Plate,
		Ticket:    e.Ticket.String(),
		ArrivedAt: e.ArrivedAt,
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
