package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"parking-ledger/internal/parking"
)

const maxBatchBody = 1 << 20

type Handler struct {
	dispatcher  *parking.Dispatcher
	batch       *parking.BatchRunner
	validate    *validator.Validate
	clock       parking.Clock
	serviceName string
}

func NewHandler(dispatcher *parking.Dispatcher, batch *parking.BatchRunner, clock parking.Clock, serviceName string) (*Handler, error) {
	v := validator.New()
	if err := parking.RegisterPlateValidation(v); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}

	return &Handler{
		dispatcher:  dispatcher,
		batch:       batch,
		validate:    v,
		clock:       clock,
		serviceName: serviceName,
	}, nil
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) Park(w http.ResponseWriter, r *http.Request) {
	h.handleLedgerCommand(w, r, parking.ActionPark)
}

func (h *Handler) Depart(w http.ResponseWriter, r *http.Request) {
	h.handleLedgerCommand(w, r, parking.ActionDepart)
}

func (h *Handler) handleLedgerCommand(w http.ResponseWriter, r *http.Request, action parking.Action) {
	ctx := r.Context()

	var req LedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, validationMessage(err))
		return
	}

	ts := h.clock()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	outcome := h.dispatcher.Handle(ctx, parking.Command{
		Action:    action,
		Plate:     req.Plate,
		Timestamp: ts,
	})
	if !outcome.OK() {
		WriteError(ctx, w, outcomeStatus(outcome.Kind), outcome.Message())
		return
	}

	switch outcome.Kind {
	case parking.OutcomeParked:
		WriteSuccess(ctx, w, outcome.Message(), ParkResponse{
			Plate:     outcome.Entry.Vehicle.Plate,
			Ticket:    outcome.Entry.Ticket.String(),
			ArrivedAt: outcome.Entry.ArrivedAt,
		})
	default:
		receipt := outcome.Receipt
		WriteSuccess(ctx, w, outcome.Message(), DepartResponse{
			Plate:      receipt.Plate,
			Ticket:     receipt.Ticket.String(),
			ArrivedAt:  receipt.ArrivedAt,
			DepartedAt: receipt.DepartedAt,
			Hours:      receipt.Hours,
			Fee:        receipt.Fee,
		})
	}
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := h.dispatcher.Status(ctx)

	vehicles := make([]VehicleStatus, 0, len(status.Entries))
	plates := make([]string, 0, len(status.Entries))
	for _, e := range status.Entries {
		vehicles = append(vehicles, newVehicleStatus(e))
		plates = append(plates, e.Vehicle.Plate)
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", StatusResponse{
		Capacity:  status.Capacity,
		Occupied:  status.Occupied,
		Available: status.Available,
		Summary:   parking.FormatSnapshot(plates),
		Vehicles:  vehicles,
	})
}

func (h *Handler) FindVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plate := chi.URLParam(r, "plate")
	if err := h.dispatcher.ValidatePlate(plate); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid license plate format.")
		return
	}

	entry, ok := h.dispatcher.Lookup(ctx, plate)
	if !ok {
		WriteError(ctx, w, http.StatusNotFound, "Car not found.")
		return
	}

	WriteSuccess(ctx, w, "Vehicle found", newVehicleStatus(entry))
}

func (h *Handler) QuoteFee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	hours, err := strconv.Atoi(r.URL.Query().Get("hours"))
	if err != nil || hours < 0 {
		WriteError(ctx, w, http.StatusBadRequest, "hours must be a non-negative integer")
		return
	}

	WriteSuccess(ctx, w, "Fee computed", FeeQuoteResponse{
		Hours: hours,
		Fee:   parking.ComputeFee(hours),
	})
}

// RunBatch applies a text body of batch command lines in order. The body is
// read in full first, so an oversized request changes nothing.
func (h *Handler) RunBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(ctx, w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Batch body exceeds %d bytes", maxBatchBody))
			return
		}
		WriteError(ctx, w, http.StatusBadRequest, fmt.Sprintf("Failed to read batch: %s", err.Error()))
		return
	}

	var out strings.Builder
	if err := h.batch.Run(ctx, bytes.NewReader(body), &out); err != nil {
		WriteError(ctx, w, http.StatusInternalServerError, fmt.Sprintf("Batch interrupted: %s", err.Error()))
		return
	}

	results := []string{}
	if out.Len() > 0 {
		results = strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	}

	WriteSuccess(ctx, w, "Batch processed", BatchResponse{Results: results})
}

func outcomeStatus(kind parking.OutcomeKind) int {
	switch kind {
	case parking.OutcomeParked, parking.OutcomeDeparted:
		return http.StatusOK
	case parking.OutcomeNotFound:
		return http.StatusNotFound
	case parking.OutcomeAlreadyParked, parking.OutcomeFull:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func validationMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case parking.PlateTag:
			messages = append(messages, "Invalid license plate format.")
		default:
			messages = append(messages, fe.Error())
		}
	}
	return strings.Join(messages, "; ")
}
