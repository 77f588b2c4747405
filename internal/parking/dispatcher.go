package parking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Action string

const (
	ActionPark   Action = "Park"
	ActionDepart Action = "Depart"
	ActionAbort  Action = "Abort"
)

// Command is one parsed park or depart request.
type Command struct {
	Action    Action
	Plate     string
	Timestamp time.Time
	// Raw is the input line the command was read from, if any.
	Raw string
}

type OutcomeKind int

const (
	OutcomeParked OutcomeKind = iota
	OutcomeDeparted
	OutcomeAlreadyParked
	OutcomeFull
	OutcomeNotFound
	OutcomeInvalidPlate
	OutcomeUnknownAction
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeParked:
		return "parked"
	case OutcomeDeparted:
		return "departed"
	case OutcomeAlreadyParked:
		return "already_parked"
	case OutcomeFull:
		return "full"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInvalidPlate:
		return "invalid_plate"
	default:
		return "unknown_action"
	}
}

type Outcome struct {
	Kind    OutcomeKind
	Command Command
	Entry   *Entry
	Receipt *Receipt
	Err     error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// Message is the human-readable result line for the event.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeParked:
		return "Car parked."
	case OutcomeDeparted:
		return fmt.Sprintf("Car departed. Fee: %d", o.Receipt.Fee)
	case OutcomeAlreadyParked:
		return "Car is already parked."
	case OutcomeFull:
		return "Parking lot is full."
	case OutcomeNotFound:
		return "Car not found."
	case OutcomeInvalidPlate:
		return "Invalid license plate format."
	default:
		return "Invalid command."
	}
}

type Status struct {
	Capacity  int
	Occupied  int
	Available int
	Entries   []Entry
}

// Dispatcher applies commands to a ledger one at a time. It is the single
// owner of the ledger; every front end goes through it.
type Dispatcher struct {
	mu        sync.Mutex
	ledger    *InstrumentedLedger
	plates    *PlateValidator
	telemetry *TelemetryProvider
}

func NewDispatcher(ledger *InstrumentedLedger, plates *PlateValidator, telemetry *TelemetryProvider) *Dispatcher {
	return &Dispatcher{
		ledger:    ledger,
		plates:    plates,
		telemetry: telemetry,
	}
}

func (d *Dispatcher) Handle(ctx context.Context, cmd Command) Outcome {
	ctx, span := d.telemetry.Tracer().Start(ctx, "dispatcher.handle",
		trace.WithAttributes(
			attribute.String("command.action", string(cmd.Action)),
			attribute.String("vehicle.plate", cmd.Plate),
		))
	defer span.End()

	outcome := d.handle(ctx, cmd)

	span.SetAttributes(attribute.String("outcome", outcome.Kind.String()))
	return outcome
}

func (d *Dispatcher) handle(ctx context.Context, cmd Command) Outcome {
	if err := d.plates.Validate(cmd.Plate); err != nil {
		return Outcome{Kind: OutcomeInvalidPlate, Command: cmd, Err: err}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch cmd.Action {
	case ActionPark:
		entry, err := d.ledger.Park(ctx, cmd.Plate, cmd.Timestamp)
		switch {
		case err == nil:
			return Outcome{Kind: OutcomeParked, Command: cmd, Entry: entry}
		case errors.Is(err, ErrAlreadyParked):
			return Outcome{Kind: OutcomeAlreadyParked, Command: cmd, Err: err}
		default:
			return Outcome{Kind: OutcomeFull, Command: cmd, Err: err}
		}
	case ActionDepart:
		receipt, err := d.ledger.Depart(ctx, cmd.Plate, cmd.Timestamp)
		if err != nil {
			return Outcome{Kind: OutcomeNotFound, Command: cmd, Err: err}
		}
		return Outcome{Kind: OutcomeDeparted, Command: cmd, Receipt: &receipt}
	default:
		return Outcome{
			Kind:    OutcomeUnknownAction,
			Command: cmd,
			Err:     fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action),
		}
	}
}

func (d *Dispatcher) IsParked(plate string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ledger.IsParked(plate)
}

func (d *Dispatcher) Lookup(ctx context.Context, plate string) (Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ledger.Lookup(ctx, plate)
}

func (d *Dispatcher) Snapshot(ctx context.Context) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ledger.Snapshot(ctx)
}

func (d *Dispatcher) Status(ctx context.Context) Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, span := d.telemetry.Tracer().Start(ctx, "dispatcher.status")
	defer span.End()

	return Status{
		Capacity:  d.ledger.Capacity(),
		Occupied:  d.ledger.Occupied(),
		Available: d.ledger.Available(),
		Entries:   d.ledger.Entries(),
	}
}

// ValidatePlate reports whether plate has the accepted format.
func (d *Dispatcher) ValidatePlate(plate string) error {
	return d.plates.Validate(plate)
}
