package parking

import (
	"time"

	"github.com/google/uuid"
)

// Entry is the ledger record of a parked vehicle.
type Entry struct {
	Vehicle   Vehicle
	Ticket    uuid.UUID
	ArrivedAt time.Time
}

func NewEntry(plate string, arrivedAt time.Time) *Entry {
	return &Entry{
		Vehicle:   *NewVehicle(plate),
		Ticket:    uuid.New(),
		ArrivedAt: arrivedAt,
	}
}

type Receipt struct {
	Plate      string
	Ticket     uuid.UUID
	ArrivedAt  time.Time
	DepartedAt time.Time
	Hours      int
	Fee        int
}

func (e *Entry) Close(departedAt time.Time) Receipt {
	hours := BillableHours(e.ArrivedAt, departedAt)
	return Receipt{
		Plate:      e.Vehicle.Plate,
		Ticket:     e.Ticket,
		ArrivedAt:  e.ArrivedAt,
		DepartedAt: departedAt,
		Hours:      hours,
		Fee:        ComputeFee(hours),
	}
}

// Backdated reports whether the departure was stamped before the arrival.
func (r Receipt) Backdated() bool {
	return r.DepartedAt.Before(r.ArrivedAt)
}
