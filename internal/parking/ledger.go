package parking

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const DefaultCapacity = 3

// Ledger records the vehicles currently in the lot and when each arrived.
// It is not safe for concurrent use; callers that share one serialize access.
type Ledger struct {
	capacity int
	parked   map[string]*Entry
}

func NewLedger(capacity int) (*Ledger, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be greater than 0, got %d", capacity)
	}

	return &Ledger{
		capacity: capacity,
		parked:   make(map[string]*Entry, capacity),
	}, nil
}

// Park records plate as arriving at ts. The plate is assumed to be valid.
func (l *Ledger) Park(plate string, ts time.Time) (*Entry, error) {
	if l.IsParked(plate) {
		return nil, ErrAlreadyParked
	}
	if len(l.parked) >= l.capacity {
		return nil, ErrLotFull
	}

	entry := NewEntry(plate, ts)
	l.parked[plate] = entry
	return entry, nil
}

// Depart removes plate from the lot and bills the stay up to ts.
func (l *Ledger) Depart(plate string, ts time.Time) (Receipt, error) {
	entry, ok := l.parked[plate]
	if !ok {
		return Receipt{}, ErrNotFound
	}

	delete(l.parked, plate)
	return entry.Close(ts), nil
}

func (l *Ledger) IsParked(plate string) bool {
	_, ok := l.parked[plate]
	return ok
}

func (l *Ledger) Lookup(plate string) (Entry, bool) {
	entry, ok := l.parked[plate]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Snapshot returns the parked plates in ascending order.
func (l *Ledger) Snapshot() []string {
	plates := make([]string, 0, len(l.parked))
	for plate := range l.parked {
		plates = append(plates, plate)
	}

	sort.Strings(plates)

	return plates
}

// Entries returns the parked entries ordered by plate.
func (l *Ledger) Entries() []Entry {
	entries := make([]Entry, 0, len(l.parked))
	for _, plate := range l.Snapshot() {
		entries = append(entries, *l.parked[plate])
	}
	return entries
}

func (l *Ledger) Capacity() int {
	return l.capacity
}

func (l *Ledger) Occupied() int {
	return len(l.parked)
}

func (l *Ledger) Available() int {
	return l.capacity - len(l.parked)
}

// FormatSnapshot renders plates for display.
func FormatSnapshot(plates []string) string {
	if len(plates) == 0 {
		return "Currently no cars in the parking lot."
	}
	return "Cars in the parking lot: " + strings.Join(plates, ", ")
}
