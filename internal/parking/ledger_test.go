package parking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2023, 7, 4, 9, 0, 0, 0, time.UTC)

func newLedger(t *testing.T, capacity int) *Ledger {
	t.Helper()
	l, err := NewLedger(capacity)
	require.NoError(t, err)
	return l
}

func TestNewLedger(t *testing.T) {
	l := newLedger(t, 6)

	assert.Equal(t, 6, l.Capacity())
	assert.Equal(t, 0, l.Occupied())
	assert.Equal(t, 6, l.Available())
}

func TestNewLedgerRejectsNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := NewLedger(capacity)
		assert.Error(t, err, "capacity %d", capacity)
	}
}

func TestLedgerPark(t *testing.T) {
	l := newLedger(t, 3)

	entry, err := l.Park("1234ABC", t0)
	require.NoError(t, err)

	assert.Equal(t, "1234ABC", entry.Vehicle.Plate)
	assert.True(t, entry.ArrivedAt.Equal(t0))
	assert.True(t, l.IsParked("1234ABC"))
}

func TestLedgerParkAlreadyParked(t *testing.T) {
	l := newLedger(t, 3)
	_, err := l.Park("1234ABC", t0)
	require.NoError(t, err)

	_, err = l.Park("1234ABC", t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyParked)

	entry, ok := l.Lookup("1234ABC")
	require.True(t, ok)
	assert.True(t, entry.ArrivedAt.Equal(t0), "first arrival must be kept")
}

func TestLedgerParkFull(t *testing.T) {
	l := newLedger(t, 3)
	for _, plate := range []string{"AAAAAA1", "AAAAAA2", "AAAAAA3"} {
		_, err := l.Park(plate, t0)
		require.NoError(t, err)
	}

	_, err := l.Park("AAAAAA4", t0)
	assert.ErrorIs(t, err, ErrLotFull)
	assert.Equal(t, 3, l.Occupied())
	assert.False(t, l.IsParked("AAAAAA4"))
}

func TestLedgerAlreadyParkedWinsOverFull(t *testing.T) {
	l := newLedger(t, 1)
	_, err := l.Park("AAAAAA1", t0)
	require.NoError(t, err)

	_, err = l.Park("AAAAAA1", t0)
	assert.ErrorIs(t, err, ErrAlreadyParked)
}

func TestLedgerDepart(t *testing.T) {
	l := newLedger(t, 3)
	parked, err := l.Park("1234ABC", t0)
	require.NoError(t, err)

	receipt, err := l.Depart("1234ABC", t0.Add(13*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2300, receipt.Fee)
	assert.Equal(t, 13, receipt.Hours)
	assert.Equal(t, parked.Ticket, receipt.Ticket)
	assert.False(t, l.IsParked("1234ABC"))
}

func TestLedgerDepartNotFound(t *testing.T) {
	l := newLedger(t, 3)
	_, err := l.Park("1234ABC", t0)
	require.NoError(t, err)

	_, err = l.Depart("282E98Z", t0)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, l.Occupied())
	assert.True(t, l.IsParked("1234ABC"))
}

func TestLedgerDepartBeforeArrival(t *testing.T) {
	l := newLedger(t, 3)
	_, err := l.Park("1234ABC", t0)
	require.NoError(t, err)

	receipt, err := l.Depart("1234ABC", t0.Add(-2*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 0, receipt.Hours)
	assert.Equal(t, 0, receipt.Fee)
	assert.True(t, receipt.Backdated())
	assert.False(t, l.IsParked("1234ABC"))
}

func TestLedgerReparkIsFreshArrival(t *testing.T) {
	l := newLedger(t, 3)
	first, err := l.Park("1234ABC", t0)
	require.NoError(t, err)
	_, err = l.Depart("1234ABC", t0.Add(time.Hour))
	require.NoError(t, err)

	second, err := l.Park("1234ABC", t0.Add(5*time.Hour))
	require.NoError(t, err)

	assert.True(t, second.ArrivedAt.Equal(t0.Add(5*time.Hour)))
	assert.NotEqual(t, first.Ticket, second.Ticket)
}

func TestLedgerScenario(t *testing.T) {
	l := newLedger(t, 3)

	for _, plate := range []string{"AAAAAAA", "BBBBBBB", "CCCCCCC"} {
		_, err := l.Park(plate, t0)
		require.NoError(t, err, "Park(%s)", plate)
	}

	_, err := l.Park("DDDDDDD", t0)
	require.ErrorIs(t, err, ErrLotFull)

	receipt, err := l.Depart("AAAAAAA", t0.Add(13*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2300, receipt.Fee)

	_, err = l.Park("DDDDDDD", t0.Add(13*time.Hour))
	assert.NoError(t, err)
}

func TestLedgerSnapshot(t *testing.T) {
	l := newLedger(t, 3)

	assert.Equal(t, "Currently no cars in the parking lot.", FormatSnapshot(l.Snapshot()))

	_, err := l.Park("ZZZ0001", t0)
	require.NoError(t, err)
	_, err = l.Park("AAA0001", t0)
	require.NoError(t, err)

	plates := l.Snapshot()
	assert.Equal(t, []string{"AAA0001", "ZZZ0001"}, plates)
	assert.Equal(t, "Cars in the parking lot: AAA0001, ZZZ0001", FormatSnapshot(plates))

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "AAA0001", entries[0].Vehicle.Plate)
}
