package parking

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatchLine(t *testing.T) {
	cmd, err := ParseBatchLine("2023/07/04 11:12 [1234ABC] Park", time.UTC)
	require.NoError(t, err)

	assert.Equal(t, ActionPark, cmd.Action)
	assert.Equal(t, "1234ABC", cmd.Plate)
	assert.Equal(t, time.Date(2023, 7, 4, 11, 12, 0, 0, time.UTC), cmd.Timestamp)
	assert.Equal(t, "2023/07/04 11:12 [1234ABC] Park", cmd.Raw)
}

func TestParseBatchLineUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)

	cmd, err := ParseBatchLine("2023/07/04 09:00 [1234ABC] Depart", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC), cmd.Timestamp.UTC())
}

func TestParseBatchLineErrors(t *testing.T) {
	for _, line := range []string{
		"2023/07/04 11:12 [1234ABC]",
		"2023/07/04 11:12 [1234ABC] Park now",
		"2023-07-04 11:12 [1234ABC] Park",
		"2023/13/04 11:12 [1234ABC] Park",
	} {
		_, err := ParseBatchLine(line, time.UTC)
		assert.ErrorIs(t, err, ErrMalformedCommand, "line %q", line)
	}
}

func TestParseBatchLineKeepsUnbracketedPlate(t *testing.T) {
	cmd, err := ParseBatchLine("2023/07/04 11:12 [1234ABC Park", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "[1234ABC", cmd.Plate)
}

func TestBatchRunnerSampleCommands(t *testing.T) {
	d, telemetry := newTestDispatcher(t, 3)
	runner := NewBatchRunner(d, time.UTC, telemetry.TelemetryProvider)

	var out bytes.Buffer
	require.NoError(t, runner.RunLines(context.Background(), SampleCommands, &out))

	assert.Equal(t, strings.Join([]string{
		"2023/07/04 11:12 [1234ABC] Park - Car parked.",
		"2023/07/04 12:34 [282E98Z] Park - Car parked.",
		"2023/07/04 13:45 [3EZKNE8] Park - Car parked.",
		"2023/07/04 13:45 [49LKB9D] Park - Parking lot is full.",
		"2023/07/04 14:42 [1234ABC] Depart - Car departed. Fee: 1200",
	}, "\n")+"\n", out.String())
}

func TestBatchRunnerDegradesBadLines(t *testing.T) {
	d, telemetry := newTestDispatcher(t, 3)
	runner := NewBatchRunner(d, time.UTC, telemetry.TelemetryProvider)

	input := strings.Join([]string{
		"garbage",
		"",
		"2023/07/04 11:12 [1234abc] Park",
		"2023/07/04 11:12 [1234ABC] Reserve",
		"2023/07/04 11:12 [12] Leave",
		"2023/07/04 11:12 [1234ABC] Depart",
		"2023/07/04 11:12 [1234ABC] Park",
		"2023/07/05 11:12 [1234ABC] Park",
		"2023/07/05 11:13 [1234ABC] Depart",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, runner.Run(context.Background(), strings.NewReader(input), &out))

	assert.Equal(t, []string{
		"garbage - Invalid command.",
		"2023/07/04 11:12 [1234abc] Park - Invalid license plate format.",
		"2023/07/04 11:12 [1234ABC] Reserve - Invalid command.",
		"2023/07/04 11:12 [12] Leave - Invalid command.",
		"2023/07/04 11:12 [1234ABC] Depart - Car not found.",
		"2023/07/04 11:12 [1234ABC] Park - Car parked.",
		"2023/07/05 11:12 [1234ABC] Park - Car is already parked.",
		"2023/07/05 11:13 [1234ABC] Depart - Car departed. Fee: 4300",
	}, strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n"))
}

func TestBatchRunnerContinuesPastOverlongLine(t *testing.T) {
	d, telemetry := newTestDispatcher(t, 3)
	runner := NewBatchRunner(d, time.UTC, telemetry.TelemetryProvider)

	long := strings.Repeat("x", 70000)
	input := "2023/07/04 11:12 [1234ABC] Park\n" + long + "\n2023/07/04 12:34 [282E98Z] Park"

	var out bytes.Buffer
	require.NoError(t, runner.Run(context.Background(), strings.NewReader(input), &out))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2023/07/04 11:12 [1234ABC] Park - Car parked.", lines[0])
	assert.Equal(t, long+" - Invalid command.", lines[1])
	assert.Equal(t, "2023/07/04 12:34 [282E98Z] Park - Car parked.", lines[2])
	assert.True(t, d.IsParked("282E98Z"))
}

func TestBatchRunnerHandlesCRLF(t *testing.T) {
	d, telemetry := newTestDispatcher(t, 3)
	runner := NewBatchRunner(d, time.UTC, telemetry.TelemetryProvider)

	var out bytes.Buffer
	require.NoError(t, runner.Run(context.Background(),
		strings.NewReader("2023/07/04 11:12 [1234ABC] Park\r\n\r\n"), &out))
	assert.Equal(t, "2023/07/04 11:12 [1234ABC] Park - Car parked.\n", out.String())
}

func TestBatchRunnerCancelled(t *testing.T) {
	d, telemetry := newTestDispatcher(t, 3)
	runner := NewBatchRunner(d, time.UTC, telemetry.TelemetryProvider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := runner.RunLines(ctx, SampleCommands, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
