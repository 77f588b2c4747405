package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BatchTimeLayout is the timestamp layout of a batch command line.
const BatchTimeLayout = "2006/01/02 15:04"

// SampleCommands is the batch run used when no input file is given.
var SampleCommands = []string{
	"2023/07/04 11:12 [1234ABC] Park",
	"2023/07/04 12:34 [282E98Z] Park",
	"2023/07/04 13:45 [3EZKNE8] Park",
	"2023/07/04 13:45 [49LKB9D] Park",
	"2023/07/04 14:42 [1234ABC] Depart",
}

// ParseBatchLine reads "YYYY/MM/DD HH:MM [PLATE] Action" with the time
// interpreted in loc. Unknown actions parse successfully and are rejected
// when dispatched.
func ParseBatchLine(line string, loc *time.Location) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) != 4 {
		return Command{}, fmt.Errorf("%w: want 4 fields, got %d", ErrMalformedCommand, len(parts))
	}

	ts, err := time.ParseInLocation(BatchTimeLayout, parts[0]+" "+parts[1], loc)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	return Command{
		Action:    Action(parts[3]),
		Plate:     stripBrackets(parts[2]),
		Timestamp: ts,
		Raw:       line,
	}, nil
}

func stripBrackets(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return s[1 : len(s)-1]
	}
	return s
}

type BatchRunner struct {
	dispatcher *Dispatcher
	location   *time.Location
	telemetry  *TelemetryProvider
}

func NewBatchRunner(dispatcher *Dispatcher, loc *time.Location, telemetry *TelemetryProvider) *BatchRunner {
	if loc == nil {
		loc = time.Local
	}

	return &BatchRunner{
		dispatcher: dispatcher,
		location:   loc,
		telemetry:  telemetry,
	}
}

// Run processes every non-blank line of r in order, writing one
// "<line> - <outcome>" line per command to w. Lines have no length limit;
// an unparsable line is reported and the run continues.
func (b *BatchRunner) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	ctx, span := b.telemetry.Tracer().Start(ctx, "batch.run")
	defer span.End()

	reader := bufio.NewReader(r)
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}

		if line := strings.TrimSpace(raw); line != "" {
			if _, err := fmt.Fprintf(w, "%s - %s\n", line, b.Process(ctx, line)); err != nil {
				return err
			}
			processed++
		}

		if readErr != nil {
			break
		}
	}

	span.SetAttributes(attribute.Int("batch.commands", processed))
	return nil
}

// RunLines is Run over an in-memory list of commands.
func (b *BatchRunner) RunLines(ctx context.Context, lines []string, w io.Writer) error {
	return b.Run(ctx, strings.NewReader(strings.Join(lines, "\n")), w)
}

// Process dispatches one batch line and returns the outcome message.
func (b *BatchRunner) Process(ctx context.Context, line string) string {
	ctx, span := b.telemetry.Tracer().Start(ctx, "batch.process_line",
		trace.WithAttributes(attribute.String("command.input", line)))
	defer span.End()

	cmd, err := ParseBatchLine(line, b.location)
	if err != nil {
		span.RecordError(err)
		return Outcome{Kind: OutcomeUnknownAction, Err: err}.Message()
	}

	// Batch commands are rejected on the action before the plate is looked at.
	if cmd.Action != ActionPark && cmd.Action != ActionDepart {
		span.AddEvent("unknown_action")
		return Outcome{Kind: OutcomeUnknownAction, Command: cmd, Err: ErrUnknownAction}.Message()
	}

	return b.dispatcher.Handle(ctx, cmd).Message()
}
