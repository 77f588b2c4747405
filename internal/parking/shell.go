package parking

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Clock supplies the arrival and departure instants for interactive commands.
type Clock func() time.Time

// Shell is the interactive front end: it reads "<Action> <plate>" lines
// until Abort or end of input.
type Shell struct {
	dispatcher *Dispatcher
	scanner    *bufio.Scanner
	out        io.Writer
	clock      Clock
	telemetry  *TelemetryProvider
}

func NewShell(dispatcher *Dispatcher, in io.Reader, out io.Writer, clock Clock, telemetry *TelemetryProvider) *Shell {
	if clock == nil {
		clock = time.Now
	}

	return &Shell{
		dispatcher: dispatcher,
		scanner:    bufio.NewScanner(in),
		out:        out,
		clock:      clock,
		telemetry:  telemetry,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil {
		s.putInstructions(ctx)

		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))
		done := s.processCommand(cmdCtx, input)
		cmdSpan.End()

		if done {
			break
		}
	}

	span.AddEvent("shell_ended")
}

// processCommand handles one line and reports whether the shell should stop.
func (s *Shell) processCommand(ctx context.Context, input string) bool {
	// Only a bare "Abort" ends the session.
	if input == string(ActionAbort) {
		trace.SpanFromContext(ctx).AddEvent("abort")
		return true
	}

	parts := strings.Fields(input)

	cmd := Command{
		Action:    Action(parts[0]),
		Plate:     parts[len(parts)-1],
		Timestamp: s.clock(),
		Raw:       input,
	}

	outcome := s.dispatcher.Handle(ctx, cmd)
	fmt.Fprintln(s.out, outcome.Message())
	return false
}

func (s *Shell) putInstructions(ctx context.Context) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Park <license plate>")
	fmt.Fprintln(s.out, "Depart <license plate>")
	fmt.Fprintln(s.out, "or Abort")
	fmt.Fprintln(s.out, FormatSnapshot(s.dispatcher.Snapshot(ctx)))
	fmt.Fprintln(s.out)
}
