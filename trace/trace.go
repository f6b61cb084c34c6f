// Package trace formats marker progress for humans: colorized per-state
// lines over a colorable writer (so redirected output and Windows
// consoles both behave), and byte counts in human units.
//
// Step below logs the step's own elapsed duration, not the time since
// marking started.
package trace

import (
	"fmt"
	"io"
	"log"

	"github.com/inhies/go-bytesize"
	"github.com/mattn/go-colorable"

	"github.com/rwwiv/trimark/gc"
)

// colorCode maps a gc.Color to an ANSI SGR code for terminal output.
var colorCode = map[gc.Color]string{
	gc.White:      "37",
	gc.Grey:       "90",
	gc.Black:      "30;1",
	gc.Impossible: "41;97",
}

// Tracer writes [trimark] prefixed lines through a go-colorable writer.
// The lines themselves carry no color codes; Colorize adds them.
type Tracer struct {
	enabled bool
	log     *log.Logger
	out     io.Writer
}

// New creates a Tracer over os.Stdout's colorable wrapper. enabled
// mirrors the trace_incremental_marking flag; when false, every call is
// a no-op.
func New(enabled bool) *Tracer {
	out := colorable.NewColorableStdout()
	return &Tracer{enabled: enabled, out: out, log: log.New(out, "[trimark] ", log.Lmicroseconds)}
}

func (t *Tracer) Printf(format string, args ...interface{}) {
	if !t.enabled {
		return
	}
	t.log.Printf(format, args...)
}

// Colorize always wraps s in the ANSI code for c; go-colorable strips the
// codes itself on non-ANSI consoles, so callers can always emit them.
func Colorize(c gc.Color, s string) string {
	return fmt.Sprintf("\x1b[%sm%s\x1b[0m", colorCode[c], s)
}

// Bytes formats n in human units (KiB/MiB/...) via go-bytesize, the way
// the CLI and step traces report pacer budgets.
func Bytes(n uintptr) string {
	return bytesize.New(float64(n)).String()
}

// StartMarking logs the Start transition.
func (t *Tracer) StartMarking(oldGenSize, limit uintptr) {
	t.Printf("start: old generation %s, limit %s", Bytes(oldGenSize), Bytes(limit))
}

// Step logs a completed marking step.
func (t *Tracer) Step(origin gc.StepOrigin, bytesProcessed, bytesToProcess uintptr, durationMs float64) {
	originName := "on main thread"
	if origin == gc.StepOriginTask {
		originName = "in task"
	}
	t.Printf("step %s %s (%s) in %.1fms", originName, Bytes(bytesProcessed), Bytes(bytesToProcess), durationMs)
}

// Complete logs reaching COMPLETE, either normally or via Hurry.
func (t *Tracer) Complete(hurried bool, durationMs float64) {
	if hurried {
		t.Printf("complete (hurry), spent %.0fms", durationMs)
	} else {
		t.Printf("complete (normal)")
	}
}
