package trace

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/rwwiv/trimark/gc"
)

func newTestTracer(buf *bytes.Buffer) *Tracer {
	return &Tracer{enabled: true, out: buf, log: log.New(buf, "[trimark] ", 0)}
}

func TestPrintfNoopWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	tr := &Tracer{enabled: false, out: &buf, log: log.New(&buf, "[trimark] ", 0)}
	tr.Printf("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("disabled tracer wrote %q, want nothing", buf.String())
	}
}

func TestStartMarkingFormatsSizes(t *testing.T) {
	var buf bytes.Buffer
	tr := newTestTracer(&buf)
	tr.StartMarking(1<<20, 2<<20)
	if !strings.Contains(buf.String(), "old generation") {
		t.Fatalf("start line = %q, missing expected phrase", buf.String())
	}
}

func TestStepNamesOrigin(t *testing.T) {
	var buf bytes.Buffer
	tr := newTestTracer(&buf)
	tr.Step(gc.StepOriginTask, 1024, 2048, 1.5)
	if !strings.Contains(buf.String(), "in task") {
		t.Fatalf("step line for a task origin = %q, want it to name the task origin", buf.String())
	}

	buf.Reset()
	tr.Step(gc.StepOriginMainThread, 1024, 2048, 1.5)
	if !strings.Contains(buf.String(), "on main thread") {
		t.Fatalf("step line for the main-thread origin = %q, want it to name that origin", buf.String())
	}
}

func TestCompleteDistinguishesHurry(t *testing.T) {
	var buf bytes.Buffer
	tr := newTestTracer(&buf)
	tr.Complete(true, 42)
	if !strings.Contains(buf.String(), "hurry") {
		t.Fatalf("complete(hurried) line = %q, want it to mention hurry", buf.String())
	}

	buf.Reset()
	tr.Complete(false, 0)
	if !strings.Contains(buf.String(), "normal") {
		t.Fatalf("complete(normal) line = %q, want it to mention normal", buf.String())
	}
}

func TestColorizeWrapsAnsiCode(t *testing.T) {
	got := Colorize(gc.Black, "x")
	if !strings.HasPrefix(got, "\x1b[30;1m") || !strings.HasSuffix(got, "\x1b[0m") {
		t.Fatalf("colorize(black, x) = %q, want it wrapped in the black SGR code", got)
	}
}

func TestBytesHumanUnits(t *testing.T) {
	got := Bytes(1536)
	if !strings.Contains(got, "K") {
		t.Fatalf("bytes(1536) = %q, want it expressed in KB/KiB rather than raw bytes", got)
	}
	if got == "1536" {
		t.Fatalf("bytes(1536) = %q, want a human-formatted size, not the raw byte count", got)
	}
}
