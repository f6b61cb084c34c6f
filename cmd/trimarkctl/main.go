// Command trimarkctl is an interactive console over a gc.Heap/gc.Marker
// pair: start/step/write/dump/load/status, tokenized the way a
// shell-like debugger console reads commands.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-tty"

	"github.com/rwwiv/trimark/config"
	"github.com/rwwiv/trimark/gc"
	"github.com/rwwiv/trimark/heapfile"
	"github.com/rwwiv/trimark/trace"
)

func main() {
	flagsPath := flag.String("flags", "", "path to a YAML flags file (default: gc.DefaultFlags())")
	snapshotPath := flag.String("load", "", "path to a heap snapshot to load at startup")
	flag.Parse()

	flags := gc.DefaultFlags()
	if *flagsPath != "" {
		loaded, err := config.Load(*flagsPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "trimarkctl:", err)
			os.Exit(1)
		}
		flags = loaded
	}

	var heap *gc.Heap
	var marker *gc.Marker
	if *snapshotPath != "" {
		snap, err := heapfile.Load(*snapshotPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "trimarkctl:", err)
			os.Exit(1)
		}
		heap, marker = heapfile.FromSnapshot(snap)
	} else {
		heap = gc.NewHeap()
		marker = gc.NewMarker(heap, flags)
	}

	interactive := isatty.IsTerminal(os.Stdin.Fd())
	console := &console{
		heap:   heap,
		marker: marker,
		tracer: trace.New(true),
		out:    colorable.NewColorableStdout(),
	}

	if interactive {
		console.runInteractive()
		return
	}
	console.runPiped()
}

// console holds the live heap/marker a REPL session operates on, plus
// the writer commands print results to.
type console struct {
	heap   *gc.Heap
	marker *gc.Marker
	tracer *trace.Tracer
	out    io.Writer
}

// runInteractive opens the TTY via go-tty (closing it on return) but
// reads nothing through it; line editing is left to the terminal's own
// cooked-mode echo, so the REPL reads lines with bufio like the piped
// path, adding a banner and a prompt.
func (c *console) runInteractive() {
	t, err := tty.Open()
	if err == nil {
		defer t.Close()
	}

	fmt.Fprintln(c.out, "trimarkctl -- incremental marking console. type 'help' for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(c.out, "trimark> ")
		if !scanner.Scan() {
			return
		}
		c.dispatch(scanner.Text())
	}
}

func (c *console) runPiped() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		c.dispatch(scanner.Text())
	}
}

func (c *console) dispatch(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	args, err := shlex.Split(line)
	if err != nil || len(args) == 0 {
		fmt.Fprintln(c.out, "trimarkctl: unparsable command:", line)
		return
	}

	switch args[0] {
	case "help":
		c.help()
	case "start":
		c.marker.Start(gc.GCReason("console"), true, false)
		fmt.Fprintln(c.out, "state:", c.marker.State())
	case "step":
		c.cmdStep(args[1:])
	case "write":
		c.cmdWrite(args[1:])
	case "status":
		c.cmdStatus()
	case "dump":
		c.cmdDump(args[1:])
	case "load":
		c.cmdLoad(args[1:])
	case "finalize":
		c.marker.Finalize()
		fmt.Fprintln(c.out, "state:", c.marker.State())
	case "quit", "exit":
		os.Exit(0)
	default:
		fmt.Fprintln(c.out, "trimarkctl: unknown command:", args[0])
	}
}

func (c *console) help() {
	fmt.Fprintln(c.out, `commands:
  start                 activate incremental marking
  step <bytes>          process up to <bytes> of marking work (e.g. 64KiB)
  write <host> <field> <value>   record a store through the write barrier
  status                print marker state, worklist size, compaction flag
  dump <path>           save a heap snapshot
  load <path>           load a heap snapshot, replacing the live heap
  finalize              hurry and stop marking
  quit`)
}

func (c *console) cmdStep(args []string) {
	var budget uintptr = 64 * 1024
	if len(args) > 0 {
		n, err := parseByteSize(args[0])
		if err != nil {
			fmt.Fprintln(c.out, "trimarkctl:", err)
			return
		}
		budget = n
	}
	processed := c.marker.Step(budget, gc.GCViaStackGuard, gc.DoNotForceCompletion, gc.StepOriginMainThread)
	c.tracer.Step(gc.StepOriginMainThread, processed, budget, 0)
	fmt.Fprintln(c.out, "processed", trace.Bytes(processed), "state:", c.marker.State())
}

func (c *console) cmdWrite(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(c.out, "usage: write <host-addr> <field-index> <value-addr>")
		return
	}
	host, err1 := strconv.ParseUint(args[0], 0, 64)
	idx, err2 := strconv.Atoi(args[1])
	value, err3 := strconv.ParseUint(args[2], 0, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		fmt.Fprintln(c.out, "trimarkctl: bad address or index")
		return
	}
	obj := c.heap.Object(gc.Address(host))
	if obj == nil {
		fmt.Fprintln(c.out, "trimarkctl: no such object:", args[0])
		return
	}
	if idx < 0 || idx >= len(obj.Fields) {
		fmt.Fprintln(c.out, "trimarkctl: field index out of range")
		return
	}
	obj.Fields[idx] = gc.Address(value)
	if c.marker.ShouldRecordWrite(obj.Addr, gc.Address(value)) {
		c.marker.RecordWrite(obj.Addr, idx, gc.Address(value))
	}
	fmt.Fprintln(c.out, "ok")
}

func (c *console) cmdStatus() {
	fmt.Fprintln(c.out, "state:", c.marker.State())
	fmt.Fprintln(c.out, "worklist size:", c.marker.WorkList().Size())
	fmt.Fprintln(c.out, "is compacting:", c.marker.IsCompacting())
}

func (c *console) cmdDump(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "usage: dump <path>")
		return
	}
	snap := heapfile.ToSnapshot(c.heap, c.marker)
	if err := heapfile.Save(args[0], snap); err != nil {
		fmt.Fprintln(c.out, "trimarkctl:", err)
		return
	}
	fmt.Fprintln(c.out, "saved", args[0])
}

func (c *console) cmdLoad(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "usage: load <path>")
		return
	}
	snap, err := heapfile.Load(args[0])
	if err != nil {
		fmt.Fprintln(c.out, "trimarkctl:", err)
		return
	}
	c.heap, c.marker = heapfile.FromSnapshot(snap)
	fmt.Fprintln(c.out, "loaded", args[0])
}

// parseByteSize accepts plain decimal bytes or a KiB/MiB suffix, the
// shorthand the step command's budget argument uses.
func parseByteSize(s string) (uintptr, error) {
	s = strings.TrimSpace(s)
	mult := uintptr(1)
	switch {
	case strings.HasSuffix(s, "KiB"):
		mult = 1024
		s = strings.TrimSuffix(s, "KiB")
	case strings.HasSuffix(s, "MiB"):
		mult = 1024 * 1024
		s = strings.TrimSuffix(s, "MiB")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad byte size %q", s)
	}
	return uintptr(n) * mult, nil
}
