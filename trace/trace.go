/*
 * jacovm - A Java virtual machine core
 * Package trace is a separate call-site tracer: distinct from log's
 * leveled messages, Trace/Error write unconditionally to the configured
 * sink, used for the always-interesting instruction-by-instruction
 * execution trace (enabled by -trace) and hard failures that must be
 * visible even when -verbose is off.
 */
package trace

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	out   io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
	mu    sync.Mutex
)

// Init resets the trace sinks to stdout/stderr; tests redirect os.Stdout/
// os.Stderr themselves and then call Init.
func Init() {
	mu.Lock()
	defer mu.Unlock()
	out = os.Stdout
	errOut = os.Stderr
}

// Trace writes an informational trace line (e.g. class-loading progress,
// per-instruction execution trace) to the trace sink.
func Trace(msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, msg)
}

// Error writes a hard-failure line to the error sink regardless of the
// current log verbosity.
func Error(msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(errOut, msg)
}
