// Package debug traces toolbar mutations, selection decisions, hook runs and
// config reloads. Tracing is off unless TB_DEBUG is set:
//
//	TB_DEBUG=1 tb --robot-items
//
// The trace goes to stderr unless SetOutput points it elsewhere.
package debug

import (
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const prefix = "[TB_DEBUG] "

var (
	on   atomic.Bool
	mu   sync.Mutex
	sink *log.Logger
)

func init() {
	if os.Getenv("TB_DEBUG") != "" {
		SetEnabled(true)
	}
}

func logger() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if sink == nil {
		sink = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
	return sink
}

// Enabled reports whether tracing is on.
func Enabled() bool { return on.Load() }

// SetEnabled turns tracing on or off.
func SetEnabled(e bool) { on.Store(e) }

// SetOutput sends the trace to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	sink = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
	mu.Unlock()
}

// Log writes one printf-style trace line.
func Log(format string, args ...any) {
	if !Enabled() {
		return
	}
	logger().Printf(format, args...)
}

// LogEnterExit traces entry to name and, when the returned func runs, the
// exit with elapsed time.
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	logger().Printf("-> %s", name)
	start := time.Now()
	return func() { logger().Printf("<- %s (%v)", name, time.Since(start)) }
}

// Dump traces v with its dynamic type.
func Dump(name string, v any) {
	if !Enabled() {
		return
	}
	logger().Printf("%s: %T = %+v", name, v, v)
}
