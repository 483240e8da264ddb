package logkit

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// crashHandle is the process-wide crash logger target. Last registration
// wins; there is no teardown path.
var crashHandle atomic.Pointer[Handle]

// InstallCrashLogger registers h as the logger RecoverPanics routes panics
// through. Setup calls this when CatchPanics is enabled; it is also usable
// as an explicit opt-in.
func (h *Handle) InstallCrashLogger() {
	crashHandle.Store(h)
}

// RecoverPanics logs an in-flight panic at CRITICAL with its stack, then
// re-panics so the process still crashes the default way. Interactive
// cancellation is signal-driven in Go and never enters the panic path, so it
// is never swallowed here.
//
// Use it deferred at the top of main (or any goroutine entry point):
//
//	defer logkit.RecoverPanics()
func RecoverPanics() {
	v := recover()
	if v == nil {
		return
	}
	if h := crashHandle.Load(); h != nil {
		h.root.WithLevel(zerolog.FatalLevel).
			Interface("panic", v).
			Str("stack", stackTrace(4, 32)).
			Msg("uncaught panic")
	}
	panic(v)
}

func stackTrace(skip, maxFrames int) string {
	if maxFrames <= 0 {
		maxFrames = 16
	}
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	i := 0
	for {
		fr, more := frames.Next()
		if fr.File != "" {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(fr.Function)
			b.WriteString("\n  ")
			b.WriteString(fr.File)
			b.WriteString(":")
			b.WriteString(strconv.Itoa(fr.Line))
			i++
		}
		if !more || i >= maxFrames {
			break
		}
	}
	return b.String()
}
