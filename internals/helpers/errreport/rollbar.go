package errreport

import (
	stderrors "errors"
	"log"
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rollbar/rollbar-go"
)

var enabled atomic.Bool

// Init turns Rollbar on when a token is configured.
func Init(token, env, host string) {
	if token == "" {
		log.Println("[INFO] rollbar disabled (no ROLLBAR_TOKEN)")
		return
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	if host != "" {
		rollbar.SetServerHost(host)
	}
	rollbar.SetStackTracer(StackFrames)
	rollbar.SetEnabled(true)
	enabled.Store(true)
	log.Printf("[INFO] rollbar enabled (env=%s)", env)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// StackFrames returns the innermost pkg/errors stack in err's chain.
func StackFrames(err error) ([]runtime.Frame, bool) {
	var st errors.StackTrace
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if t, ok := e.(stackTracer); ok {
			st = t.StackTrace()
		}
	}
	if len(st) == 0 {
		return nil, false
	}

	pcs := make([]uintptr, len(st))
	for i, f := range st {
		pcs[i] = uintptr(f)
	}
	out := make([]runtime.Frame, 0, len(pcs))
	frames := runtime.CallersFrames(pcs)
	for {
		fr, more := frames.Next()
		out = append(out, fr)
		if !more {
			break
		}
	}
	return out, true
}

// Report logs the error with its stack and forwards it to Rollbar when enabled.
func Report(err error, extras map[string]interface{}) {
	if err == nil {
		return
	}
	log.Printf("[ERROR] %+v", err)
	if !enabled.Load() {
		return
	}
	if extras == nil {
		rollbar.Error(err)
		return
	}
	rollbar.Error(err, extras)
}

func Flush() {
	if enabled.Load() {
		rollbar.Wait()
	}
}
