package log

import (
	"path/filepath"
	"runtime"
	"strconv"
)

const pkgPath = "github.com/Yakuhito/hermes/log."

var skipped = map[string]bool{
	pkgPath + "Printkv":            true,
	pkgPath + "Printf":             true,
	pkgPath + "Error":              true,
	pkgPath + "Fatalkv":            true,
	pkgPath + "RecoverAndLogError": true,
}

// SkipFunc hides the named function from the at= field.
// Name is the import path and identifier joined by a dot,
// as in github.com/Yakuhito/hermes/log.Printkv.
// It must not run concurrently with logging.
func SkipFunc(name string) {
	skipped[name] = true
}

// caller returns file:line of the innermost frame on the
// stack that is not skipped, or "?:?" if there is none.
func caller() string {
	var pcs [16]uintptr
	frames := runtime.CallersFrames(pcs[:runtime.Callers(2, pcs[:])])
	for {
		f, more := frames.Next()
		if f.Function != "" && !skipped[f.Function] {
			return filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
		}
		if !more {
			return "?:?"
		}
	}
}
