package errors

import (
	"fmt"
	"runtime"
)

// stackDepth bounds the frames recorded by Wrap.
const stackDepth = 10

// StackFrame is one call site in a recorded stack.
type StackFrame struct {
	Func string
	File string
	Line int
}

func (f StackFrame) String() string {
	return fmt.Sprintf("%s:%d - %s", f.File, f.Line, f.Func)
}

// Stack returns the frames recorded when err was first wrapped.
// It returns nil for an error that was never wrapped.
func Stack(err error) []StackFrame {
	if w, ok := err.(wrapperError); ok {
		return w.stack
	}
	return nil
}

// callers records up to n frames, omitting the innermost skip.
func callers(skip, n int) []StackFrame {
	pcs := make([]uintptr, n)
	pcs = pcs[:runtime.Callers(skip+1, pcs)]
	if len(pcs) == 0 {
		return nil
	}
	stack := make([]StackFrame, 0, len(pcs))
	frames := runtime.CallersFrames(pcs)
	for {
		f, more := frames.Next()
		stack = append(stack, StackFrame{Func: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return stack
}
