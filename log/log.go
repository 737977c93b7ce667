// Package log writes structured K=V log entries.
//
// Every entry starts with the caller and a timestamp, then the
// bundle label carried by the context, if any, then the fields
// passed by the caller in order. Output goes to stdout until
// SetOutput is called.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Yakuhito/hermes/errors"
)

const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

var (
	logWriterMu sync.Mutex // protects logWriter and prefix
	logWriter   io.Writer  = os.Stdout
	prefix      []byte
)

// Characters that separate pairs in Splunk-style K=V extraction.
// Keys containing them are rewritten and values are quoted.
const (
	pairDelims      = " ,;|&\t\n\r"
	illegalKeyChars = pairDelims + `="`
)

// Conventional keys.
const (
	KeyCaller = "at"
	KeyTime   = "t"
	KeyBundle = "bundle"

	KeyMessage = "message"
	KeyError   = "error"
	KeyStack   = "stack" // printed on the lines after the entry

	KeyCoin    = "coin"
	KeyVariant = "variant"

	keyLogError = "log-error"
)

type bundleKey struct{}

// WithBundle returns a context whose entries carry label under
// the bundle key, so the lines written while one spend bundle is
// assembled can be grouped.
func WithBundle(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, bundleKey{}, label)
}

// Bundle returns the label set by WithBundle, or "".
func Bundle(ctx context.Context) string {
	s, _ := ctx.Value(bundleKey{}).(string)
	return s
}

// SetOutput redirects all subsequent entries to w.
func SetOutput(w io.Writer) {
	logWriterMu.Lock()
	defer logWriterMu.Unlock()
	logWriter = w
}

// SetPrefix sets fields written at the start of every entry,
// before the caller. It panics if keyval has odd length.
func SetPrefix(keyval ...interface{}) {
	if len(keyval)%2 != 0 {
		panic(fmt.Sprintf("odd-length prefix args: %v", keyval))
	}
	var b strings.Builder
	for i := 0; i < len(keyval); i += 2 {
		writePair(&b, keyval[i], keyval[i+1])
		b.WriteByte(' ')
	}
	logWriterMu.Lock()
	defer logWriterMu.Unlock()
	prefix = []byte(b.String())
}

// Printkv writes one entry made of alternating keys and values.
// Duplicate keys are kept. An odd trailing key gets an empty
// value and a log-error field.
//
// A KeyStack value of type []byte or []errors.StackFrame is not
// printed inline; it is written on the lines after the entry.
// Without one, the stack of a KeyError error value is used.
func Printkv(ctx context.Context, keyvals ...interface{}) {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "", keyLogError, "odd number of log params")
	}

	var b strings.Builder
	writePair(&b, KeyCaller, caller())
	b.WriteByte(' ')
	writePair(&b, KeyTime, time.Now().UTC().Format(timeFormat))
	if ctx != nil {
		if label := Bundle(ctx); label != "" {
			b.WriteByte(' ')
			writePair(&b, KeyBundle, label)
		}
	}

	var stack interface{}
	for i := 0; i < len(keyvals); i += 2 {
		k, v := keyvals[i], keyvals[i+1]
		if k == KeyStack && isStack(v) {
			stack = v
			continue
		}
		if err, ok := v.(error); ok && k == KeyError && stack == nil {
			// Wrap records a stack if err has none.
			stack = errors.Stack(errors.Wrap(err))
		}
		b.WriteByte(' ')
		writePair(&b, k, v)
	}
	b.WriteByte('\n')

	logWriterMu.Lock()
	defer logWriterMu.Unlock()
	logWriter.Write(prefix)
	io.WriteString(logWriter, b.String())
	writeStack(logWriter, stack)
}

// Fatalkv calls Printkv and exits with status 1.
func Fatalkv(ctx context.Context, keyvals ...interface{}) {
	Printkv(ctx, keyvals...)
	os.Exit(1)
}

func isStack(v interface{}) bool {
	switch v.(type) {
	case []byte, []errors.StackFrame:
		return true
	}
	return false
}

func writeStack(w io.Writer, v interface{}) {
	switch v := v.(type) {
	case []byte:
		if len(v) > 0 {
			w.Write(v)
			io.WriteString(w, "\n")
		}
	case []errors.StackFrame:
		for _, f := range v {
			io.WriteString(w, f.String()+"\n")
		}
	}
}

// Printf writes an entry whose message field is
// formatted as in fmt.Sprintf.
func Printf(ctx context.Context, format string, a ...interface{}) {
	Printkv(ctx, KeyMessage, fmt.Sprintf(format, a...))
}

// Error writes err under the error key. Arguments in a,
// formatted as in fmt.Sprint, are prepended to the message.
func Error(ctx context.Context, err error, a ...interface{}) {
	switch {
	case len(a) == 0:
	case len(errors.Stack(err)) > 0:
		err = errors.Wrap(err, a...)
	default:
		// No stack to keep, so don't record one here.
		err = fmt.Errorf("%s: %s", fmt.Sprint(a...), err)
	}
	Printkv(ctx, KeyError, err)
}

func writePair(b *strings.Builder, k, v interface{}) {
	b.WriteString(formatKey(k))
	b.WriteByte('=')
	b.WriteString(formatValue(v))
}

// formatKey replaces delimiters and quotes in k with hyphens.
func formatKey(k interface{}) string {
	s := fmt.Sprint(k)
	if s == "" {
		return "?"
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalKeyChars, r) {
			return '-'
		}
		return r
	}, s)
}

// formatValue quotes v if it contains a delimiter.
func formatValue(v interface{}) string {
	s := fmt.Sprint(v)
	if strings.ContainsAny(s, pairDelims) {
		return strconv.Quote(s)
	}
	return s
}

// RecoverAndLogError logs a recovered panic with its goroutine
// stack. It must be deferred directly, as in
// defer log.RecoverAndLogError(ctx).
func RecoverAndLogError(ctx context.Context) {
	if r := recover(); r != nil {
		buf := make([]byte, 64<<10)
		buf = buf[:runtime.Stack(buf, false)]
		Printkv(ctx,
			KeyMessage, "panic",
			KeyError, r,
			KeyStack, buf,
		)
	}
}
