package testutil

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/Yakuhito/hermes/errors"
)

var wd, _ = os.Getwd()

func ExpectEqual(t testing.TB, actual, expected interface{}, msg string) {
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("%s: got:\n%s\nexpected:\n%s\n%s", msg, spew.Sdump(actual), spew.Sdump(expected), stackTrace())
	}
}

// ExpectBytesEqual is ExpectEqual for byte strings,
// reporting mismatches in hex.
func ExpectBytesEqual(t testing.TB, actual, expected []byte, msg string) {
	if !bytes.Equal(actual, expected) {
		t.Errorf("%s: got %x, expected %x\n%s", msg, actual, expected, stackTrace())
	}
}

func ExpectError(t testing.TB, expected error, msg string, fn func() error) {
	actual := fn()
	if expected != errors.Root(actual) {
		t.Errorf("%s: got error %v, expected %v\n%s", msg, actual, expected, stackTrace())
	}
}

func FatalErr(t testing.TB, err error) {
	args := []interface{}{err}
	for _, frame := range errors.Stack(err) {
		file := frame.File
		if rel, err := filepath.Rel(wd, file); err == nil && !strings.HasPrefix(rel, "../") {
			file = rel
		}
		funcname := frame.Func[strings.IndexByte(frame.Func, '.')+1:]
		s := fmt.Sprintf("\n%s:%d: %s", file, frame.Line, funcname)
		args = append(args, s)
	}
	t.Fatal(args...)
}

// MustDecodeHex decodes s, which may carry a 0x prefix,
// and panics on malformed input.
func MustDecodeHex(s string) []byte {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// MustDecodeHash is MustDecodeHex for 32-byte values.
func MustDecodeHash(s string) (h [32]byte) {
	b := MustDecodeHex(s)
	if len(b) != 32 {
		panic(fmt.Sprintf("hash %q is %d bytes", s, len(b)))
	}
	copy(h[:], b)
	return h
}

func stackTrace() []byte {
	buf := make([]byte, 16384)
	len := runtime.Stack(buf, false)
	return buf[:len]
}
