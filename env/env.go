// Package env binds environment variables to Go values,
// in the manner of package flag. Variables are defined at
// package init and read when Parse is called.
package env

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

var funcs []func() bool

// define registers a parser for name. Parse calls set with the
// variable's value if it is present and non-empty.
func define(name string, set func(s string) error) {
	funcs = append(funcs, func() bool {
		s := os.Getenv(name)
		if s == "" {
			return true
		}
		if err := set(s); err != nil {
			log.Println(name, err)
			return false
		}
		return true
	})
}

// Int returns a pointer to an int read from name.
func Int(name string, value int) *int {
	p := new(int)
	IntVar(p, name, value)
	return p
}

// IntVar stores the int read from name in p.
func IntVar(p *int, name string, value int) {
	*p = value
	define(name, func(s string) error {
		v, err := strconv.Atoi(s)
		if err == nil {
			*p = v
		}
		return err
	})
}

// Bool returns a pointer to a bool read from name
// with strconv.ParseBool.
func Bool(name string, value bool) *bool {
	p := new(bool)
	BoolVar(p, name, value)
	return p
}

// BoolVar stores the bool read from name in p.
func BoolVar(p *bool, name string, value bool) {
	*p = value
	define(name, func(s string) error {
		v, err := strconv.ParseBool(s)
		if err == nil {
			*p = v
		}
		return err
	})
}

// String returns a pointer to the value of name.
func String(name string, value string) *string {
	p := new(string)
	StringVar(p, name, value)
	return p
}

// StringVar stores the value of name in p.
func StringVar(p *string, name string, value string) {
	*p = value
	define(name, func(s string) error {
		*p = s
		return nil
	})
}

// Choice returns a pointer to the value of name, which must
// be one of choices. The default need not be one of them.
func Choice(name string, value string, choices ...string) *string {
	p := new(string)
	*p = value
	define(name, func(s string) error {
		for _, c := range choices {
			if s == c {
				*p = s
				return nil
			}
		}
		return fmt.Errorf("%q is not one of %q", s, choices)
	})
	return p
}

// HexVar decodes the value of name, with or without a 0x
// prefix, into p. The value must be exactly len(p) bytes.
// p is left untouched if name is unset.
func HexVar(p []byte, name string) {
	define(name, func(s string) error {
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s = s[2:]
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return err
		}
		if len(b) != len(p) {
			return fmt.Errorf("got %d bytes, want %d", len(b), len(p))
		}
		copy(p, b)
		return nil
	})
}

// Parse reads every defined variable. It logs each value
// that does not parse and then exits with status 1.
func Parse() {
	if !parse() {
		os.Exit(1)
	}
}

func parse() bool {
	ok := true
	for _, f := range funcs {
		ok = f() && ok
	}
	return ok
}
