// Package errors annotates errors with context messages, user-facing
// detail, key/value data and the stack of the first wrap site, while
// keeping the root error recoverable.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// Is reports whether any error in err's chain matches target.
// It is the standard library errors.Is, re-exported so callers
// need only one errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is the standard library errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// wrapperError carries the annotations added by this package
// around the root error.
type wrapperError struct {
	msg    string
	detail []string
	data   map[string]interface{}
	stack  []StackFrame
	root   error
}

func (e wrapperError) Error() string { return e.msg }

// Unwrap returns the root, so the standard errors.Is and
// errors.As see through annotations.
func (e wrapperError) Unwrap() error { return e.root }

// Root returns the error first passed to Wrap, WithDetail or
// WithData, or e itself if it carries no annotations.
func Root(e error) error {
	if w, ok := e.(wrapperError); ok {
		return w.root
	}
	return e
}

// wrap prefixes msg to err's message. The first wrap of an
// error records the stack; skip counts frames above wrap's caller.
func wrap(err error, msg string, skip int) wrapperError {
	w, ok := err.(wrapperError)
	if !ok {
		w = wrapperError{
			msg:   err.Error(),
			root:  err,
			stack: callers(skip+2, stackDepth),
		}
	}
	if msg != "" {
		w.msg = msg + ": " + w.msg
	}
	return w
}

// Wrap prefixes a context message, formatted as in fmt.Sprint,
// to err. It records the stack on the first wrap. It returns nil
// if err is nil.
func Wrap(err error, a ...interface{}) error {
	if err == nil {
		return nil
	}
	return wrap(err, fmt.Sprint(a...), 1)
}

// Wrapf is Wrap with the message formatted as in fmt.Sprintf.
func Wrapf(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	return wrap(err, fmt.Sprintf(format, a...), 1)
}

// Sub replaces the root of err with the root of root, keeping
// err's stack, detail and data. The message becomes root's
// message followed by err's. Sub returns nil if either is nil.
//
// Decoders use it to report a library failure as one of
// their own sentinel errors.
func Sub(root, err error) error {
	if root == nil || err == nil {
		return nil
	}
	if w, ok := err.(wrapperError); ok {
		w.root = Root(root)
		w.msg = root.Error()
		return wrap(w, err.Error(), 1)
	}
	return wrap(root, err.Error(), 1)
}

// WithDetail wraps err with text, which Detail returns.
// Detail is meant for the person reading the error, not
// for matching. An empty text returns err unchanged.
func WithDetail(err error, text string) error {
	if err == nil || text == "" {
		return err
	}
	return withDetail(err, text)
}

// WithDetailf is WithDetail with the text formatted as in fmt.Sprintf.
func WithDetailf(err error, format string, v ...interface{}) error {
	if err == nil {
		return nil
	}
	return withDetail(err, fmt.Sprintf(format, v...))
}

func withDetail(err error, text string) error {
	w := wrap(err, text, 2)
	w.detail = append(w.detail[:len(w.detail):len(w.detail)], text)
	return w
}

// Detail joins the detail texts attached to err with "; ".
func Detail(err error) string {
	w, _ := err.(wrapperError)
	return strings.Join(w.detail, "; ")
}

// WithData returns err annotated with the key/value pairs in
// keyval, merged over any data err already carries. Keys must
// be strings. It panics if keyval has odd length.
func WithData(err error, keyval ...interface{}) error {
	if len(keyval)%2 != 0 {
		panic(fmt.Sprintf("odd-length keyval args: %v", keyval))
	}
	if err == nil {
		return nil
	}
	data := make(map[string]interface{}, len(Data(err))+len(keyval)/2)
	for k, v := range Data(err) {
		data[k] = v
	}
	for i := 0; i < len(keyval); i += 2 {
		data[keyval[i].(string)] = keyval[i+1]
	}
	w := wrap(err, "", 1)
	w.data = data
	return w
}

// Data returns the key/value data attached to err, if any.
func Data(err error) map[string]interface{} {
	w, _ := err.(wrapperError)
	return w.data
}
