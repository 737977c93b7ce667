package clvm

import (
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/Yakuhito/hermes/errors"
)

// Marshalling errors.
var (
	ErrWidth       = errors.New("fixed-width field violated")
	ErrShape       = errors.New("program does not match record shape")
	ErrUnsupported = errors.New("unsupported type")
)

// Marshaler is implemented by types that encode themselves.
type Marshaler interface {
	MarshalCLVM() (*Program, error)
}

// Unmarshaler is implemented by types that decode themselves.
type Unmarshaler interface {
	UnmarshalCLVM(*Program) error
}

var (
	programType     = reflect.TypeOf((*Program)(nil))
	bigIntType      = reflect.TypeOf((*big.Int)(nil))
	marshalerType   = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
)

// Marshal encodes v as a program.
//
// Structs become proper lists of their exported fields in declared
// order. A field tagged `clvm:"rest"` must be last; it becomes the
// list's tail, so the record is improper. A field tagged
// `clvm:"width=N"` must be a byte slice of exactly N bytes or
// Marshal fails with ErrWidth. Fields tagged `clvm:"-"` are skipped.
//
// Byte arrays and byte slices become atoms, strings become atoms,
// integers and *big.Int become canonical integer atoms, bools become
// 1 or nil, other slices and arrays become proper lists, and a
// *Program is used as is. Nil pointers, interfaces and programs
// encode as nil.
func Marshal(v interface{}) (*Program, error) {
	return marshalValue(reflect.ValueOf(v), fieldOpts{})
}

// MarshalArgs encodes the fields of the struct v as
// an ordered curry argument list.
func MarshalArgs(v interface{}) ([]*Program, error) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil, errors.WithDetailf(ErrUnsupported, "curried arguments must be a struct, got %T", v)
	}
	fields, err := structFields(rv.Type())
	if err != nil {
		return nil, err
	}
	var args []*Program
	for _, f := range fields {
		if f.opts.rest {
			return nil, errors.WithDetailf(ErrUnsupported, "curried field %s cannot be a tail", f.name)
		}
		p, err := marshalValue(rv.Field(f.index), f.opts)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", f.name)
		}
		args = append(args, p)
	}
	return args, nil
}

// MarshalCurried curries the fields of v into mod.
func MarshalCurried(mod *Program, v interface{}) (*Program, error) {
	args, err := MarshalArgs(v)
	if err != nil {
		return nil, err
	}
	return Curry(mod, args...), nil
}

// Unmarshal decodes p into the value pointed to by v,
// following the rules of Marshal. A program whose shape
// does not match fails with ErrShape; an atom of the wrong
// length for a fixed-width field fails with ErrWidth.
func Unmarshal(p *Program, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.WithDetailf(ErrUnsupported, "Unmarshal needs a non-nil pointer, got %T", v)
	}
	return unmarshalValue(p, rv.Elem(), fieldOpts{})
}

// UnmarshalCurried decodes the argument list
// returned by Uncurry into the struct pointed to by v.
func UnmarshalCurried(args []*Program, v interface{}) error {
	return Unmarshal(List(args...), v)
}

type fieldOpts struct {
	rest  bool
	width int
}

type field struct {
	name  string
	index int
	opts  fieldOpts
}

func structFields(t reflect.Type) ([]field, error) {
	var fields []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		tag := sf.Tag.Get("clvm")
		if tag == "-" {
			continue
		}
		f := field{name: sf.Name, index: i}
		for _, opt := range strings.Split(tag, ",") {
			switch {
			case opt == "":
			case opt == "rest":
				f.opts.rest = true
			case strings.HasPrefix(opt, "width="):
				n, err := strconv.Atoi(strings.TrimPrefix(opt, "width="))
				if err != nil || n <= 0 {
					return nil, errors.WithDetailf(ErrUnsupported, "field %s: bad tag %q", sf.Name, tag)
				}
				f.opts.width = n
			default:
				return nil, errors.WithDetailf(ErrUnsupported, "field %s: bad tag %q", sf.Name, tag)
			}
		}
		if len(fields) > 0 && fields[len(fields)-1].opts.rest {
			return nil, errors.WithDetailf(ErrUnsupported, "field %s follows tail field %s", sf.Name, fields[len(fields)-1].name)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func marshalValue(v reflect.Value, opts fieldOpts) (*Program, error) {
	if !v.IsValid() {
		return Nil, nil
	}
	t := v.Type()
	if t == programType {
		if v.IsNil() {
			return Nil, nil
		}
		return v.Interface().(*Program), nil
	}
	if t.Implements(marshalerType) {
		if v.Kind() == reflect.Ptr && v.IsNil() {
			return Nil, nil
		}
		return v.Interface().(Marshaler).MarshalCLVM()
	}
	if v.CanAddr() && v.Addr().Type().Implements(marshalerType) {
		return v.Addr().Interface().(Marshaler).MarshalCLVM()
	}
	if t == bigIntType {
		if v.IsNil() {
			return Nil, nil
		}
		return BigInt(v.Interface().(*big.Int)), nil
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return Int(1), nil
		}
		return Nil, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(v.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Uint(v.Uint()), nil

	case reflect.String:
		return Atom([]byte(v.String())), nil

	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			for i := range b {
				b[i] = byte(v.Index(i).Uint())
			}
			return Atom(b), nil
		}
		return marshalList(v)

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			b := v.Bytes()
			if opts.width > 0 && len(b) != opts.width {
				return nil, errors.WithDetailf(ErrWidth, "got %d bytes, want %d", len(b), opts.width)
			}
			return Atom(b), nil
		}
		return marshalList(v)

	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return Nil, nil
		}
		return marshalValue(v.Elem(), opts)

	case reflect.Struct:
		return marshalStruct(v)
	}
	return nil, errors.WithDetailf(ErrUnsupported, "cannot marshal %s", t)
}

func marshalList(v reflect.Value) (*Program, error) {
	b := NewBuilder()
	for i := 0; i < v.Len(); i++ {
		p, err := marshalValue(v.Index(i), fieldOpts{})
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		b.AddProgram(p)
	}
	return b.Build()
}

func marshalStruct(v reflect.Value) (*Program, error) {
	fields, err := structFields(v.Type())
	if err != nil {
		return nil, err
	}
	b := NewBuilder()
	for _, f := range fields {
		p, err := marshalValue(v.Field(f.index), f.opts)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", f.name)
		}
		if f.opts.rest {
			b.SetTail(p)
		} else {
			b.AddProgram(p)
		}
	}
	return b.Build()
}

func unmarshalValue(p *Program, v reflect.Value, opts fieldOpts) error {
	t := v.Type()
	if t == programType {
		v.Set(reflect.ValueOf(p))
		return nil
	}
	if v.CanAddr() && v.Addr().Type().Implements(unmarshalerType) {
		return v.Addr().Interface().(Unmarshaler).UnmarshalCLVM(p)
	}
	if t == bigIntType {
		n, err := p.AsInt()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(n))
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		if p.IsPair() {
			return errors.WithDetail(ErrShape, "expected bool atom, got pair")
		}
		v.SetBool(!p.IsNil())
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := p.AsInt()
		if err != nil {
			return err
		}
		if !n.IsInt64() || v.OverflowInt(n.Int64()) {
			return errors.WithDetailf(ErrShape, "integer %s overflows %s", n, t)
		}
		v.SetInt(n.Int64())
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := p.AsInt()
		if err != nil {
			return err
		}
		if n.Sign() < 0 || !n.IsUint64() || v.OverflowUint(n.Uint64()) {
			return errors.WithDetailf(ErrShape, "integer %s overflows %s", n, t)
		}
		v.SetUint(n.Uint64())
		return nil

	case reflect.String:
		b, ok := p.Bytes()
		if !ok {
			return errors.WithDetail(ErrShape, "expected string atom, got pair")
		}
		v.SetString(string(b))
		return nil

	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			b, ok := p.Bytes()
			if !ok {
				return errors.WithDetailf(ErrShape, "expected %d-byte atom, got pair", v.Len())
			}
			if len(b) != v.Len() {
				return errors.WithDetailf(ErrWidth, "atom is %d bytes, want %d", len(b), v.Len())
			}
			for i := range b {
				v.Index(i).SetUint(uint64(b[i]))
			}
			return nil
		}
		items, err := p.ToList()
		if err != nil {
			return errors.Sub(ErrShape, err)
		}
		if len(items) != v.Len() {
			return errors.WithDetailf(ErrShape, "list has %d elements, want %d", len(items), v.Len())
		}
		for i, item := range items {
			if err := unmarshalValue(item, v.Index(i), fieldOpts{}); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
		}
		return nil

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			b, ok := p.Bytes()
			if !ok {
				return errors.WithDetail(ErrShape, "expected atom, got pair")
			}
			if opts.width > 0 && len(b) != opts.width {
				return errors.WithDetailf(ErrWidth, "atom is %d bytes, want %d", len(b), opts.width)
			}
			v.SetBytes(append([]byte(nil), b...))
			return nil
		}
		items, err := p.ToList()
		if err != nil {
			return errors.Sub(ErrShape, err)
		}
		s := reflect.MakeSlice(t, len(items), len(items))
		for i, item := range items {
			if err := unmarshalValue(item, s.Index(i), fieldOpts{}); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
		}
		v.Set(s)
		return nil

	case reflect.Ptr:
		e := reflect.New(t.Elem())
		if err := unmarshalValue(p, e.Elem(), opts); err != nil {
			return err
		}
		v.Set(e)
		return nil

	case reflect.Struct:
		return unmarshalStruct(p, v)
	}
	return errors.WithDetailf(ErrUnsupported, "cannot unmarshal into %s", t)
}

func unmarshalStruct(p *Program, v reflect.Value) error {
	fields, err := structFields(v.Type())
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.opts.rest {
			return errors.Wrapf(unmarshalValue(p, v.Field(f.index), f.opts), "field %s", f.name)
		}
		first, rest, ok := p.Pair()
		if !ok {
			return errors.WithDetailf(ErrShape, "list ends before field %s", f.name)
		}
		if err := unmarshalValue(first, v.Field(f.index), f.opts); err != nil {
			return errors.Wrapf(err, "field %s", f.name)
		}
		p = rest
	}
	if !p.IsNil() {
		return errors.WithDetailf(ErrShape, "unexpected elements after field %s", lastName(fields))
	}
	return nil
}

func lastName(fields []field) string {
	if len(fields) == 0 {
		return "(none)"
	}
	return fields[len(fields)-1].name
}
