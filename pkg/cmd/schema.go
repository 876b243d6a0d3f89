package cmd

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// Structural errors, returned at registration time.
var (
	ErrNotFunction    = errors.New("commands must be functions")
	ErrPositionalOnly = errors.New("parameters can not be positional only")
	ErrInvalidGrammar = errors.New("invalid command grammar")
	ErrNoName         = errors.New("command has no name")
)

// Kind is how a parameter consumes tokens.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFlag
	KindConstant
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFlag:
		return "flag"
	case KindConstant:
		return "constant"
	}
	return "unknown"
}

// Param is one grammar entry.
type Param struct {
	Name     string
	Kind     Kind
	Required bool
	Default  any
	Const    any
	Help     string

	field int

	// bits is the integer field's size, so out-of-range input is rejected.
	bits int
}

// TakesValue reports whether the parameter consumes a value token.
func (p Param) TakesValue() bool {
	return p.Kind == KindString || p.Kind == KindInteger
}

// Schema is the parsing grammar of one handler, in declaration order.
type Schema struct {
	Params []Param

	argsType reflect.Type
	argsPtr  bool
}

// Lookup returns the parameter with the given name.
func (s *Schema) Lookup(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

var (
	contextType    = reflect.TypeFor[context.Context]()
	invocationType = reflect.TypeFor[*Invocation]()
	errorType      = reflect.TypeFor[error]()

	paramNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)
	closureRe   = regexp.MustCompile(`^func\d+$`)
)

// slot says what the dispatcher passes for each handler parameter.
type slot int

const (
	slotContext slot = iota
	slotInvocation
	slotArgs
)

type handlerSpec struct {
	fn     reflect.Value
	slots  []slot
	schema *Schema
	name   string
}

// inspectHandler derives the grammar and call shape of a handler.
func inspectHandler(handler any) (*handlerSpec, error) {
	fn := reflect.ValueOf(handler)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, fmt.Errorf("%w: got %T", ErrNotFunction, handler)
	}
	t := fn.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic handler %s", ErrPositionalOnly, t)
	}

	spec := &handlerSpec{fn: fn, schema: &Schema{}, name: funcName(fn)}
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		switch {
		case in == contextType:
			spec.slots = append(spec.slots, slotContext)
		case in == invocationType:
			spec.slots = append(spec.slots, slotInvocation)
		case isArgsStruct(in) && spec.schema.argsType == nil:
			spec.slots = append(spec.slots, slotArgs)
			if err := spec.schema.derive(in); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: parameter %d (%s)", ErrPositionalOnly, i, in)
		}
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) != errorType {
			return nil, fmt.Errorf("%w: handler must return error, got %s", ErrInvalidGrammar, t.Out(0))
		}
	default:
		return nil, fmt.Errorf("%w: handler must return at most an error", ErrInvalidGrammar)
	}
	return spec, nil
}

func isArgsStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// DeriveSchema returns the grammar of a handler without registering it.
func DeriveSchema(handler any) (*Schema, error) {
	spec, err := inspectHandler(handler)
	if err != nil {
		return nil, err
	}
	return spec.schema, nil
}

func (s *Schema) derive(t reflect.Type) error {
	if t.Kind() == reflect.Pointer {
		s.argsPtr = true
		t = t.Elem()
	}
	s.argsType = t

	seen := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("arg") == "-" {
			continue
		}
		p, err := paramFromField(f)
		if err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate parameter %q", ErrInvalidGrammar, p.Name)
		}
		seen[p.Name] = true
		p.field = i
		s.Params = append(s.Params, p)
	}
	return nil
}

func paramFromField(f reflect.StructField) (Param, error) {
	name, opts, _ := strings.Cut(f.Tag.Get("arg"), ",")
	if name == "" {
		name = strings.ToLower(f.Name)
	}
	if !paramNameRe.MatchString(name) {
		return Param{}, fmt.Errorf("%w: bad parameter name %q", ErrInvalidGrammar, name)
	}
	optional := false
	for _, o := range strings.Split(opts, ",") {
		switch strings.TrimSpace(o) {
		case "":
		case "optional":
			optional = true
		default:
			return Param{}, fmt.Errorf("%w: unknown option %q on %s", ErrInvalidGrammar, o, f.Name)
		}
	}

	p := Param{Name: name, Help: f.Tag.Get("help")}
	def, hasDefault := f.Tag.Lookup("default")

	if c, ok := f.Tag.Lookup("const"); ok {
		v, err := convert(f.Type, c)
		if err != nil {
			return Param{}, fmt.Errorf("%w: const of %s: %v", ErrInvalidGrammar, f.Name, err)
		}
		p.Kind = KindConstant
		p.Const = v
		p.Default = zeroValue(f.Type)
		if hasDefault {
			if p.Default, err = convert(f.Type, def); err != nil {
				return Param{}, fmt.Errorf("%w: default of %s: %v", ErrInvalidGrammar, f.Name, err)
			}
		}
		return p, nil
	}

	switch f.Type.Kind() {
	case reflect.Bool:
		p.Kind = KindFlag
		p.Default = false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		p.Kind = KindInteger
		p.Required = !optional && !hasDefault
		p.bits = f.Type.Bits()
	case reflect.String:
		p.Kind = KindString
		p.Required = !optional && !hasDefault
	default:
		return Param{}, fmt.Errorf("%w: unsupported type %s for %s", ErrInvalidGrammar, f.Type, f.Name)
	}

	if hasDefault {
		v, err := convert(f.Type, def)
		if err != nil {
			return Param{}, fmt.Errorf("%w: default of %s: %v", ErrInvalidGrammar, f.Name, err)
		}
		p.Default = v
	} else if p.Kind != KindFlag {
		p.Default = zeroValue(f.Type)
	}
	return p, nil
}

// convert parses a tag value into the canonical argument type of t.
func convert(t reflect.Type, s string) (any, error) {
	switch t.Kind() {
	case reflect.Bool:
		return strconv.ParseBool(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(s, 10, t.Bits())
	case reflect.String:
		return s, nil
	}
	return nil, fmt.Errorf("unsupported type %s", t)
}

func zeroValue(t reflect.Type) any {
	switch t.Kind() {
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int64(0)
	case reflect.String:
		return ""
	}
	return nil
}

// funcName returns the lowercased identifier of a function or method value,
// or "" for closures.
func funcName(fn reflect.Value) string {
	rf := runtime.FuncForPC(fn.Pointer())
	if rf == nil {
		return ""
	}
	name := strings.TrimSuffix(rf.Name(), "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if closureRe.MatchString(name) {
		return ""
	}
	return strings.ToLower(name)
}

// bind builds the handler's argument struct from parsed arguments.
func (s *Schema) bind(args Arguments) reflect.Value {
	v := reflect.New(s.argsType)
	elem := v.Elem()
	for _, p := range s.Params {
		val, ok := args[p.Name]
		if !ok || val == nil {
			continue
		}
		f := elem.Field(p.field)
		switch x := val.(type) {
		case string:
			f.SetString(x)
		case int64:
			f.SetInt(x)
		case bool:
			f.SetBool(x)
		}
	}
	if s.argsPtr {
		return v
	}
	return elem
}
