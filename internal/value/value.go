// Package value defines the SLIP runtime value model: a closed tagged
// union realized as a Go interface with an unexported marker method,
// implemented by small concrete struct types rather than a generic
// interface{} soup. Logic that operates on these types (property
// lookup, dispatch, query resolution, scheduling) lives in sibling
// packages; this package only defines shape and the cheap structural
// helpers every other package needs (Equal, Truthy, TypeName).
package value

import (
	"fmt"
	"math"
	"strings"
)

// Value is implemented by every runtime value and AST-literal variant.
// The set is closed: only types in this package implement it.
type Value interface {
	valueTag()
}

// Int is a 64-bit signed integer value.
type Int int64

func (Int) valueTag() {}

// Float is a 64-bit floating point value.
type Float float64

func (Float) valueTag() {}

// Bool is a boolean value.
type Bool bool

func (Bool) valueTag() {}

// None is the singleton absence-of-value.
type None struct{}

func (None) valueTag() {}

// Nil is the canonical None value.
var Nil = None{}

// Str is a string value. Raw strings are literal text, de-dented;
// interpolated strings (Interp=true) are additionally rendered through
// the host template engine against a Scope before use in most
// contexts, but both are of SLIP type "string" once evaluated.
type Str struct {
	Text   string
	Interp bool
}

func (Str) valueTag() {}

// Bytes is a typed byte-stream value built by a u8#[...]..b1#[...] literal.
type Bytes struct {
	Elem string // element type tag: u8,u16,u32,u64,i8,i16,i32,i64,f32,f64,b1
	Data []byte
}

func (Bytes) valueTag() {}

// TypeName returns the primitive annotation name used for dispatch and
// example-driven synthesis (§4.6/§4.8 of the distilled spec).
func TypeName(v Value) string {
	switch vv := v.(type) {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "boolean"
	case None, nil:
		return "none"
	case Str:
		if vv.Interp {
			return "i-string"
		}
		return "string"
	case Bytes:
		return "bytes"
	case *List:
		return "list"
	case *Dict:
		return "dict"
	case *Scope:
		return "scope"
	case *Function:
		return "function"
	case *GenericFunction:
		return "function"
	case Code:
		return "code"
	case Sig:
		return "path" // sig is data, inspected like a path-adjacent literal
	case GetPath, SetPath, DelPath, PostPath, PipedPath, MultiSetPath:
		return "path"
	case Response:
		return "response"
	case *View:
		return "view"
	case *Channel:
		return "channel"
	case *TaskHandle:
		return "task"
	case HostObject:
		return "host-object"
	default:
		return "string"
	}
}

// Truthy implements SLIP's truthiness rule: false, none, 0, 0.0, NaN,
// "", empty list, empty dict are falsey; everything else is truthy.
func Truthy(v Value) bool {
	switch vv := v.(type) {
	case Bool:
		return bool(vv)
	case None:
		return false
	case nil:
		return false
	case Int:
		return vv != 0
	case Float:
		return vv != 0 && !math.IsNaN(float64(vv))
	case Str:
		return vv.Text != ""
	case *List:
		return vv != nil && len(vv.Items) > 0
	case *Dict:
		return vv != nil && len(vv.Keys) > 0
	default:
		return true
	}
}

// Inspect renders a Value for diagnostics and string interpolation
// fallback (non-interpolated context). It is not the template engine.
func Inspect(v Value) string {
	switch vv := v.(type) {
	case Int:
		return fmt.Sprintf("%d", int64(vv))
	case Float:
		return fmt.Sprintf("%g", float64(vv))
	case Bool:
		return fmt.Sprintf("%t", bool(vv))
	case None, nil:
		return "none"
	case Str:
		return vv.Text
	case *List:
		parts := make([]string, len(vv.Items))
		for i, it := range vv.Items {
			parts[i] = Inspect(it)
		}
		return "#[" + strings.Join(parts, ", ") + "]"
	case *Dict:
		parts := make([]string, 0, len(vv.Keys))
		for _, k := range vv.Keys {
			parts = append(parts, k+": "+Inspect(vv.Values[k]))
		}
		return "#{" + strings.Join(parts, ", ") + "}"
	case *Scope:
		if vv.Meta.Name != "" {
			return vv.Meta.Name
		}
		return "scope"
	default:
		return fmt.Sprintf("%v", v)
	}
}
