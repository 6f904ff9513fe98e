// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package callable

import (
	"fmt"
	"strings"

	cverrors "github.com/tombee/circuitview/pkg/errors"
)

// Value describes the shape of an argument passed to an operation. It is a
// closed sum type: Scalar, Tuple, Qubit, QubitArray and Hole are the only
// implementations.
type Value interface {
	isValue()
}

// Scalar is a classical argument such as an angle, an integer or a Pauli
// label. V is rendered with fmt.Sprint in argument strings.
type Scalar struct {
	V any
}

// Tuple groups argument values. The top-level argument of a multi-argument
// operation is a Tuple; an empty Tuple is the unit value.
type Tuple []Value

// Qubit is a single qubit argument identified by its executor-assigned id.
type Qubit struct {
	ID int
}

// QubitArray is a qubit-bearing container. Its elements are qubits, nested
// containers, or tuples that hold qubits.
type QubitArray []Value

// Hole marks an argument position left open by a partial application. It is
// only valid inside Descriptor.Bound.
type Hole struct{}

func (Scalar) isValue()     {}
func (Tuple) isValue()      {}
func (Qubit) isValue()      {}
func (QubitArray) isValue() {}
func (Hole) isValue()       {}

// Unit is the empty argument tuple.
var Unit = Tuple{}

// Qubits returns an array of the given qubit ids.
func Qubits(ids ...int) QubitArray {
	out := make(QubitArray, len(ids))
	for i, id := range ids {
		out[i] = Qubit{ID: id}
	}
	return out
}

// Float is shorthand for Scalar{V: f}.
func Float(f float64) Scalar { return Scalar{V: f} }

// Int is shorthand for Scalar{V: i}.
func Int(i int) Scalar { return Scalar{V: i} }

// String is shorthand for Scalar{V: s}.
func String(s string) Scalar { return Scalar{V: s} }

func malformed(format string, args ...any) error {
	return &cverrors.MalformedArgumentError{Reason: fmt.Sprintf(format, args...)}
}

// CollectQubits returns every qubit reachable from v, in argument order.
func CollectQubits(v Value) ([]Qubit, error) {
	var out []Qubit
	if err := collectQubits(v, false, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func collectQubits(v Value, inContainer bool, out *[]Qubit) error {
	switch x := v.(type) {
	case nil:
		return malformed("nil argument value")
	case Qubit:
		*out = append(*out, x)
	case QubitArray:
		for _, elem := range x {
			if err := collectQubits(elem, true, out); err != nil {
				return err
			}
		}
	case Tuple:
		for _, elem := range x {
			if err := collectQubits(elem, false, out); err != nil {
				return err
			}
		}
	case Scalar:
		if inContainer {
			return malformed("scalar %v inside a qubit container", x.V)
		}
		return checkScalar(x)
	case Hole:
		return malformed("unfilled partial application hole")
	default:
		return malformed("unsupported argument value %T", v)
	}
	return nil
}

func checkScalar(s Scalar) error {
	switch s.V.(type) {
	case nil:
		return malformed("scalar without a value")
	case Value:
		return malformed("scalar wraps argument value %T", s.V)
	}
	return nil
}

// containsScalar reports whether a classical value is reachable from v.
func containsScalar(v Value) bool {
	switch x := v.(type) {
	case Scalar:
		return true
	case Tuple:
		for _, elem := range x {
			if containsScalar(elem) {
				return true
			}
		}
	case QubitArray:
		for _, elem := range x {
			if containsScalar(elem) {
				return true
			}
		}
	}
	return false
}

// Fields renders the classical fields of an argument value. The elements of a
// top-level tuple are its fields; any other value is a single field. Nested
// tuples always render as "(a,b)", so a tuple of qubits renders as "()";
// qubits and qubit containers contribute nothing.
func Fields(v Value) ([]string, error) {
	// Validate the whole shape first so malformed qubit positions are not
	// skipped silently.
	if _, err := CollectQubits(v); err != nil {
		return nil, err
	}
	if t, ok := v.(Tuple); ok {
		return tupleFields(t), nil
	}
	if s, ok := field(v); ok {
		return []string{s}, nil
	}
	return nil, nil
}

func tupleFields(t Tuple) []string {
	var out []string
	for _, elem := range t {
		if s, ok := field(elem); ok {
			out = append(out, s)
		}
	}
	return out
}

func field(v Value) (string, bool) {
	switch x := v.(type) {
	case Scalar:
		return fmt.Sprint(x.V), true
	case Tuple:
		return "(" + strings.Join(tupleFields(x), ",") + ")", true
	default:
		return "", false
	}
}

// FormatArgs returns the parenthesized, comma-joined field list of v, or ""
// when v has no classical fields.
func FormatArgs(v Value) (string, error) {
	fields, err := Fields(v)
	if err != nil {
		return "", err
	}
	if len(fields) == 0 {
		return "", nil
	}
	return "(" + strings.Join(fields, ",") + ")", nil
}

// countHoles returns the number of Hole markers in v.
func countHoles(v Value) int {
	switch x := v.(type) {
	case Hole:
		return 1
	case Tuple:
		n := 0
		for _, elem := range x {
			n += countHoles(elem)
		}
		return n
	case QubitArray:
		n := 0
		for _, elem := range x {
			n += countHoles(elem)
		}
		return n
	default:
		return 0
	}
}

// Merge fills the holes of a partial application template with the supplied
// arguments. A template with a single hole takes the supplied value whole; a
// template with n > 1 holes requires a tuple of n values, used in order.
func Merge(bound, supplied Value) (Value, error) {
	if bound == nil {
		return nil, malformed("partial application without bound arguments")
	}

	holes := countHoles(bound)
	var fill []Value
	switch holes {
	case 0:
		if t, ok := supplied.(Tuple); supplied != nil && !(ok && len(t) == 0) {
			return nil, malformed("partial application has no open arguments but received %T", supplied)
		}
	case 1:
		fill = []Value{supplied}
	default:
		t, ok := supplied.(Tuple)
		if !ok || len(t) != holes {
			return nil, malformed("partial application expects %d arguments", holes)
		}
		fill = t
	}

	next := 0
	var substitute func(Value) Value
	substitute = func(v Value) Value {
		switch x := v.(type) {
		case Hole:
			out := fill[next]
			next++
			return out
		case Tuple:
			out := make(Tuple, len(x))
			for i, elem := range x {
				out[i] = substitute(elem)
			}
			return out
		case QubitArray:
			out := make(QubitArray, len(x))
			for i, elem := range x {
				out[i] = substitute(elem)
			}
			return out
		default:
			return v
		}
	}
	return substitute(bound), nil
}

// SplitControlled separates the arguments of a controlled call into the
// control qubits and the arguments of the inner call.
func SplitControlled(args Value) ([]Qubit, Value, error) {
	t, ok := args.(Tuple)
	if !ok || len(t) != 2 {
		return nil, nil, malformed("controlled call expects (controls, arguments), got %T", args)
	}
	if containsScalar(t[0]) {
		return nil, nil, malformed("controlled call has classical controls")
	}
	controls, err := CollectQubits(t[0])
	if err != nil {
		return nil, nil, err
	}
	return controls, t[1], nil
}
