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
)

// Variant is the functor applied to an operation.
type Variant int

const (
	// Body is the plain operation.
	Body Variant = iota
	// Adjoint is the inverse of the operation.
	Adjoint
	// Controlled runs the operation conditioned on a list of control qubits.
	Controlled
	// ControlledAdjoint is the controlled inverse.
	ControlledAdjoint
)

// IsControlled reports whether the variant takes control qubits.
func (v Variant) IsControlled() bool {
	return v == Controlled || v == ControlledAdjoint
}

// IsAdjoint reports whether the variant is an inverse.
func (v Variant) IsAdjoint() bool {
	return v == Adjoint || v == ControlledAdjoint
}

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case Body:
		return "Body"
	case Adjoint:
		return "Adjoint"
	case Controlled:
		return "Controlled"
	case ControlledAdjoint:
		return "ControlledAdjoint"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant parses a variant name. The empty string is Body.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "", "body":
		return Body, nil
	case "adjoint":
		return Adjoint, nil
	case "controlled":
		return Controlled, nil
	case "controlledadjoint", "controlled_adjoint":
		return ControlledAdjoint, nil
	default:
		return Body, fmt.Errorf("unknown variant %q", s)
	}
}

// Descriptor is the static description of an invoked operation.
//
// A partial application sets Bound (the template of fixed arguments with Hole
// markers) and Base (the operation it applies to). A functor variant sets
// Variant and, optionally, Base; without a Base the variant wraps the body of
// the same named operation.
type Descriptor struct {
	Name    string
	Variant Variant
	Base    *Descriptor
	Bound   Value
}

// IsPartial reports whether d is a partial application.
func (d *Descriptor) IsPartial() bool {
	return d.Bound != nil
}

// Unwrapped returns the operation a functor variant applies to.
func (d *Descriptor) Unwrapped() *Descriptor {
	if d.Base != nil {
		return d.Base
	}
	body := *d
	body.Variant = Body
	return &body
}

// String renders the descriptor the way the executor would name it, e.g.
// "Controlled Adjoint H" or "Rx{partial}".
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	if d.IsPartial() {
		if d.Base != nil {
			return d.Base.String() + "{partial}"
		}
		return d.Name + "{partial}"
	}
	switch d.Variant {
	case Adjoint:
		return "Adjoint " + d.Unwrapped().String()
	case Controlled:
		return "Controlled " + d.Unwrapped().String()
	case ControlledAdjoint:
		return "Controlled Adjoint " + d.Unwrapped().String()
	default:
		return d.Name
	}
}

// Op returns a body descriptor for the named operation.
func Op(name string) *Descriptor {
	return &Descriptor{Name: name}
}

// Adj wraps d in the Adjoint functor.
func Adj(d *Descriptor) *Descriptor {
	return &Descriptor{Name: d.Name, Variant: Adjoint, Base: d}
}

// Ctl wraps d in the Controlled functor.
func Ctl(d *Descriptor) *Descriptor {
	return &Descriptor{Name: d.Name, Variant: Controlled, Base: d}
}

// CtlAdj wraps d in the Controlled Adjoint functor.
func CtlAdj(d *Descriptor) *Descriptor {
	return &Descriptor{Name: d.Name, Variant: ControlledAdjoint, Base: d}
}

// Partial binds arguments of d, leaving Hole positions open.
func Partial(d *Descriptor, bound Value) *Descriptor {
	return &Descriptor{Name: d.Name, Base: d, Bound: bound}
}
