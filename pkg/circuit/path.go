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

package circuit

import (
	"encoding/json"
	"io"
	"slices"
)

// QubitDeclaration declares a qubit line in an ExecutionPath.
type QubitDeclaration struct {
	// ID is the qubit id as assigned by the executor.
	ID int `json:"id"`

	// NumChildren is the number of classical registers derived from the
	// qubit. Zero is omitted from the JSON output.
	NumChildren int `json:"numChildren,omitempty"`
}

// Operation is one recorded gate in a reconstructed circuit.
type Operation struct {
	// Gate is the gate label, e.g. "H", "X" or "measure".
	Gate string `json:"gate"`

	// ArgStr holds the non-qubit arguments rendered as "(a,b)". Empty means
	// the operation had no such arguments and the key is omitted.
	ArgStr string `json:"argStr,omitempty"`

	// Children holds nested groups of operations for structured blocks
	// (e.g. the branches of a classically controlled operation). Each group
	// is an ordered sequence. Nil is omitted from the JSON output.
	Children [][]Operation `json:"children,omitempty"`

	Controlled bool `json:"controlled,omitempty"`
	Adjoint    bool `json:"adjoint,omitempty"`

	// Controls and Targets are always emitted, as [] when empty.
	Controls []Register `json:"controls"`
	Targets  []Register `json:"targets"`
}

type operationJSON Operation

// MarshalJSON emits empty control and target lists and empty child groups
// as [] rather than null.
func (o Operation) MarshalJSON() ([]byte, error) {
	out := operationJSON(o)
	if out.Controls == nil {
		out.Controls = []Register{}
	}
	if out.Targets == nil {
		out.Targets = []Register{}
	}
	if slices.ContainsFunc(out.Children, func(group []Operation) bool { return group == nil }) {
		out.Children = slices.Clone(out.Children)
		for i, group := range out.Children {
			if group == nil {
				out.Children[i] = []Operation{}
			}
		}
	}
	return json.Marshal(out)
}

// Clone returns a deep copy of the operation.
func (o Operation) Clone() Operation {
	out := o
	out.Controls = slices.Clone(o.Controls)
	out.Targets = slices.Clone(o.Targets)
	if o.Children != nil {
		out.Children = make([][]Operation, len(o.Children))
		for i, group := range o.Children {
			out.Children[i] = cloneOperations(group)
		}
	}
	return out
}

// ExecutionPath is a point-in-time snapshot of a traced run: the qubits it
// touched, sorted by id, and the flat list of operations in record order.
type ExecutionPath struct {
	Qubits     []QubitDeclaration `json:"qubits"`
	Operations []Operation        `json:"operations"`
}

type executionPathJSON ExecutionPath

// MarshalJSON emits empty lists as [] rather than null.
func (p ExecutionPath) MarshalJSON() ([]byte, error) {
	out := executionPathJSON(p)
	if out.Qubits == nil {
		out.Qubits = []QubitDeclaration{}
	}
	if out.Operations == nil {
		out.Operations = []Operation{}
	}
	return json.Marshal(out)
}

// ToJSON serializes the path. Pretty output is indented with two spaces;
// both modes carry identical fields.
func (p ExecutionPath) ToJSON(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(p, "", "  ")
	}
	return json.Marshal(p)
}

// WriteJSON writes the serialized path followed by a newline.
func (p ExecutionPath) WriteJSON(w io.Writer, pretty bool) error {
	data, err := p.ToJSON(pretty)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Clone returns a deep copy of the path.
func (p ExecutionPath) Clone() ExecutionPath {
	return ExecutionPath{
		Qubits:     slices.Clone(p.Qubits),
		Operations: cloneOperations(p.Operations),
	}
}

func cloneOperations(ops []Operation) []Operation {
	if ops == nil {
		return nil
	}
	out := make([]Operation, len(ops))
	for i, op := range ops {
		out[i] = op.Clone()
	}
	return out
}
