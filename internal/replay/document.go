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

// Package replay drives a call listener from a recorded call log.
//
// A call log is a YAML (or JSON) document naming one or more programs, each
// a tree of calls:
//
//	programs:
//	  Bell:
//	    op: Bell
//	    calls:
//	      - op: H
//	        args: {qubit: 0}
//	      - op: CNOT
//	        args: [{qubit: 0}, {qubit: 1}]
//	      - op: {name: Rx, bound: [0.5, {hole: true}]}
//	        args: {qubit: 1}
//
// The Executor replays a program as the strictly nested start/end
// notifications a live executor would emit.
package replay

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/tombee/circuitview/pkg/callable"
	cverrors "github.com/tombee/circuitview/pkg/errors"
)

// Document is a parsed call log.
type Document struct {
	Programs map[string]*Call `yaml:"programs"`

	// Path is the file the document was loaded from, if any.
	Path string `yaml:"-"`
}

// Call is one recorded invocation and the calls it made.
type Call struct {
	Op     *callable.Descriptor
	Args   callable.Value
	Result callable.Value
	Calls  []*Call

	// Line is the position of the call in the source document.
	Line int
}

// opSpec is the YAML form of a descriptor. A plain string is a body call.
type opSpec struct {
	Name    string    `yaml:"name"`
	Variant string    `yaml:"variant"`
	Base    *opSpec   `yaml:"base"`
	Bound   yaml.Node `yaml:"bound"`

	line int
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *opSpec) UnmarshalYAML(node *yaml.Node) error {
	o.line = node.Line
	if node.Kind == yaml.ScalarNode {
		o.Name = node.Value
		return nil
	}
	type plain opSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*o = opSpec(p)
	o.line = node.Line
	return nil
}

func (o *opSpec) descriptor() (*callable.Descriptor, error) {
	variant, err := callable.ParseVariant(o.Variant)
	if err != nil {
		return nil, &cverrors.ValidationError{
			Field:   fmt.Sprintf("line %d: op.variant", o.line),
			Message: err.Error(),
			Hint:    "Use one of body, adjoint, controlled, controlled_adjoint",
		}
	}

	var base *callable.Descriptor
	if o.Base != nil {
		if base, err = o.Base.descriptor(); err != nil {
			return nil, err
		}
	}

	name := o.Name
	if name == "" && base != nil {
		name = base.Name
	}
	if name == "" {
		return nil, &cverrors.ValidationError{
			Field:   fmt.Sprintf("line %d: op.name", o.line),
			Message: "required field is missing",
			Hint:    "Give every call an operation name",
		}
	}

	if o.Bound.Kind != 0 {
		bound, err := decodeValue(&o.Bound)
		if err != nil {
			return nil, err
		}
		if base == nil {
			base = &callable.Descriptor{Name: name, Variant: variant}
		}
		return callable.Partial(base, bound), nil
	}

	return &callable.Descriptor{Name: name, Variant: variant, Base: base}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Call) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Op     *opSpec   `yaml:"op"`
		Args   yaml.Node `yaml:"args"`
		Result yaml.Node `yaml:"result"`
		Calls  []*Call   `yaml:"calls"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Op == nil {
		return &cverrors.ValidationError{
			Field:   fmt.Sprintf("line %d: op", node.Line),
			Message: "required field is missing",
			Hint:    "Every call needs an op",
		}
	}

	op, err := raw.Op.descriptor()
	if err != nil {
		return err
	}
	args, err := decodeValue(&raw.Args)
	if err != nil {
		return err
	}
	var result callable.Value
	if raw.Result.Kind != 0 {
		if result, err = decodeValue(&raw.Result); err != nil {
			return err
		}
	}

	*c = Call{
		Op:     op,
		Args:   args,
		Result: result,
		Calls:  raw.Calls,
		Line:   node.Line,
	}
	return nil
}

// Size returns the number of calls in the tree rooted at c.
func (c *Call) Size() int {
	n := 1
	for _, child := range c.Calls {
		n += child.Size()
	}
	return n
}

// Parse parses a call log.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		var valErr *cverrors.ValidationError
		if errors.As(err, &valErr) {
			return nil, cverrors.Wrap(err, "failed to parse call log")
		}
		return nil, &cverrors.ValidationError{
			Field:   "call log",
			Message: err.Error(),
			Hint:    "Check the YAML syntax of the call log",
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads and parses the call log at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cverrors.Wrap(err, "failed to read call log")
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, cverrors.Wrap(err, path)
	}
	doc.Path = path
	return doc, nil
}

// Glob expands a doublestar pattern into the matching call log paths, in
// lexical order. A pattern without meta characters is returned as is.
func Glob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, cverrors.Wrapf(err, "invalid call log pattern %q", pattern)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no call logs match %q", pattern)
	}
	slices.Sort(matches)
	return matches, nil
}

// Validate checks that the document names at least one program and that
// every program has a root call.
func (d *Document) Validate() error {
	if len(d.Programs) == 0 {
		return &cverrors.ValidationError{
			Field:   "programs",
			Message: "no programs defined",
			Hint:    "Add a programs mapping from program name to its root call",
		}
	}
	for name, call := range d.Programs {
		if call == nil {
			return &cverrors.ValidationError{
				Field:   "programs." + name,
				Message: "program has no root call",
			}
		}
	}
	return nil
}

// Names returns the program names in sorted order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Programs))
	for name := range d.Programs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve returns the root call of the named program. An empty name selects
// the only program of a single-program document.
func (d *Document) Resolve(name string) (*Call, error) {
	if name == "" && len(d.Programs) == 1 {
		for _, call := range d.Programs {
			return call, nil
		}
	}
	if call, ok := d.Programs[name]; ok {
		return call, nil
	}
	return nil, &cverrors.UnresolvedTargetError{Name: name, Available: d.Names()}
}
