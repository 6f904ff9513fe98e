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

	"github.com/bmatcuk/doublestar/v4"
)

// Kind classifies a call for conversion into a circuit operation.
type Kind int

const (
	// KindGeneric is any call without special handling.
	KindGeneric Kind = iota
	// KindPartial is a partial application.
	KindPartial
	// KindControlled is a Controlled or ControlledAdjoint variant.
	KindControlled
	// KindAdjoint is an Adjoint variant.
	KindAdjoint
	// KindTransparent distributes a call over a collection without being a
	// visible gate itself.
	KindTransparent
	// KindControlledX is a two-qubit controlled-X such as CNOT.
	KindControlledX
	// KindDoublyControlledX is a three-qubit doubly-controlled-X such as CCNOT.
	KindDoublyControlledX
	// KindMeasurement measures one qubit into a new classical register.
	KindMeasurement
	// KindReset resets qubits and is never drawn.
	KindReset
)

var kindNames = map[Kind]string{
	KindGeneric:           "generic",
	KindPartial:           "partial",
	KindControlled:        "controlled",
	KindAdjoint:           "adjoint",
	KindTransparent:       "transparent",
	KindControlledX:       "controlled_x",
	KindDoublyControlledX: "doubly_controlled_x",
	KindMeasurement:       "measurement",
	KindReset:             "reset",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindSet lists the operation name patterns recognized for each named kind.
// Patterns use doublestar glob syntax and are matched against the full
// operation name and against its last dot-separated segment, so "CNOT" also
// matches "Microsoft.Quantum.Intrinsic.CNOT".
type KindSet struct {
	Transparent       []string `yaml:"transparent" json:"transparent"`
	ControlledX       []string `yaml:"controlled_x" json:"controlled_x"`
	DoublyControlledX []string `yaml:"doubly_controlled_x" json:"doubly_controlled_x"`
	Measurement       []string `yaml:"measurement" json:"measurement"`
	Reset             []string `yaml:"reset" json:"reset"`
}

// DefaultKindSet returns the names recognized by the standard library of
// intrinsic operations.
func DefaultKindSet() KindSet {
	return KindSet{
		Transparent:       []string{"ApplyToEach", "ApplyToEachC", "ApplyToEachA", "ApplyToEachCA"},
		ControlledX:       []string{"CNOT"},
		DoublyControlledX: []string{"CCNOT"},
		Measurement:       []string{"M", "MResetX", "MResetY", "MResetZ"},
		Reset:             []string{"Reset", "ResetAll"},
	}
}

// Groups returns the patterns of each named kind, in classification order.
func (s KindSet) Groups() []KindGroup {
	return []KindGroup{
		{Kind: KindTransparent, Patterns: s.Transparent},
		{Kind: KindControlledX, Patterns: s.ControlledX},
		{Kind: KindDoublyControlledX, Patterns: s.DoublyControlledX},
		{Kind: KindMeasurement, Patterns: s.Measurement},
		{Kind: KindReset, Patterns: s.Reset},
	}
}

// KindGroup pairs a kind with the name patterns that select it.
type KindGroup struct {
	Kind     Kind
	Patterns []string
}

// Classifier maps descriptors to kinds.
type Classifier struct {
	groups []KindGroup
}

// NewClassifier validates the patterns of set and returns a classifier.
func NewClassifier(set KindSet) (*Classifier, error) {
	groups := set.Groups()
	for _, g := range groups {
		for _, p := range g.Patterns {
			if p == "" || !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("invalid %s pattern %q", g.Kind, p)
			}
		}
	}
	return &Classifier{groups: groups}, nil
}

// DefaultClassifier returns a classifier over DefaultKindSet.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultKindSet())
	if err != nil {
		panic(err)
	}
	return c
}

// IsTransparent reports whether a call to d is a transparent container.
// Partial applications are never transparent.
func (c *Classifier) IsTransparent(d *Descriptor) bool {
	return !d.IsPartial() && c.matches(KindTransparent, d.Name)
}

// Classify returns the kind of a call to d. Structural kinds win over name
// kinds: a partial application is KindPartial whatever it wraps, and a
// functor variant is unwrapped before its name is considered.
func (c *Classifier) Classify(d *Descriptor) Kind {
	switch {
	case d.IsPartial():
		return KindPartial
	case d.Variant.IsControlled():
		return KindControlled
	case d.Variant.IsAdjoint():
		return KindAdjoint
	}
	for _, g := range c.groups {
		if c.matches(g.Kind, d.Name) {
			return g.Kind
		}
	}
	return KindGeneric
}

func (c *Classifier) matches(kind Kind, name string) bool {
	short := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		short = name[i+1:]
	}
	for _, g := range c.groups {
		if g.Kind != kind {
			continue
		}
		for _, p := range g.Patterns {
			if ok, _ := doublestar.Match(p, name); ok {
				return true
			}
			if short != name {
				if ok, _ := doublestar.Match(p, short); ok {
					return true
				}
			}
		}
	}
	return false
}
