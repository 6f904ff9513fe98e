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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_Classify(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name string
		op   *Descriptor
		want Kind
	}{
		{name: "generic gate", op: Op("H"), want: KindGeneric},
		{name: "partial wins over name", op: Partial(Op("CNOT"), Tuple{Qubit{ID: 0}, Hole{}}), want: KindPartial},
		{name: "controlled variant", op: Ctl(Op("X")), want: KindControlled},
		{name: "controlled adjoint variant", op: CtlAdj(Op("S")), want: KindControlled},
		{name: "adjoint variant", op: Adj(Op("T")), want: KindAdjoint},
		{name: "cnot", op: Op("CNOT"), want: KindControlledX},
		{name: "ccnot", op: Op("CCNOT"), want: KindDoublyControlledX},
		{name: "qualified measurement", op: Op("Microsoft.Quantum.Intrinsic.M"), want: KindMeasurement},
		{name: "mresetz", op: Op("MResetZ"), want: KindMeasurement},
		{name: "reset", op: Op("Reset"), want: KindReset},
		{name: "reset all", op: Op("ResetAll"), want: KindReset},
		{name: "transparent container", op: Op("ApplyToEachCA"), want: KindTransparent},
		{name: "prefix is not a match", op: Op("Measure"), want: KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.op))
		})
	}
}

func TestClassifier_IsTransparent(t *testing.T) {
	c := DefaultClassifier()

	assert.True(t, c.IsTransparent(Op("ApplyToEach")))
	assert.True(t, c.IsTransparent(Ctl(Op("ApplyToEachC"))))
	assert.False(t, c.IsTransparent(Partial(Op("ApplyToEach"), Tuple{Hole{}})))
	assert.False(t, c.IsTransparent(Op("H")))
}

func TestClassifier_GlobPatterns(t *testing.T) {
	set := DefaultKindSet()
	set.Transparent = []string{"ApplyTo*"}
	set.Measurement = []string{"Measure{X,Y,Z}"}

	c, err := NewClassifier(set)
	require.NoError(t, err)

	assert.Equal(t, KindTransparent, c.Classify(Op("ApplyToFirst")))
	assert.Equal(t, KindMeasurement, c.Classify(Op("MeasureY")))
	assert.Equal(t, KindGeneric, c.Classify(Op("M")))
}

func TestNewClassifier_RejectsBadPatterns(t *testing.T) {
	set := DefaultKindSet()
	set.Reset = []string{"Reset["}
	_, err := NewClassifier(set)
	assert.Error(t, err)

	set = DefaultKindSet()
	set.Measurement = []string{""}
	_, err = NewClassifier(set)
	assert.Error(t, err)
}

func TestVariant(t *testing.T) {
	tests := []struct {
		in         string
		want       Variant
		controlled bool
		adjoint    bool
	}{
		{in: "", want: Body},
		{in: "Adjoint", want: Adjoint, adjoint: true},
		{in: "controlled", want: Controlled, controlled: true},
		{in: "ControlledAdjoint", want: ControlledAdjoint, controlled: true, adjoint: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseVariant(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.controlled, v.IsControlled())
			assert.Equal(t, tt.adjoint, v.IsAdjoint())
		})
	}

	_, err := ParseVariant("inverse")
	assert.Error(t, err)
}

func TestDescriptor_String(t *testing.T) {
	assert.Equal(t, "H", Op("H").String())
	assert.Equal(t, "Controlled Adjoint H", CtlAdj(Op("H")).String())
	assert.Equal(t, "Controlled Adjoint Rx{partial}", Ctl(Adj(Partial(Op("Rx"), Tuple{Float(1), Hole{}}))).String())
	assert.Equal(t, "Adjoint T", (&Descriptor{Name: "T", Variant: Adjoint}).String())
}
