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

	cverrors "github.com/tombee/circuitview/pkg/errors"
)

func TestCollectQubits(t *testing.T) {
	tests := []struct {
		name string
		args Value
		want []Qubit
	}{
		{name: "single qubit", args: Qubit{ID: 3}, want: []Qubit{{ID: 3}}},
		{name: "unit", args: Unit, want: nil},
		{
			name: "tuple order is argument order",
			args: Tuple{Qubit{ID: 2}, Float(0.5), Qubit{ID: 0}},
			want: []Qubit{{ID: 2}, {ID: 0}},
		},
		{
			name: "nested containers flatten",
			args: Tuple{QubitArray{Qubits(4, 1), Qubit{ID: 7}}, Int(3)},
			want: []Qubit{{ID: 4}, {ID: 1}, {ID: 7}},
		},
		{
			name: "tuples inside containers",
			args: QubitArray{Tuple{Int(1), Qubit{ID: 5}}, Tuple{Int(2), Qubit{ID: 6}}},
			want: []Qubit{{ID: 5}, {ID: 6}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CollectQubits(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatArgs(t *testing.T) {
	tests := []struct {
		name string
		args Value
		want string
	}{
		{name: "qubit only", args: Qubit{ID: 0}, want: ""},
		{name: "unit", args: Unit, want: ""},
		{name: "single scalar", args: Float(1.5), want: "(1.5)"},
		{name: "angle and qubit", args: Tuple{Float(0.25), Qubit{ID: 1}}, want: "(0.25)"},
		{
			name: "several scalars skip qubits",
			args: Tuple{Int(2), Qubits(0, 1), String("PauliZ"), Qubit{ID: 2}},
			want: "(2,PauliZ)",
		},
		{
			name: "nested tuple renders parenthesized",
			args: Tuple{Tuple{Int(1), Tuple{Float(0.5), Qubit{ID: 0}}}, Qubit{ID: 1}},
			want: "((1,(0.5)))",
		},
		{
			name: "qubit only tuple renders empty parentheses",
			args: Tuple{Tuple{Qubit{ID: 0}, Qubit{ID: 1}}, Int(4)},
			want: "((),4)",
		},
		{
			name: "angle and qubit tuple",
			args: Tuple{Float(0.5), Tuple{Qubit{ID: 0}, Qubit{ID: 1}}},
			want: "(0.5,())",
		},
		{
			name: "qubit array is not a field",
			args: Tuple{Float(0.5), Qubits(0, 1)},
			want: "(0.5)",
		},
		{name: "bool scalar", args: Tuple{Scalar{V: true}, Qubit{ID: 0}}, want: "(true)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatArgs(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMalformedArguments(t *testing.T) {
	tests := []struct {
		name string
		args Value
	}{
		{name: "nil value", args: nil},
		{name: "nil tuple element", args: Tuple{Qubit{ID: 0}, nil}},
		{name: "scalar without value", args: Tuple{Scalar{}}},
		{name: "scalar wrapping a qubit", args: Scalar{V: Qubit{ID: 1}}},
		{name: "hole outside partial", args: Tuple{Hole{}, Qubit{ID: 0}}},
		{name: "scalar inside container", args: QubitArray{Qubit{ID: 0}, Int(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FormatArgs(tt.args)
			var malformedErr *cverrors.MalformedArgumentError
			require.ErrorAs(t, err, &malformedErr)

			_, err = CollectQubits(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestMerge(t *testing.T) {
	t.Run("single hole takes supplied value whole", func(t *testing.T) {
		got, err := Merge(Tuple{Float(0.5), Hole{}}, Qubit{ID: 2})
		require.NoError(t, err)
		assert.Equal(t, Tuple{Float(0.5), Qubit{ID: 2}}, got)
	})

	t.Run("several holes are filled in order", func(t *testing.T) {
		got, err := Merge(Tuple{Hole{}, Int(1), Tuple{Hole{}}}, Tuple{Qubit{ID: 0}, Qubit{ID: 1}})
		require.NoError(t, err)
		assert.Equal(t, Tuple{Qubit{ID: 0}, Int(1), Tuple{Qubit{ID: 1}}}, got)
	})

	t.Run("no holes accepts unit", func(t *testing.T) {
		got, err := Merge(Tuple{Int(1), Qubit{ID: 0}}, Unit)
		require.NoError(t, err)
		assert.Equal(t, Tuple{Int(1), Qubit{ID: 0}}, got)
	})

	t.Run("argument count mismatch fails closed", func(t *testing.T) {
		_, err := Merge(Tuple{Hole{}, Hole{}}, Tuple{Qubit{ID: 0}})
		assert.Error(t, err)

		_, err = Merge(Tuple{Int(1)}, Qubit{ID: 0})
		assert.Error(t, err)

		_, err = Merge(nil, Qubit{ID: 0})
		assert.Error(t, err)
	})

	t.Run("template is not modified", func(t *testing.T) {
		bound := Tuple{Hole{}, Float(0.1)}
		_, err := Merge(bound, Qubit{ID: 9})
		require.NoError(t, err)
		assert.Equal(t, Hole{}, bound[0])
	})
}

func TestSplitControlled(t *testing.T) {
	controls, inner, err := SplitControlled(Tuple{Qubits(0, 1), Tuple{Float(0.5), Qubit{ID: 2}}})
	require.NoError(t, err)
	assert.Equal(t, []Qubit{{ID: 0}, {ID: 1}}, controls)
	assert.Equal(t, Tuple{Float(0.5), Qubit{ID: 2}}, inner)

	_, _, err = SplitControlled(Qubit{ID: 0})
	assert.Error(t, err)

	_, _, err = SplitControlled(Tuple{Int(1), Qubit{ID: 0}})
	assert.Error(t, err)
}

func TestSplitControlled_RejectsNestedClassicalControls(t *testing.T) {
	tests := []struct {
		name     string
		controls Value
	}{
		{name: "tuple of scalars", controls: Tuple{Float(1.5)}},
		{name: "scalar beside qubits", controls: Tuple{Qubit{ID: 1}, Int(2)}},
		{name: "scalar deep in tuple", controls: Tuple{Tuple{Qubits(0), String("PauliX")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SplitControlled(Tuple{tt.controls, Qubit{ID: 0}})
			var malformedErr *cverrors.MalformedArgumentError
			require.ErrorAs(t, err, &malformedErr)
			assert.Contains(t, malformedErr.Reason, "classical controls")
		})
	}
}
