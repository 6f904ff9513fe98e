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
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_JSON(t *testing.T) {
	tests := []struct {
		name string
		reg  Register
		want string
	}{
		{
			name: "qubit has no cId",
			reg:  NewQubitRegister(2),
			want: `{"type":"Qubit","qId":2}`,
		},
		{
			name: "classical with cId zero",
			reg:  NewClassicalRegister(1, 0),
			want: `{"type":"Classical","qId":1,"cId":0}`,
		},
		{
			name: "classical with later cId",
			reg:  NewClassicalRegister(0, 4),
			want: `{"type":"Classical","qId":0,"cId":4}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.reg)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Register
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.reg, back)
		})
	}
}

func TestRegister_UnmarshalRejectsClassicalWithoutCID(t *testing.T) {
	var r Register
	err := json.Unmarshal([]byte(`{"type":"Classical","qId":1}`), &r)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"type":"Quantum","qId":1}`), &r)
	assert.Error(t, err)
}

func TestRegister_Equality(t *testing.T) {
	assert.Equal(t, NewQubitRegister(1), NewQubitRegister(1))
	assert.NotEqual(t, NewQubitRegister(1), NewClassicalRegister(1, 0))
	assert.NotEqual(t, NewClassicalRegister(1, 0), NewClassicalRegister(1, 1))
	assert.Equal(t, "q3", NewQubitRegister(3).String())
	assert.Equal(t, "c3.1", NewClassicalRegister(3, 1).String())
}

func TestOperation_OmitsAbsentFields(t *testing.T) {
	op := Operation{Gate: "H", Targets: []Register{NewQubitRegister(0)}}

	data, err := json.Marshal(op)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.NotContains(t, fields, "argStr")
	assert.NotContains(t, fields, "children")
	assert.NotContains(t, fields, "controlled")
	assert.NotContains(t, fields, "adjoint")
	assert.Equal(t, []any{}, fields["controls"])
	assert.Len(t, fields["targets"], 1)
}

func TestOperation_EmptyChildGroupsOmitted(t *testing.T) {
	data, err := json.Marshal(Operation{Gate: "H", Children: [][]Operation{}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "children")
}

func TestOperation_NestedChildren(t *testing.T) {
	op := Operation{
		Gate:       "ApplyIfElse",
		Controlled: true,
		Controls:   []Register{NewClassicalRegister(0, 0)},
		Children: [][]Operation{
			{{Gate: "X", Targets: []Register{NewQubitRegister(1)}}},
			{{Gate: "Z", Targets: []Register{NewQubitRegister(1)}}},
		},
	}

	data, err := json.Marshal(op)
	require.NoError(t, err)

	want := `{
		"gate": "ApplyIfElse",
		"children": [
			[{"gate":"X","controls":[],"targets":[{"type":"Qubit","qId":1}]}],
			[{"gate":"Z","controls":[],"targets":[{"type":"Qubit","qId":1}]}]
		],
		"controlled": true,
		"controls": [{"type":"Classical","qId":0,"cId":0}],
		"targets": []
	}`
	assert.JSONEq(t, want, string(data))
}

func TestOperation_NilChildGroupIsEmptyList(t *testing.T) {
	op := Operation{
		Gate:     "ApplyIfElse",
		Children: [][]Operation{nil, {{Gate: "X"}}},
	}

	data, err := json.Marshal(op)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"gate": "ApplyIfElse",
		"children": [[], [{"gate":"X","controls":[],"targets":[]}]],
		"controls": [],
		"targets": []
	}`, string(data))
	assert.Nil(t, op.Children[0])
}

func TestExecutionPath_ToJSON(t *testing.T) {
	path := ExecutionPath{
		Qubits: []QubitDeclaration{{ID: 0, NumChildren: 1}, {ID: 1}},
		Operations: []Operation{
			{Gate: "Rx", ArgStr: "(0.5)", Targets: []Register{NewQubitRegister(1)}},
			{
				Gate:     "measure",
				Controls: []Register{NewQubitRegister(0)},
				Targets:  []Register{NewClassicalRegister(0, 0)},
			},
		},
	}

	compact, err := path.ToJSON(false)
	require.NoError(t, err)
	pretty, err := path.ToJSON(true)
	require.NoError(t, err)

	assert.NotContains(t, string(compact), "\n")
	assert.Contains(t, string(pretty), "\n  ")
	assert.JSONEq(t, string(compact), string(pretty))

	want := `{
		"qubits": [{"id":0,"numChildren":1},{"id":1}],
		"operations": [
			{"gate":"Rx","argStr":"(0.5)","controls":[],"targets":[{"type":"Qubit","qId":1}]},
			{"gate":"measure","controls":[{"type":"Qubit","qId":0}],"targets":[{"type":"Classical","qId":0,"cId":0}]}
		]
	}`
	assert.JSONEq(t, want, string(compact))
}

func TestExecutionPath_EmptyListsNotNull(t *testing.T) {
	data, err := ExecutionPath{}.ToJSON(false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"qubits":[],"operations":[]}`, string(data))
}

func TestExecutionPath_WriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExecutionPath{}.WriteJSON(&buf, false))
	assert.Equal(t, "{\"qubits\":[],\"operations\":[]}\n", buf.String())
}

func TestExecutionPath_CloneIsDeep(t *testing.T) {
	path := ExecutionPath{
		Qubits: []QubitDeclaration{{ID: 0}},
		Operations: []Operation{{
			Gate:     "X",
			Targets:  []Register{NewQubitRegister(0)},
			Children: [][]Operation{{{Gate: "H"}}},
		}},
	}

	clone := path.Clone()
	clone.Qubits[0].NumChildren = 7
	clone.Operations[0].Targets[0] = NewQubitRegister(9)
	clone.Operations[0].Children[0][0].Gate = "Z"

	assert.Equal(t, 0, path.Qubits[0].NumChildren)
	assert.Equal(t, NewQubitRegister(0), path.Operations[0].Targets[0])
	assert.Equal(t, "H", path.Operations[0].Children[0][0].Gate)
}
