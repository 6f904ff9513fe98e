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

package replay

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/circuitview/pkg/callable"
	cverrors "github.com/tombee/circuitview/pkg/errors"
	"github.com/tombee/circuitview/pkg/pathtracer"
)

// recorder logs notifications as "+Name" and "-Name".
type recorder struct {
	events []string
	failOn string
}

func (r *recorder) OnOperationStart(op *callable.Descriptor, _ callable.Value) error {
	if op.Name == r.failOn {
		return errors.New("listener failed")
	}
	r.events = append(r.events, "+"+op.Name)
	return nil
}

func (r *recorder) OnOperationEnd(op *callable.Descriptor, _ callable.Value) error {
	r.events = append(r.events, "-"+op.Name)
	return nil
}

func loadProgram(t *testing.T, file, name string) *Call {
	t.Helper()
	doc, err := Load(filepath.Join("testdata", file))
	require.NoError(t, err)
	call, err := doc.Resolve(name)
	require.NoError(t, err)
	return call
}

func TestExecutor_NotificationsAreNested(t *testing.T) {
	rec := &recorder{}
	exec := NewExecutor(rec)

	require.NoError(t, exec.Run(context.Background(), loadProgram(t, "teleport.yaml", "Teleport")))

	assert.Equal(t, []string{
		"+Teleport",
		"+PrepareBell", "+H", "-H", "+CNOT", "-CNOT", "-PrepareBell",
		"+ApplyToEach", "+H", "-H", "+H", "-H", "-ApplyToEach",
		"+Rx", "-Rx",
		"+T", "-T",
		"+M", "-M",
		"-Teleport",
	}, rec.events)
	assert.Equal(t, Stats{Calls: 10, MaxDepth: 3}, exec.Stats())
}

func TestExecutor_StopsAtFirstError(t *testing.T) {
	rec := &recorder{failOn: "CNOT"}

	err := NewExecutor(rec).Run(context.Background(), loadProgram(t, "bell.yaml", "Bell"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CNOT (line 7)")
	assert.Equal(t, []string{"+Bell", "+H", "-H"}, rec.events)
}

func TestExecutor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	err := NewExecutor(rec).Run(ctx, loadProgram(t, "bell.yaml", "Bell"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.events)
}

func TestExecutor_NilRoot(t *testing.T) {
	assert.Error(t, NewExecutor(&recorder{}).Run(context.Background(), nil))
}

func TestMulti(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	m := Multi{first, second}

	require.NoError(t, NewExecutor(m).Run(context.Background(), loadProgram(t, "bell.json", "Bell")))
	assert.Equal(t, first.events, second.events)
	assert.Len(t, first.events, 6)

	failing := Multi{&recorder{failOn: "H"}, second}
	second.events = nil
	assert.Error(t, NewExecutor(failing).Run(context.Background(), loadProgram(t, "bell.json", "Bell")))
	assert.Equal(t, []string{"+Bell"}, second.events)
}

func TestReplay_TracesBell(t *testing.T) {
	tr := pathtracer.New(pathtracer.DefaultDepth)
	require.NoError(t, NewExecutor(tr).Run(context.Background(), loadProgram(t, "bell.yaml", "Bell")))

	data, err := tr.GetExecutionPath().ToJSON(false)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"qubits": [{"id": 0, "numChildren": 1}, {"id": 1, "numChildren": 1}],
		"operations": [
			{"gate": "H", "controls": [], "targets": [{"type": "Qubit", "qId": 0}]},
			{"gate": "X", "controlled": true,
			 "controls": [{"type": "Qubit", "qId": 0}],
			 "targets": [{"type": "Qubit", "qId": 1}]},
			{"gate": "measure",
			 "controls": [{"type": "Qubit", "qId": 0}],
			 "targets": [{"type": "Classical", "qId": 0, "cId": 0}]},
			{"gate": "measure",
			 "controls": [{"type": "Qubit", "qId": 1}],
			 "targets": [{"type": "Classical", "qId": 1, "cId": 0}]}
		]
	}`, string(data))
}

func TestReplay_TracesTeleport(t *testing.T) {
	tr := pathtracer.New(pathtracer.DefaultDepth)
	require.NoError(t, NewExecutor(tr).Run(context.Background(), loadProgram(t, "teleport.yaml", "Teleport")))

	data, err := tr.GetExecutionPath().ToJSON(false)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"qubits": [{"id": 0}, {"id": 1}, {"id": 2, "numChildren": 1}],
		"operations": [
			{"gate": "PrepareBell", "controls": [],
			 "targets": [{"type": "Qubit", "qId": 1}, {"type": "Qubit", "qId": 2}]},
			{"gate": "H", "controls": [], "targets": [{"type": "Qubit", "qId": 0}]},
			{"gate": "H", "controls": [], "targets": [{"type": "Qubit", "qId": 1}]},
			{"gate": "Rx", "argStr": "(0.5)", "controlled": true,
			 "controls": [{"type": "Qubit", "qId": 0}],
			 "targets": [{"type": "Qubit", "qId": 2}]},
			{"gate": "T", "adjoint": true, "controls": [], "targets": [{"type": "Qubit", "qId": 2}]},
			{"gate": "measure",
			 "controls": [{"type": "Qubit", "qId": 2}],
			 "targets": [{"type": "Classical", "qId": 2, "cId": 0}]}
		]
	}`, string(data))
}

func TestReplay_DeeperRender(t *testing.T) {
	tr := pathtracer.New(2)
	require.NoError(t, NewExecutor(tr).Run(context.Background(), loadProgram(t, "teleport.yaml", "Teleport")))

	path := tr.GetExecutionPath()
	var gates []string
	for _, op := range path.Operations {
		gates = append(gates, op.Gate)
	}
	assert.Equal(t, []string{"H", "X"}, gates)
}

func TestReplay_MalformedCallAbortsTrace(t *testing.T) {
	doc, err := Parse([]byte(`
programs:
  P:
    op: P
    calls:
      - op: CCNOT
        args: [{qubit: 0}, {qubit: 1}]
      - op: H
        args: {qubit: 0}
`))
	require.NoError(t, err)
	root, err := doc.Resolve("P")
	require.NoError(t, err)

	tr := pathtracer.New(pathtracer.DefaultDepth)
	err = NewExecutor(tr).Run(context.Background(), root)

	var malformedErr *cverrors.MalformedArgumentError
	require.ErrorAs(t, err, &malformedErr)
	assert.Equal(t, "CCNOT", malformedErr.Operation)
	assert.Empty(t, tr.GetExecutionPath().Operations)
}

func TestTraceID(t *testing.T) {
	id := NewTraceID()
	assert.True(t, id.IsValid())
	assert.NotEqual(t, id, NewTraceID())
	assert.False(t, TraceID("not-a-uuid").IsValid())

	ctx := ContextWithTraceID(context.Background(), id)
	assert.Equal(t, id, TraceIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
