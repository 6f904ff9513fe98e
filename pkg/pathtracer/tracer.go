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

package pathtracer

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/tombee/circuitview/internal/log"
	"github.com/tombee/circuitview/pkg/callable"
	"github.com/tombee/circuitview/pkg/circuit"
	cverrors "github.com/tombee/circuitview/pkg/errors"
)

// DefaultDepth renders the operations called directly by the traced operation.
const DefaultDepth = 1

// ElisionFunc observes a call skipped because it is not at the render depth.
// depth is the filtered nesting depth of the call, the traced operation being
// depth 1.
type ElisionFunc func(op *callable.Descriptor, depth int)

// Listener receives the call notifications of an executor. Every start is
// matched by exactly one end for the same invocation, and invocations nest.
type Listener interface {
	// OnOperationStart is called before op runs with its argument value.
	OnOperationStart(op *callable.Descriptor, args callable.Value) error

	// OnOperationEnd is called after op returns. result may be nil.
	OnOperationEnd(op *callable.Descriptor, result callable.Value) error
}

// Tracer reconstructs an ExecutionPath from call notifications.
//
// Only calls at exactly the render depth become operations; transparent
// containers do not count towards the depth. A Tracer belongs to one traced
// run and is driven by a single goroutine.
type Tracer struct {
	currDepth   int
	renderDepth int

	qubitRegisters     map[int]circuit.Register
	classicalRegisters map[int][]circuit.Register
	operations         []circuit.Operation

	classifier *callable.Classifier
	logger     *slog.Logger
	onElided   ElisionFunc

	// err is set by the first failed conversion; the trace is aborted from then on.
	err error
}

var _ Listener = (*Tracer)(nil)

// New creates a tracer rendering the given depth. Depth 1 draws the
// operations called by the traced operation; the traced operation itself is
// the implicit outermost frame.
func New(depth int) *Tracer {
	return &Tracer{
		renderDepth:        depth + 1,
		qubitRegisters:     make(map[int]circuit.Register),
		classicalRegisters: make(map[int][]circuit.Register),
		classifier:         callable.DefaultClassifier(),
		logger:             slog.Default(),
	}
}

// WithClassifier sets the classifier used to recognize special operations.
func (t *Tracer) WithClassifier(c *callable.Classifier) *Tracer {
	if c != nil {
		t.classifier = c
	}
	return t
}

// WithLogger sets a custom logger for the tracer.
func (t *Tracer) WithLogger(logger *slog.Logger) *Tracer {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// WithElisionHook sets a function called for every elided call.
func (t *Tracer) WithElisionHook(fn ElisionFunc) *Tracer {
	t.onElided = fn
	return t
}

// RenderDepth returns the configured depth.
func (t *Tracer) RenderDepth() int {
	return t.renderDepth - 1
}

// Depth returns the current filtered nesting depth.
func (t *Tracer) Depth() int {
	return t.currDepth
}

// Err returns the error that aborted the trace, if any.
func (t *Tracer) Err() error {
	return t.err
}

// OnOperationStart implements Listener.
func (t *Tracer) OnOperationStart(op *callable.Descriptor, args callable.Value) error {
	if t.err != nil {
		return t.err
	}
	if op == nil {
		return t.abort(&cverrors.MalformedArgumentError{Reason: "call without operation descriptor"})
	}
	if t.classifier.IsTransparent(op) {
		return nil
	}

	t.currDepth++
	if t.currDepth != t.renderDepth {
		log.Trace(t.logger, "call elided",
			slog.String("operation", op.String()),
			slog.Int(log.DepthKey, t.currDepth))
		if t.onElided != nil {
			t.onElided(op, t.currDepth)
		}
		return nil
	}

	operation, err := t.convert(op, args)
	if err != nil {
		return t.abort(withOperation(err, op))
	}
	if operation == nil {
		t.logger.Debug("call suppressed", slog.String("operation", op.String()))
		return nil
	}

	t.operations = append(t.operations, *operation)
	t.logger.Debug("operation recorded",
		slog.String(log.GateKey, operation.Gate),
		slog.Int(log.DepthKey, t.currDepth),
		slog.Int("index", len(t.operations)-1))
	return nil
}

// OnOperationEnd implements Listener.
func (t *Tracer) OnOperationEnd(op *callable.Descriptor, _ callable.Value) error {
	if t.err != nil {
		return t.err
	}
	if op == nil {
		return t.abort(&cverrors.MalformedArgumentError{Reason: "call without operation descriptor"})
	}
	if t.classifier.IsTransparent(op) {
		return nil
	}
	t.currDepth--
	return nil
}

func (t *Tracer) abort(err error) error {
	t.err = err
	t.logger.Error("trace aborted", slog.Any("error", err))
	return err
}

// withOperation names op in malformed argument errors raised by the value
// visitors, which do not know which call they are flattening.
func withOperation(err error, op *callable.Descriptor) error {
	var malformedErr *cverrors.MalformedArgumentError
	if errors.As(err, &malformedErr) && malformedErr.Operation == "" {
		malformedErr.Operation = op.String()
	}
	return err
}

// convert turns one call at the render depth into zero or one operation.
// Partial applications and functor variants recurse without changing depth.
func (t *Tracer) convert(op *callable.Descriptor, args callable.Value) (*circuit.Operation, error) {
	switch kind := t.classifier.Classify(op); kind {
	case callable.KindPartial:
		if op.Base == nil {
			return nil, &cverrors.MalformedArgumentError{Reason: "partial application without base operation"}
		}
		merged, err := callable.Merge(op.Bound, args)
		if err != nil {
			return nil, err
		}
		return t.convert(op.Base, merged)

	case callable.KindControlled:
		controls, inner, err := callable.SplitControlled(args)
		if err != nil {
			return nil, err
		}
		base, err := t.convert(op.Unwrapped(), inner)
		if err != nil || base == nil {
			return base, err
		}
		base.Controlled = true
		base.Adjoint = base.Adjoint || op.Variant.IsAdjoint()
		base.Controls = append(t.qubitRegisterList(controls), base.Controls...)
		return base, nil

	case callable.KindAdjoint:
		base, err := t.convert(op.Unwrapped(), args)
		if err != nil || base == nil {
			return base, err
		}
		base.Adjoint = true
		return base, nil

	case callable.KindControlledX:
		return t.controlledX(args, 1)

	case callable.KindDoublyControlledX:
		return t.controlledX(args, 2)

	case callable.KindMeasurement:
		return t.measure(args)

	case callable.KindReset:
		return nil, nil

	default:
		// Generic calls, including transparent containers reached through a
		// partial application or functor.
		return t.generic(op, args)
	}
}

// controlledX maps CNOT-like calls to a controlled X on the last qubit.
func (t *Tracer) controlledX(args callable.Value, numControls int) (*circuit.Operation, error) {
	qubits, err := callable.CollectQubits(args)
	if err != nil {
		return nil, err
	}
	if len(qubits) != numControls+1 {
		return nil, &cverrors.MalformedArgumentError{
			Reason: fmt.Sprintf("expected %d qubits, got %d", numControls+1, len(qubits)),
		}
	}

	return &circuit.Operation{
		Gate:       "X",
		Controlled: true,
		Controls:   t.qubitRegisterList(qubits[:numControls]),
		Targets:    t.qubitRegisterList(qubits[numControls:]),
	}, nil
}

// measure records a measurement of the first qubit into a new classical register.
func (t *Tracer) measure(args callable.Value) (*circuit.Operation, error) {
	qubits, err := callable.CollectQubits(args)
	if err != nil {
		return nil, err
	}
	if len(qubits) == 0 {
		return nil, &cverrors.MalformedArgumentError{Reason: "measurement without a qubit"}
	}

	q := qubits[0]
	return &circuit.Operation{
		Gate:     "measure",
		Controls: []circuit.Register{t.qubitRegister(q)},
		Targets:  []circuit.Register{t.newClassicalRegister(q)},
	}, nil
}

func (t *Tracer) generic(op *callable.Descriptor, args callable.Value) (*circuit.Operation, error) {
	argStr, err := callable.FormatArgs(args)
	if err != nil {
		return nil, err
	}
	qubits, err := callable.CollectQubits(args)
	if err != nil {
		return nil, err
	}

	return &circuit.Operation{
		Gate:     op.Name,
		ArgStr:   argStr,
		Controls: []circuit.Register{},
		Targets:  t.qubitRegisterList(qubits),
	}, nil
}

func (t *Tracer) qubitRegister(q callable.Qubit) circuit.Register {
	reg, ok := t.qubitRegisters[q.ID]
	if !ok {
		reg = circuit.NewQubitRegister(q.ID)
		t.qubitRegisters[q.ID] = reg
	}
	return reg
}

func (t *Tracer) qubitRegisterList(qubits []callable.Qubit) []circuit.Register {
	out := make([]circuit.Register, 0, len(qubits))
	for _, q := range qubits {
		out = append(out, t.qubitRegister(q))
	}
	return out
}

func (t *Tracer) newClassicalRegister(q callable.Qubit) circuit.Register {
	regs := t.classicalRegisters[q.ID]
	reg := circuit.NewClassicalRegister(q.ID, len(regs))
	t.classicalRegisters[q.ID] = append(regs, reg)
	return reg
}

// ClassicalRegister returns the register holding the most recent measurement
// of qubit qID. Referencing a qubit that was never measured is a logic error
// in the traced program: it returns an InvalidTraceStateError and aborts the
// trace.
func (t *Tracer) ClassicalRegister(qID int) (circuit.Register, error) {
	regs := t.classicalRegisters[qID]
	if len(regs) == 0 {
		return circuit.Register{}, t.abort(&cverrors.InvalidTraceStateError{QubitID: qID})
	}
	return regs[len(regs)-1], nil
}

// GetExecutionPath returns a snapshot of the trace: qubit declarations in
// ascending id order, each with its classical register count, and the
// operations in the order they were recorded. It does not modify the tracer.
func (t *Tracer) GetExecutionPath() circuit.ExecutionPath {
	ids := make([]int, 0, len(t.qubitRegisters))
	for id := range t.qubitRegisters {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	qubits := make([]circuit.QubitDeclaration, 0, len(ids))
	for _, id := range ids {
		qubits = append(qubits, circuit.QubitDeclaration{
			ID:          id,
			NumChildren: len(t.classicalRegisters[id]),
		})
	}

	path := circuit.ExecutionPath{
		Qubits:     qubits,
		Operations: t.operations,
	}
	return path.Clone()
}
