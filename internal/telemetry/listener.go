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

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/circuitview/pkg/callable"
	"github.com/tombee/circuitview/pkg/pathtracer"
)

// Span attribute keys.
const (
	AttrOperation = attribute.Key("circuitview.operation")
	AttrVariant   = attribute.Key("circuitview.variant")
	AttrPartial   = attribute.Key("circuitview.partial")
	AttrKind      = attribute.Key("circuitview.kind")
	AttrDepth     = attribute.Key("circuitview.depth")
	AttrQubits    = attribute.Key("circuitview.qubits")
	AttrTraceID   = attribute.Key("circuitview.trace_id")
)

// SpanListener opens a span for every call and ends it when the call ends.
// Transparent containers get a span too, with kind "transparent", so the span
// tree mirrors the raw call tree. Span parents follow call nesting, rooted at
// the span in the context given to NewSpanListener.
type SpanListener struct {
	tracer     trace.Tracer
	classifier *callable.Classifier
	traceID    string

	root  context.Context
	stack []openSpan
}

type openSpan struct {
	ctx  context.Context
	span trace.Span
}

var _ pathtracer.Listener = (*SpanListener)(nil)

// NewSpanListener creates a listener emitting spans from tracer under ctx.
func NewSpanListener(ctx context.Context, tracer trace.Tracer, classifier *callable.Classifier) *SpanListener {
	if classifier == nil {
		classifier = callable.DefaultClassifier()
	}
	return &SpanListener{
		tracer:     tracer,
		classifier: classifier,
		root:       ctx,
	}
}

// WithTraceID tags every span with the run's trace id.
func (l *SpanListener) WithTraceID(id string) *SpanListener {
	l.traceID = id
	return l
}

// OnOperationStart implements pathtracer.Listener.
func (l *SpanListener) OnOperationStart(op *callable.Descriptor, args callable.Value) error {
	parent := l.root
	if n := len(l.stack); n > 0 {
		parent = l.stack[n-1].ctx
	}

	kind := l.classifier.Classify(op)
	if l.classifier.IsTransparent(op) {
		kind = callable.KindTransparent
	}

	attrs := []attribute.KeyValue{
		AttrOperation.String(op.Name),
		AttrVariant.String(op.Variant.String()),
		AttrPartial.Bool(op.IsPartial()),
		AttrKind.String(kind.String()),
		AttrDepth.Int(len(l.stack) + 1),
	}
	if qubits, err := callable.CollectQubits(args); err == nil {
		ids := make([]int, len(qubits))
		for i, q := range qubits {
			ids[i] = q.ID
		}
		attrs = append(attrs, AttrQubits.IntSlice(ids))
	}
	if l.traceID != "" {
		attrs = append(attrs, AttrTraceID.String(l.traceID))
	}

	ctx, span := l.tracer.Start(parent, op.String(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
	l.stack = append(l.stack, openSpan{ctx: ctx, span: span})
	return nil
}

// OnOperationEnd implements pathtracer.Listener.
func (l *SpanListener) OnOperationEnd(op *callable.Descriptor, _ callable.Value) error {
	n := len(l.stack)
	if n == 0 {
		return fmt.Errorf("end of %s without matching start", op)
	}
	top := l.stack[n-1]
	l.stack = l.stack[:n-1]

	top.span.SetStatus(codes.Ok, "")
	top.span.End()
	return nil
}

// Abort ends every open span with err recorded, innermost first. It is used
// when a run stops before all calls have ended.
func (l *SpanListener) Abort(err error) {
	for i := len(l.stack) - 1; i >= 0; i-- {
		s := l.stack[i].span
		if err != nil {
			s.RecordError(err)
			s.SetStatus(codes.Error, err.Error())
		}
		s.End()
	}
	l.stack = nil
}

// Open returns the number of calls started but not yet ended.
func (l *SpanListener) Open() int {
	return len(l.stack)
}
