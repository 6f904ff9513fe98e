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
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tombee/circuitview/pkg/callable"
	"github.com/tombee/circuitview/pkg/pathtracer"
)

// Run status values recorded with run metrics.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// MetricsCollector records call and run metrics.
type MetricsCollector struct {
	meter metric.Meter

	callsTotal        metric.Int64Counter
	measurementsTotal metric.Int64Counter
	runsTotal         metric.Int64Counter
	operationsTotal   metric.Int64Counter
	elidedTotal       metric.Int64Counter

	runDuration metric.Float64Histogram
	runQubits   metric.Int64Histogram

	activeRuns   map[string]bool
	activeRunsMu sync.RWMutex
}

// NewMetricsCollector creates a collector on the given meter provider.
func NewMetricsCollector(meterProvider metric.MeterProvider) (*MetricsCollector, error) {
	meter := meterProvider.Meter(InstrumentationName)

	mc := &MetricsCollector{
		meter:      meter,
		activeRuns: make(map[string]bool),
	}

	var err error

	mc.callsTotal, err = meter.Int64Counter(
		"circuitview_calls_total",
		metric.WithDescription("Total number of observed calls by kind"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	mc.measurementsTotal, err = meter.Int64Counter(
		"circuitview_measurements_total",
		metric.WithDescription("Total number of observed measurement calls"),
		metric.WithUnit("{measurement}"),
	)
	if err != nil {
		return nil, err
	}

	mc.runsTotal, err = meter.Int64Counter(
		"circuitview_runs_total",
		metric.WithDescription("Total number of traced runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	mc.operationsTotal, err = meter.Int64Counter(
		"circuitview_operations_total",
		metric.WithDescription("Total number of circuit operations recorded"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	mc.elidedTotal, err = meter.Int64Counter(
		"circuitview_elided_calls_total",
		metric.WithDescription("Total number of calls skipped because they were not at the render depth"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	mc.runDuration, err = meter.Float64Histogram(
		"circuitview_run_duration_seconds",
		metric.WithDescription("Traced run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	mc.runQubits, err = meter.Int64Histogram(
		"circuitview_run_qubits",
		metric.WithDescription("Number of qubits declared per traced run"),
		metric.WithUnit("{qubit}"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.Int64ObservableGauge(
		"circuitview_active_runs",
		metric.WithDescription("Number of traced runs in progress"),
		metric.WithUnit("{run}"),
		metric.WithInt64Callback(func(ctx context.Context, observer metric.Int64Observer) error {
			observer.Observe(int64(mc.ActiveRuns()))
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return mc, nil
}

// RecordRunStart marks a run as active.
func (mc *MetricsCollector) RecordRunStart(ctx context.Context, traceID, program string) {
	mc.activeRunsMu.Lock()
	mc.activeRuns[traceID] = true
	mc.activeRunsMu.Unlock()
}

// RecordRunComplete records the outcome of a run.
func (mc *MetricsCollector) RecordRunComplete(ctx context.Context, traceID, program, status string, operations, qubits int, duration time.Duration) {
	mc.activeRunsMu.Lock()
	delete(mc.activeRuns, traceID)
	mc.activeRunsMu.Unlock()

	attrs := metric.WithAttributes(
		attribute.String("program", program),
		attribute.String("status", status),
	)
	mc.runsTotal.Add(ctx, 1, attrs)
	mc.operationsTotal.Add(ctx, int64(operations), attrs)
	mc.runDuration.Record(ctx, duration.Seconds(), attrs)
	mc.runQubits.Record(ctx, int64(qubits), attrs)
}

// ActiveRuns returns the number of runs started but not completed.
func (mc *MetricsCollector) ActiveRuns() int {
	mc.activeRunsMu.RLock()
	defer mc.activeRunsMu.RUnlock()
	return len(mc.activeRuns)
}

// ElisionHook returns a tracer hook counting elided calls by depth.
func (mc *MetricsCollector) ElisionHook(ctx context.Context) pathtracer.ElisionFunc {
	return func(_ *callable.Descriptor, depth int) {
		mc.elidedTotal.Add(ctx, 1, metric.WithAttributes(attribute.Int("depth", depth)))
	}
}

// Listener returns a listener counting calls by kind.
func (mc *MetricsCollector) Listener(ctx context.Context, classifier *callable.Classifier) pathtracer.Listener {
	if classifier == nil {
		classifier = callable.DefaultClassifier()
	}
	return &callCounter{ctx: ctx, mc: mc, classifier: classifier}
}

type callCounter struct {
	ctx        context.Context
	mc         *MetricsCollector
	classifier *callable.Classifier
}

func (c *callCounter) OnOperationStart(op *callable.Descriptor, _ callable.Value) error {
	kind := c.classifier.Classify(op)
	if c.classifier.IsTransparent(op) {
		kind = callable.KindTransparent
	}
	c.mc.callsTotal.Add(c.ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
	if kind == callable.KindMeasurement {
		c.mc.measurementsTotal.Add(c.ctx, 1)
	}
	return nil
}

func (c *callCounter) OnOperationEnd(*callable.Descriptor, callable.Value) error {
	return nil
}
