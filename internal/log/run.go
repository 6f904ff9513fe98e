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

package log

import (
	"context"
	"log/slog"
	"time"
)

// TraceRequest describes a traced run for logging purposes.
type TraceRequest struct {
	// Program is the name of the traced operation.
	Program string

	// Depth is the render depth.
	Depth int

	// Source is the call log path, if the run is a replay.
	Source string
}

// TraceSummary is what a finished run reports.
type TraceSummary struct {
	// Operations is the number of recorded operations.
	Operations int

	// Qubits is the number of declared qubits.
	Qubits int

	// Calls is the number of call notifications replayed.
	Calls int

	// MaxDepth is the deepest raw call nesting reached.
	MaxDepth int

	// Error is the error message if the run failed.
	Error string

	// DurationMs is the duration of the run in milliseconds.
	DurationMs int64
}

func (r *TraceRequest) attrs(event string) []any {
	attrs := []any{
		EventKey, event,
		ProgramKey, r.Program,
		DepthKey, r.Depth,
	}
	if r.Source != "" {
		attrs = append(attrs, SourceFileKey, r.Source)
	}
	return attrs
}

// LogTraceStart logs the start of a traced run.
func LogTraceStart(logger *slog.Logger, req *TraceRequest) {
	logger.Info("trace started", req.attrs("trace_start")...)
}

// LogTraceEnd logs the outcome of a traced run.
func LogTraceEnd(logger *slog.Logger, req *TraceRequest, sum *TraceSummary) {
	attrs := append(req.attrs("trace_end"),
		"operations", sum.Operations,
		"qubits", sum.Qubits,
		"calls", sum.Calls,
		"max_depth", sum.MaxDepth,
		DurationKey, sum.DurationMs,
	)

	level := slog.LevelInfo
	message := "trace completed"
	if sum.Error != "" {
		attrs = append(attrs, "error", sum.Error)
		level = slog.LevelError
		message = "trace failed"
	}

	logger.Log(context.Background(), level, message, attrs...)
}

// TraceMiddleware wraps a traced run with start and end logging.
type TraceMiddleware struct {
	logger *slog.Logger
}

// NewTraceMiddleware creates a new trace logging middleware.
func NewTraceMiddleware(logger *slog.Logger) *TraceMiddleware {
	return &TraceMiddleware{logger: logger}
}

// Handler runs fn, logging the request before and its summary after.
// fn fills in the operation and qubit counts; duration and error are set here.
func (m *TraceMiddleware) Handler(req *TraceRequest, fn func(sum *TraceSummary) error) error {
	start := time.Now()
	LogTraceStart(m.logger, req)

	sum := &TraceSummary{}
	err := fn(sum)

	sum.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		sum.Error = err.Error()
	}
	LogTraceEnd(m.logger, req, sum)

	return err
}
