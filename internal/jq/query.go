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

// Package jq filters exported execution paths with jq expressions.
package jq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/itchyny/gojq"

	"github.com/tombee/circuitview/pkg/circuit"
)

const (
	// DefaultTimeout bounds the evaluation of one query (1 second)
	DefaultTimeout = 1 * time.Second

	// DefaultMaxInputSize bounds the exported JSON a query runs against (10MB)
	DefaultMaxInputSize = 10 * 1024 * 1024
)

// Query is a compiled jq expression. A Query can be run any number of times,
// which lets the watch command compile once and filter every re-trace.
type Query struct {
	expression   string
	code         *gojq.Code
	timeout      time.Duration
	maxInputSize int
}

// Compile parses and compiles expression.
func Compile(expression string) (*Query, error) {
	if expression == "" {
		return nil, fmt.Errorf("empty jq expression")
	}

	parsed, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w", err)
	}

	return &Query{
		expression:   expression,
		code:         code,
		timeout:      DefaultTimeout,
		maxInputSize: DefaultMaxInputSize,
	}, nil
}

// String returns the source expression.
func (q *Query) String() string {
	return q.expression
}

// Run evaluates the query against the JSON export of path and returns every
// value the expression emits.
func (q *Query) Run(ctx context.Context, path circuit.ExecutionPath) ([]any, error) {
	data, err := path.ToJSON(false)
	if err != nil {
		return nil, fmt.Errorf("failed to export execution path: %w", err)
	}
	if len(data) > q.maxInputSize {
		return nil, fmt.Errorf("data size (%d bytes) exceeds maximum (%d bytes)", len(data), q.maxInputSize)
	}

	// gojq only accepts the generic JSON types.
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to decode execution path: %w", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	var results []any
	iter := q.code.RunWithContext(execCtx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if execCtx.Err() != nil && ctx.Err() == nil {
				return nil, fmt.Errorf("execution timeout after %v", q.timeout)
			}
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}

// WriteResults writes each result as one JSON document per line, or
// indented when pretty is set.
func WriteResults(w io.Writer, results []any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
