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

	"github.com/google/uuid"
)

// TraceID identifies one traced run across logs and spans.
type TraceID string

type traceIDKeyType struct{}

var traceIDKey = traceIDKeyType{}

// NewTraceID generates a new random trace id.
func NewTraceID() TraceID {
	return TraceID(uuid.New().String())
}

// String returns the string representation of the trace id.
func (t TraceID) String() string {
	return string(t)
}

// IsValid reports whether t is a well-formed UUID.
func (t TraceID) IsValid() bool {
	_, err := uuid.Parse(string(t))
	return err == nil && len(t) == 36
}

// ContextWithTraceID adds the trace id to the context.
func ContextWithTraceID(ctx context.Context, id TraceID) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

// TraceIDFromContext returns the trace id in ctx, or the empty id.
func TraceIDFromContext(ctx context.Context) TraceID {
	if id, ok := ctx.Value(traceIDKey).(TraceID); ok {
		return id
	}
	return ""
}
