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

package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	cverrors "github.com/tombee/circuitview/pkg/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *cverrors.ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &cverrors.ValidationError{
				Field:   "programs.Main.op.name",
				Message: "required field is missing",
				Hint:    "Give every call an operation name",
			},
			wantMsg: "validation failed on programs.Main.op.name: required field is missing",
		},
		{
			name: "without field",
			err: &cverrors.ValidationError{
				Message: "empty document",
			},
			wantMsg: "validation failed: empty document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.True(t, tt.err.IsUserVisible())
			assert.Equal(t, tt.err.Hint, tt.err.Suggestion())
		})
	}
}

func TestUnresolvedTargetError(t *testing.T) {
	err := &cverrors.UnresolvedTargetError{Name: "Teleport", Available: []string{"Bell", "GHZ"}}

	assert.Equal(t, "invalid operation name: Teleport", err.Error())
	assert.Contains(t, err.Suggestion(), "Bell")
	assert.Equal(t, "unresolved_target", err.ErrorType())

	bare := &cverrors.UnresolvedTargetError{Name: "X"}
	assert.Empty(t, bare.Suggestion())
}

func TestInvalidTraceStateError(t *testing.T) {
	err := &cverrors.InvalidTraceStateError{QubitID: 3}

	assert.Equal(t, "no classical registers found for qubit 3", err.Error())
	assert.Equal(t, "invalid_trace_state", err.ErrorType())
}

func TestMalformedArgumentError(t *testing.T) {
	tests := []struct {
		name    string
		err     *cverrors.MalformedArgumentError
		wantMsg string
	}{
		{
			name:    "with operation",
			err:     &cverrors.MalformedArgumentError{Operation: "CNOT", Reason: "expected 2 qubits, got 1"},
			wantMsg: "malformed arguments for CNOT: expected 2 qubits, got 1",
		},
		{
			name:    "without operation",
			err:     &cverrors.MalformedArgumentError{Reason: "nil value"},
			wantMsg: "malformed arguments: nil value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("file read error")
	err := &cverrors.ConfigError{Key: "render_depth", Reason: "must be >= 0", Cause: cause}

	assert.Equal(t, "config error at render_depth: must be >= 0", err.Error())
	assert.Same(t, cause, err.Unwrap())
	assert.Equal(t, "config error: broken", (&cverrors.ConfigError{Reason: "broken"}).Error())
}

func TestErrorInterfaces(t *testing.T) {
	var _ cverrors.UserVisibleError = &cverrors.ValidationError{}
	var _ cverrors.UserVisibleError = &cverrors.UnresolvedTargetError{}
	var _ cverrors.ErrorClassifier = &cverrors.UnresolvedTargetError{}
	var _ cverrors.ErrorClassifier = &cverrors.InvalidTraceStateError{}
	var _ cverrors.ErrorClassifier = &cverrors.MalformedArgumentError{}
}
