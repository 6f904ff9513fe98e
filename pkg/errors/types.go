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

package errors

import (
	"fmt"
)

// ValidationError represents malformed user input such as an invalid call log.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Hint provides actionable guidance for fixing the error
	Hint string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// IsUserVisible implements UserVisibleError.
func (e *ValidationError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *ValidationError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *ValidationError) Suggestion() string { return e.Hint }

// ErrorType implements ErrorClassifier.
func (e *ValidationError) ErrorType() string { return TypeValidation }

// UnresolvedTargetError is returned when the top-level traced operation
// cannot be resolved by name. It is raised before any tracing starts.
type UnresolvedTargetError struct {
	// Name is the operation name that was requested
	Name string

	// Available lists the names that could have been resolved
	Available []string
}

// Error implements the error interface.
func (e *UnresolvedTargetError) Error() string {
	return fmt.Sprintf("invalid operation name: %s", e.Name)
}

// IsUserVisible implements UserVisibleError.
func (e *UnresolvedTargetError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *UnresolvedTargetError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *UnresolvedTargetError) Suggestion() string {
	if len(e.Available) == 0 {
		return ""
	}
	return fmt.Sprintf("available operations: %v", e.Available)
}

// ErrorType implements ErrorClassifier.
func (e *UnresolvedTargetError) ErrorType() string { return TypeUnresolvedTarget }

// InvalidTraceStateError signals a logic violation inside a trace: a
// measurement result was referenced for a qubit that was never measured.
// It aborts trace collection for the whole run.
type InvalidTraceStateError struct {
	// QubitID is the qubit whose classical register was requested
	QubitID int
}

// Error implements the error interface.
func (e *InvalidTraceStateError) Error() string {
	return fmt.Sprintf("no classical registers found for qubit %d", e.QubitID)
}

// ErrorType implements ErrorClassifier.
func (e *InvalidTraceStateError) ErrorType() string { return TypeInvalidTraceState }

// MalformedArgumentError is returned when an operation's argument value or
// descriptor cannot be flattened into registers and an argument string.
type MalformedArgumentError struct {
	// Operation is the declared name of the operation being converted
	Operation string

	// Reason explains which part of the shape was rejected
	Reason string
}

// Error implements the error interface.
func (e *MalformedArgumentError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("malformed arguments for %s: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf("malformed arguments: %s", e.Reason)
}

// ErrorType implements ErrorClassifier.
func (e *MalformedArgumentError) ErrorType() string { return TypeMalformedArgument }

// ConfigError represents configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "render_depth", "kinds.reset")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// ErrorType implements ErrorClassifier.
func (e *ConfigError) ErrorType() string { return TypeConfig }

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
