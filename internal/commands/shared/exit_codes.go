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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	cverrors "github.com/tombee/circuitview/pkg/errors"
)

// Exit codes for circuitview commands
const (
	ExitSuccess          = 0
	ExitTraceFailed      = 1
	ExitInvalidCallLog   = 2
	ExitUnresolvedTarget = 3
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewTraceError creates an error for a run that aborted while tracing
func NewTraceError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitTraceFailed, Message: msg, Cause: cause}
}

// NewInvalidCallLogError creates an error for unreadable or invalid input
func NewInvalidCallLogError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidCallLog, Message: msg, Cause: cause}
}

// NewUnresolvedTargetError creates an error for a program missing from the call log
func NewUnresolvedTargetError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitUnresolvedTarget, Message: msg, Cause: cause}
}

// Classify wraps err in an ExitError chosen by its type. Errors that
// already carry an exit code are returned unchanged.
func Classify(msg string, err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	switch cverrors.TypeOf(err) {
	case cverrors.TypeUnresolvedTarget:
		return NewUnresolvedTargetError(msg, err)
	case cverrors.TypeValidation, cverrors.TypeConfig:
		return NewInvalidCallLogError(msg, err)
	default:
		return NewTraceError(msg, err)
	}
}

// ExitCode returns the exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitTraceFailed
}

// WriteError prints err and any suggestion it carries to w, and returns the
// exit code for it.
func WriteError(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(w, RenderError(err.Error()))
	if suggestion := userVisibleSuggestion(err); suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
	}
	return ExitCode(err)
}

// HandleExitError prints err to stderr and exits with its code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(WriteError(os.Stderr, err))
}

// userVisibleSuggestion walks the error chain to the first UserVisibleError.
func userVisibleSuggestion(err error) string {
	for err != nil {
		if userErr, ok := err.(cverrors.UserVisibleError); ok {
			if userErr.IsUserVisible() {
				return userErr.Suggestion()
			}
			return ""
		}
		err = errors.Unwrap(err)
	}
	return ""
}
