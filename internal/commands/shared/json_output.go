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
	"encoding/json"
	"io"

	cverrors "github.com/tombee/circuitview/pkg/errors"
)

// JSONResponse is the base envelope for all JSON output
type JSONResponse struct {
	Version string `json:"@version"`
	Command string `json:"command"`
	Success bool   `json:"success"`
}

// JSONError represents a structured error with code, message, and suggestion
type JSONError struct {
	Code       string `json:"code"`
	Type       string `json:"type,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Error codes for structured JSON output
const (
	ErrorCodeTraceFailed      = "E101"
	ErrorCodeInvalidCallLog   = "E201"
	ErrorCodeUnresolvedTarget = "E301"
)

// NewResponse returns a successful envelope for command.
func NewResponse(command string) JSONResponse {
	return JSONResponse{Version: "1.0", Command: command, Success: true}
}

// EmitJSON writes response as indented JSON.
func EmitJSON(w io.Writer, response any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// EmitJSONError writes a failed envelope describing err.
func EmitJSONError(w io.Writer, command string, err error) error {
	type errorResponse struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}

	resp := errorResponse{
		JSONResponse: JSONResponse{Version: "1.0", Command: command, Success: false},
		Errors: []JSONError{{
			Code:       errorCode(err),
			Type:       cverrors.TypeOf(err),
			Message:    err.Error(),
			Suggestion: userVisibleSuggestion(err),
		}},
	}
	return EmitJSON(w, resp)
}

// errorCode maps the error type to a JSON error code. Errors without a type,
// such as flag errors, fall back to their exit code.
func errorCode(err error) string {
	switch cverrors.TypeOf(err) {
	case cverrors.TypeUnresolvedTarget:
		return ErrorCodeUnresolvedTarget
	case cverrors.TypeValidation, cverrors.TypeConfig:
		return ErrorCodeInvalidCallLog
	case cverrors.TypeInvalidTraceState, cverrors.TypeMalformedArgument:
		return ErrorCodeTraceFailed
	}
	switch ExitCode(err) {
	case ExitInvalidCallLog:
		return ErrorCodeInvalidCallLog
	case ExitUnresolvedTarget:
		return ErrorCodeUnresolvedTarget
	default:
		return ErrorCodeTraceFailed
	}
}
