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

/*
Package pathtracer turns the call notifications of a program executor into a
circuit.ExecutionPath.

An executor reports every operation invocation as a start/end pair. The
Tracer counts nesting depth, ignoring transparent containers such as
ApplyToEach, and converts each call found at exactly the render depth into one
circuit operation:

	tr := pathtracer.New(pathtracer.DefaultDepth)
	if err := executor.Run(ctx, program, tr); err != nil {
		return err
	}
	data, err := tr.GetExecutionPath().ToJSON(true)

Calls deeper than the render depth are absorbed into their drawn ancestor.
Partial applications and Controlled/Adjoint variants are unwrapped into the
gate they apply to, CNOT and CCNOT become controlled X gates, measurements
allocate a new classical register per measured qubit, and resets are not
drawn.

The first malformed call aborts the trace: every later notification returns
the same error, and GetExecutionPath still reports what was recorded before it.
*/
package pathtracer
