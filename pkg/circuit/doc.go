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


// Package circuit defines the intermediate representation produced by the
// execution path tracer: registers, operations and execution paths, together
// with their JSON export format.
//
// Fields holding an absent value are omitted from the JSON output rather than
// written as null. Control and target lists are always present.
package circuit
