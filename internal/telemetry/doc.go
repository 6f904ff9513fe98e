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

// Package telemetry exports traced runs through OpenTelemetry.
//
// A SpanListener opens one span per observed call, nested the way the calls
// nest, so a run can be inspected in any OTLP backend next to the circuit
// drawn from it. A MetricsCollector counts calls by kind and records one
// data point per traced run; the Provider exposes those metrics through a
// private Prometheus registry that the CLI can dump in text format.
package telemetry
