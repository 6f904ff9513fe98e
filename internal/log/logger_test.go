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
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "warn" {
		t.Errorf("expected default level 'warn', got %q", cfg.Level)
	}
	if cfg.Format != FormatText {
		t.Errorf("expected default format 'text', got %q", cfg.Format)
	}
	if cfg.Output != os.Stderr {
		t.Errorf("expected default output to be os.Stderr")
	}
	if cfg.AddSource {
		t.Errorf("expected default AddSource to be false")
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name      string
		envVars   map[string]string
		level     string
		format    Format
		addSource bool
	}{
		{
			name:   "defaults when no env vars",
			level:  "warn",
			format: FormatText,
		},
		{
			name:    "LOG_LEVEL is case insensitive",
			envVars: map[string]string{"LOG_LEVEL": "DEBUG"},
			level:   "debug",
			format:  FormatText,
		},
		{
			name:    "CIRCUITVIEW_LOG_LEVEL takes precedence over LOG_LEVEL",
			envVars: map[string]string{"CIRCUITVIEW_LOG_LEVEL": "trace", "LOG_LEVEL": "error"},
			level:   "trace",
			format:  FormatText,
		},
		{
			name:      "CIRCUITVIEW_DEBUG wins over everything",
			envVars:   map[string]string{"CIRCUITVIEW_DEBUG": "1", "CIRCUITVIEW_LOG_LEVEL": "error"},
			level:     "debug",
			format:    FormatText,
			addSource: true,
		},
		{
			name:      "format and source",
			envVars:   map[string]string{"LOG_FORMAT": "JSON", "LOG_SOURCE": "1"},
			level:     "warn",
			format:    FormatJSON,
			addSource: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"CIRCUITVIEW_DEBUG", "CIRCUITVIEW_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE"} {
				t.Setenv(k, "")
				os.Unsetenv(k)
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := FromEnv()

			if cfg.Level != tt.level {
				t.Errorf("expected level %q, got %q", tt.level, cfg.Level)
			}
			if cfg.Format != tt.format {
				t.Errorf("expected format %q, got %q", tt.format, cfg.Format)
			}
			if cfg.AddSource != tt.addSource {
				t.Errorf("expected AddSource %v, got %v", tt.addSource, cfg.AddSource)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})
	logger.Info("operation recorded", GateKey, "H")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v", err)
	}
	if entry["msg"] != "operation recorded" {
		t.Errorf("expected msg 'operation recorded', got: %v", entry["msg"])
	}
	if entry[GateKey] != "H" {
		t.Errorf("expected gate 'H', got: %v", entry[GateKey])
	}
	if entry["level"] != "INFO" {
		t.Errorf("expected level 'INFO', got: %v", entry["level"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatText, Output: &buf})
	logger.Info("trace started", ProgramKey, "Bell")

	if !strings.Contains(buf.String(), "program=Bell") {
		t.Errorf("expected output to contain 'program=Bell', got: %s", buf.String())
	}
}

func TestNew_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "trace", Format: FormatJSON, Output: &buf})
	Trace(logger, "call elided", slog.Int(DepthKey, 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON output: %v", err)
	}
	if entry["level"] != "TRACE" {
		t.Errorf("expected level 'TRACE', got: %v", entry["level"])
	}
	if entry[DepthKey] != float64(3) {
		t.Errorf("expected depth 3, got: %v", entry[DepthKey])
	}
}

func TestTrace_DisabledBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})
	Trace(logger, "call elided")

	if buf.Len() != 0 {
		t.Errorf("expected no output at debug level, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if level := ParseLevel(tt.input); level != tt.expected {
				t.Errorf("expected level %v, got %v", tt.expected, level)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{"trace", "DEBUG", "info", "warning", "error"} {
		if !ValidLevel(level) {
			t.Errorf("expected %q to be valid", level)
		}
	}
	for _, level := range []string{"", "verbose", "fatal"} {
		if ValidLevel(level) {
			t.Errorf("expected %q to be invalid", level)
		}
	}
}

func TestLogLevel_Filtering(t *testing.T) {
	tests := []struct {
		name          string
		configLevel   string
		logFunc       func(*slog.Logger)
		shouldContain bool
	}{
		{"debug at debug", "debug", func(l *slog.Logger) { l.Debug("m") }, true},
		{"debug at info", "info", func(l *slog.Logger) { l.Debug("m") }, false},
		{"info at warn", "warn", func(l *slog.Logger) { l.Info("m") }, false},
		{"error at error", "error", func(l *slog.Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(New(&Config{Level: tt.configLevel, Format: FormatJSON, Output: &buf}))

			if contains := buf.Len() > 0; contains != tt.shouldContain {
				t.Errorf("expected log output=%v, got output=%v (output: %s)", tt.shouldContain, contains, buf.String())
			}
		})
	}
}

func TestWithTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(New(&Config{Level: "info", Format: FormatJSON, Output: &buf}), "tracer")
	WithSource(WithTraceContext(logger, "abc-123", "Teleport"), "calls.yaml").Info("test message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON output: %v", err)
	}
	want := map[string]string{
		TraceIDKey:    "abc-123",
		ProgramKey:    "Teleport",
		SourceFileKey: "calls.yaml",
		"component":   "tracer",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("expected %s=%q, got: %v", k, v, entry[k])
		}
	}
}

func TestAttrHelpers(t *testing.T) {
	if attr := Error(errors.New("boom")); attr.Key != "error" || attr.Value.String() != "boom" {
		t.Errorf("unexpected error attr: %v", attr)
	}
	if attr := Duration("trace", 12); attr.Key != "trace_ms" || attr.Value.Int64() != 12 {
		t.Errorf("unexpected duration attr: %v", attr)
	}
}

func TestNilConfig(t *testing.T) {
	if New(nil) == nil {
		t.Fatal("expected logger for nil config")
	}
}

func BenchmarkLogger_JSON(b *testing.B) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("operation recorded", GateKey, "H", DepthKey, 1)
	}
}
