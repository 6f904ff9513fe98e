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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/circuitview/internal/log"
	"github.com/tombee/circuitview/pkg/callable"
	cverrors "github.com/tombee/circuitview/pkg/errors"
)

// Output formats accepted by output.format.
const (
	FormatJSON    = "json"
	FormatMessage = "message"
	FormatHTML    = "html"
	FormatText    = "text"
)

// Telemetry exporters accepted by telemetry.exporter.
const (
	ExporterNone     = "none"
	ExporterConsole  = "console"
	ExporterOTLP     = "otlp"
	ExporterOTLPHTTP = "otlp-http"
)

// Config represents the complete circuitview configuration.
type Config struct {
	// RenderDepth is the call depth drawn as circuit operations.
	// Environment: CIRCUITVIEW_RENDER_DEPTH
	// Default: 1
	RenderDepth int `yaml:"render_depth"`

	// Kinds overrides the operation names given special treatment. Each list
	// given in the file replaces the built-in list for that kind.
	Kinds callable.KindSet `yaml:"kinds"`

	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// OutputConfig controls how an exported path is written.
type OutputConfig struct {
	// Format is one of json, message, html, text.
	// Environment: CIRCUITVIEW_FORMAT
	Format string `yaml:"format"`

	// Pretty selects indented JSON. Unset means pretty on a terminal.
	// Environment: CIRCUITVIEW_PRETTY
	Pretty *bool `yaml:"pretty,omitempty"`
}

// LogConfig configures CLI logging.
type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// TelemetryConfig configures the OpenTelemetry span and metric pipeline.
type TelemetryConfig struct {
	// Exporter is one of none, console, otlp, otlp-http.
	// Environment: CIRCUITVIEW_TELEMETRY_EXPORTER
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP receiver address.
	// Environment: CIRCUITVIEW_TELEMETRY_ENDPOINT
	Endpoint string `yaml:"endpoint,omitempty"`

	// Headers are sent with every OTLP export request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Insecure disables TLS for OTLP exporters.
	// Environment: CIRCUITVIEW_TELEMETRY_INSECURE
	Insecure bool `yaml:"insecure"`

	// TimeoutSeconds bounds each export call.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// ServiceName identifies this process in exported spans.
	ServiceName string `yaml:"service_name,omitempty"`
}

// Default returns the configuration used when no file or environment is set.
func Default() *Config {
	return &Config{
		RenderDepth: 1,
		Kinds:       callable.DefaultKindSet(),
		Output: OutputConfig{
			Format: FormatJSON,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Exporter:       ExporterNone,
			TimeoutSeconds: 10,
			ServiceName:    "circuitview",
		},
	}
}

// Load loads configuration from a YAML file and environment variables.
// Environment variables take precedence over the file. If configPath is
// empty, only environment variables are used.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &cverrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads the file at ConfigPath if it exists, and the environment.
func LoadDefault() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Load("")
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Load("")
	}
	return Load(path)
}

// applyDefaults fills in zero values left by a minimal config file.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Output.Format == "" {
		c.Output.Format = defaults.Output.Format
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = defaults.Telemetry.Exporter
	}
	if c.Telemetry.TimeoutSeconds == 0 {
		c.Telemetry.TimeoutSeconds = defaults.Telemetry.TimeoutSeconds
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaults.Telemetry.ServiceName
	}
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv applies environment overrides. Unlike the log variables,
// malformed numeric and boolean values are reported rather than ignored.
func (c *Config) loadFromEnv() error {
	if val := os.Getenv("CIRCUITVIEW_RENDER_DEPTH"); val != "" {
		depth, err := strconv.Atoi(val)
		if err != nil {
			return &cverrors.ConfigError{Key: "CIRCUITVIEW_RENDER_DEPTH", Reason: "not an integer", Cause: err}
		}
		c.RenderDepth = depth
	}
	if val := os.Getenv("CIRCUITVIEW_FORMAT"); val != "" {
		c.Output.Format = strings.ToLower(val)
	}
	if val := os.Getenv("CIRCUITVIEW_PRETTY"); val != "" {
		pretty, err := strconv.ParseBool(val)
		if err != nil {
			return &cverrors.ConfigError{Key: "CIRCUITVIEW_PRETTY", Reason: "not a boolean", Cause: err}
		}
		c.Output.Pretty = &pretty
	}

	logEnv := log.FromEnv()
	if os.Getenv("CIRCUITVIEW_DEBUG") != "" || os.Getenv("CIRCUITVIEW_LOG_LEVEL") != "" || os.Getenv("LOG_LEVEL") != "" {
		c.Log.Level = logEnv.Level
	}
	if os.Getenv("LOG_FORMAT") != "" {
		c.Log.Format = string(logEnv.Format)
	}
	if logEnv.AddSource {
		c.Log.AddSource = true
	}

	if val := os.Getenv("CIRCUITVIEW_TELEMETRY_EXPORTER"); val != "" {
		c.Telemetry.Exporter = strings.ToLower(val)
	}
	if val := os.Getenv("CIRCUITVIEW_TELEMETRY_ENDPOINT"); val != "" {
		c.Telemetry.Endpoint = val
	}
	if val := os.Getenv("CIRCUITVIEW_TELEMETRY_INSECURE"); val != "" {
		c.Telemetry.Insecure = val == "1" || strings.ToLower(val) == "true"
	}

	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.RenderDepth < 0 {
		errs = append(errs, fmt.Sprintf("render_depth must not be negative, got %d", c.RenderDepth))
	}

	switch c.Output.Format {
	case FormatJSON, FormatMessage, FormatHTML, FormatText:
	default:
		errs = append(errs, fmt.Sprintf("output.format must be one of [json, message, html, text], got %q", c.Output.Format))
	}

	if !log.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, error], got %q", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	switch c.Telemetry.Exporter {
	case ExporterNone, ExporterConsole:
	case ExporterOTLP, ExporterOTLPHTTP:
		if c.Telemetry.Endpoint == "" {
			errs = append(errs, fmt.Sprintf("telemetry.endpoint is required for exporter %q", c.Telemetry.Exporter))
		}
	default:
		errs = append(errs, fmt.Sprintf("telemetry.exporter must be one of [none, console, otlp, otlp-http], got %q", c.Telemetry.Exporter))
	}
	if c.Telemetry.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Sprintf("telemetry.timeout_seconds must not be negative, got %d", c.Telemetry.TimeoutSeconds))
	}

	if _, err := callable.NewClassifier(c.Kinds); err != nil {
		errs = append(errs, "kinds: "+err.Error())
	}

	if len(errs) > 0 {
		return &cverrors.ConfigError{
			Key:    "validation",
			Reason: strings.Join(errs, "; "),
		}
	}
	return nil
}

// Classifier returns the call classifier for the configured kinds.
func (c *Config) Classifier() (*callable.Classifier, error) {
	classifier, err := callable.NewClassifier(c.Kinds)
	if err != nil {
		return nil, &cverrors.ConfigError{Key: "kinds", Reason: err.Error(), Cause: err}
	}
	return classifier, nil
}

// LoggerConfig converts the log section for internal/log.
func (c *Config) LoggerConfig() *log.Config {
	out := log.DefaultConfig()
	out.Level = c.Log.Level
	out.Format = log.Format(c.Log.Format)
	out.AddSource = c.Log.AddSource
	return out
}
