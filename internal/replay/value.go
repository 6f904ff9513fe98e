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
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tombee/circuitview/pkg/callable"
	cverrors "github.com/tombee/circuitview/pkg/errors"
)

// Value keys recognized in single-key mappings.
const (
	keyQubit  = "qubit"
	keyQubits = "qubits"
	keyHole   = "hole"
	keyScalar = "scalar"
)

func invalid(node *yaml.Node, format string, args ...any) error {
	return &cverrors.ValidationError{
		Field:   fmt.Sprintf("line %d", node.Line),
		Message: fmt.Sprintf(format, args...),
		Hint:    "Values are scalars, sequences, or one of {qubit: n}, {qubits: [...]}, {hole: true}, {scalar: x}",
	}
}

// decodeValue converts a YAML node into an argument value. An absent node
// decodes to Unit.
func decodeValue(node *yaml.Node) (callable.Value, error) {
	switch node.Kind {
	case 0:
		return callable.Unit, nil

	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return callable.Unit, nil
		}
		return decodeValue(node.Content[0])

	case yaml.AliasNode:
		return decodeValue(node.Alias)

	case yaml.ScalarNode:
		return decodeScalar(node)

	case yaml.SequenceNode:
		out := make(callable.Tuple, 0, len(node.Content))
		for _, elem := range node.Content {
			v, err := decodeValue(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case yaml.MappingNode:
		return decodeTagged(node)

	default:
		return nil, invalid(node, "unsupported YAML node")
	}
}

func decodeScalar(node *yaml.Node) (callable.Value, error) {
	if node.ShortTag() == "!!null" {
		return nil, invalid(node, "null is not a value")
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, invalid(node, "%v", err)
	}
	return callable.Scalar{V: v}, nil
}

// decodeTagged decodes the single-key mapping forms.
func decodeTagged(node *yaml.Node) (callable.Value, error) {
	if len(node.Content) != 2 {
		return nil, invalid(node, "value mapping must have exactly one key")
	}
	key, val := node.Content[0].Value, node.Content[1]

	switch key {
	case keyQubit:
		var id int
		if err := val.Decode(&id); err != nil {
			return nil, invalid(val, "qubit id must be an integer")
		}
		if id < 0 {
			return nil, invalid(val, "qubit id must not be negative, got %d", id)
		}
		return callable.Qubit{ID: id}, nil

	case keyQubits:
		if val.Kind != yaml.SequenceNode {
			return nil, invalid(val, "qubits must be a sequence")
		}
		out := make(callable.QubitArray, 0, len(val.Content))
		for _, elem := range val.Content {
			v, err := decodeArrayElement(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case keyHole:
		var hole bool
		if err := val.Decode(&hole); err != nil || !hole {
			return nil, invalid(val, "hole must be true")
		}
		return callable.Hole{}, nil

	case keyScalar:
		if val.Kind != yaml.ScalarNode {
			return nil, invalid(val, "scalar must wrap a plain value")
		}
		return decodeScalar(val)

	default:
		return nil, invalid(node, "unknown value key %q", key)
	}
}

// decodeArrayElement reads plain integers inside a qubit array as qubit ids.
func decodeArrayElement(node *yaml.Node) (callable.Value, error) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!int" {
		var id int
		if err := node.Decode(&id); err != nil {
			return nil, invalid(node, "%v", err)
		}
		if id < 0 {
			return nil, invalid(node, "qubit id must not be negative, got %d", id)
		}
		return callable.Qubit{ID: id}, nil
	}
	return decodeValue(node)
}
