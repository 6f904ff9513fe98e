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

package circuit

import (
	"encoding/json"
	"fmt"
)

// RegisterType tags a Register as a qubit line or a classical bit line.
type RegisterType int

const (
	// RegisterQubit references a qubit line.
	RegisterQubit RegisterType = iota

	// RegisterClassical references a classical bit derived from measuring a qubit.
	RegisterClassical
)

// String returns the wire name of the register type.
func (t RegisterType) String() string {
	switch t {
	case RegisterQubit:
		return "Qubit"
	case RegisterClassical:
		return "Classical"
	default:
		return fmt.Sprintf("RegisterType(%d)", int(t))
	}
}

// MarshalJSON encodes the type as "Qubit" or "Classical".
func (t RegisterType) MarshalJSON() ([]byte, error) {
	switch t {
	case RegisterQubit, RegisterClassical:
		return json.Marshal(t.String())
	default:
		return nil, fmt.Errorf("unknown register type %d", int(t))
	}
}

// UnmarshalJSON decodes "Qubit" or "Classical".
func (t *RegisterType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Qubit":
		*t = RegisterQubit
	case "Classical":
		*t = RegisterClassical
	default:
		return fmt.Errorf("unknown register type %q", s)
	}
	return nil
}

// Register is a reference to a qubit line or to a classical bit derived from
// a qubit. Registers are plain values and compare equal by type and ids.
//
// For a classical register, CID is the sequence number of the measurement on
// QID that produced it: the first measurement yields 0, the next 1, and so on.
type Register struct {
	Type RegisterType
	QID  int
	CID  int
}

// NewQubitRegister returns the register for qubit qID.
func NewQubitRegister(qID int) Register {
	return Register{Type: RegisterQubit, QID: qID}
}

// NewClassicalRegister returns the cID-th classical register derived from qubit qID.
func NewClassicalRegister(qID, cID int) Register {
	return Register{Type: RegisterClassical, QID: qID, CID: cID}
}

// IsClassical reports whether r is a classical register.
func (r Register) IsClassical() bool {
	return r.Type == RegisterClassical
}

// String renders q0 for qubits and c0.1 for classical registers.
func (r Register) String() string {
	if r.IsClassical() {
		return fmt.Sprintf("c%d.%d", r.QID, r.CID)
	}
	return fmt.Sprintf("q%d", r.QID)
}

type registerJSON struct {
	Type RegisterType `json:"type"`
	QID  int          `json:"qId"`
	CID  *int         `json:"cId,omitempty"`
}

// MarshalJSON emits cId only for classical registers.
func (r Register) MarshalJSON() ([]byte, error) {
	out := registerJSON{Type: r.Type, QID: r.QID}
	if r.IsClassical() {
		cid := r.CID
		out.CID = &cid
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a register, requiring cId for classical registers.
func (r *Register) UnmarshalJSON(data []byte) error {
	var in registerJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Type {
	case RegisterClassical:
		if in.CID == nil {
			return fmt.Errorf("classical register for qubit %d has no cId", in.QID)
		}
		*r = NewClassicalRegister(in.QID, *in.CID)
	default:
		*r = NewQubitRegister(in.QID)
	}
	return nil
}
