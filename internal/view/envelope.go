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

// Package view packages an exported execution path for a display surface.
//
// A Session numbers visualizer containers; each traced run becomes a Content
// envelope carrying the exported JSON and its container id. The envelope is
// sent as a render message and the container itself is a placeholder element
// that the visualizer fills in.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/tombee/circuitview/pkg/circuit"
)

// ContainerPrefix prefixes every container id.
const ContainerPrefix = "execution-path-container-"

// MessageTypeRender is the message type of a render request.
const MessageTypeRender = "render_execution_path"

// Session issues container ids. The zero value is ready to use and the
// first id ends in 0. Sessions are safe for concurrent use.
type Session struct {
	count atomic.Int64
}

// NewSession returns a session whose first id ends in 0.
func NewSession() *Session {
	return &Session{}
}

// NextID returns a fresh container id.
func (s *Session) NextID() string {
	n := s.count.Add(1) - 1
	return fmt.Sprintf("%s%d", ContainerPrefix, n)
}

// Content is the payload of a render message.
type Content struct {
	// JSON is the compact execution path export.
	JSON string `json:"json"`

	// ID is the container the visualizer renders into.
	ID string `json:"id"`
}

// NewContent exports path and pairs it with the container id.
func NewContent(path circuit.ExecutionPath, id string) (Content, error) {
	data, err := path.ToJSON(false)
	if err != nil {
		return Content{}, fmt.Errorf("failed to export execution path: %w", err)
	}
	return Content{JSON: string(data), ID: id}, nil
}

// Header identifies the message type.
type Header struct {
	MessageType string `json:"message_type"`
}

// Message asks a display surface to render an execution path.
type Message struct {
	Header  Header  `json:"header"`
	Content Content `json:"content"`
}

// NewMessage wraps content in a render message.
func NewMessage(content Content) Message {
	return Message{
		Header:  Header{MessageType: MessageTypeRender},
		Content: content,
	}
}

// Write encodes m as one line of JSON.
func (m Message) Write(w io.Writer) error {
	return json.NewEncoder(w).Encode(m)
}

// Displayable is the result shown in place of a rendered path.
type Displayable struct {
	ID string
}

// EncodeHTML returns the placeholder element for d.
func EncodeHTML(d Displayable) string {
	return fmt.Sprintf("<div id='%s' />", d.ID)
}
