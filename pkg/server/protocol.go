package server

import (
	"encoding/json"

	"github.com/vango-dev/requery/internal/errors"
)

// Frame types.
const (
	FramePatch = "patch"
	FrameError = "error"
	FramePong  = "pong"

	FrameEvent = "event"
	FramePing  = "ping"
)

// ClientMessage is a frame sent by the browser.
type ClientMessage struct {
	Type string `json:"type"`

	// Target is the data-rq-id of the element the event fired on.
	Target uint64 `json:"target,omitempty"`

	// Event is the DOM event type, e.g. "click" or "input".
	Event string `json:"event,omitempty"`

	// Value is the form value of the target, for input and change events.
	Value *string `json:"value,omitempty"`

	// Key is the key name of keyboard events.
	Key string `json:"key,omitempty"`
}

// ServerMessage is a frame sent to the browser.
type ServerMessage struct {
	Type    string  `json:"type"`
	Seq     uint64  `json:"seq,omitempty"`
	Patches []Patch `json:"patches,omitempty"`
	Code    string  `json:"code,omitempty"`
	Message string  `json:"message,omitempty"`
}

// DecodeClientMessage parses and validates a client frame.
func DecodeClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.New("E160").Wrap(err)
	}
	switch msg.Type {
	case FramePing:
	case FrameEvent:
		if msg.Target == 0 || msg.Event == "" {
			return nil, errors.New("E160").WithDetail("event frames need a target and an event type")
		}
	default:
		return nil, errors.New("E160").WithDetailf("unknown frame type %q", msg.Type)
	}
	return &msg, nil
}

func errorMessage(err error) ServerMessage {
	msg := ServerMessage{Type: FrameError, Message: err.Error()}
	if re, ok := err.(*errors.RqError); ok {
		msg.Code = re.Code
	}
	return msg
}
