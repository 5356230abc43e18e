// ABOUTME: Frame decoding and payload validation for gateway websocket events
// ABOUTME: Every failure wraps ErrMalformedFrame so callers can drop and log uniformly

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedFrame marks frames that cannot be parsed or lack the payload
// their type requires.
var ErrMalformedFrame = errors.New("malformed frame")

// Decode parses one text frame into an envelope. The payload is not checked;
// see Validate.
func Decode(frame []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	return &env, nil
}

// Known reports whether t is one of the event types the client routes.
func Known(t string) bool {
	switch t {
	case TypeSystem, TypeStatus, TypeError, TypeUserMessage, TypeAssistantMessage,
		TypeAssistantChunk, TypeModelList, TypeChatList, TypeRemoveMessage:
		return true
	}
	return false
}

// Validate checks that the payload required by the envelope's type is present.
// Unknown types validate trivially.
func (e *Envelope) Validate() error {
	missing := func(field string) error {
		return fmt.Errorf("%w: %s event without %s", ErrMalformedFrame, e.Type, field)
	}

	switch e.Type {
	case TypeSystem:
		if e.ContentPayload == nil {
			return missing("content_payload")
		}
	case TypeStatus:
		if e.StatusPayload == nil {
			return missing("status_payload")
		}
	case TypeError:
		if e.ErrorPayload == nil {
			return missing("error_payload")
		}
	case TypeUserMessage, TypeAssistantMessage:
		if e.MessagePayload == nil {
			return missing("message_payload")
		}
	case TypeAssistantChunk:
		if e.ChunkPayload == nil {
			return missing("chunk_payload")
		}
		if e.ChunkPayload.MessageID == nil {
			return missing("chunk_payload.message_id")
		}
	case TypeModelList:
		if e.ModelListPayload == nil {
			return missing("model_list_payload")
		}
	case TypeChatList:
		if e.ChatListPayload == nil {
			return missing("chat_list_payload")
		}
	case TypeRemoveMessage:
		if e.RemovePayload == nil || e.RemovePayload.MessageID == 0 {
			return missing("remove_payload.message_id")
		}
	}
	return nil
}
