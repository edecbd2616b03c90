package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ParseConversation decodes a message_1.json record. A record is accepted when
// it is a JSON object with a messages array; participants may be missing, in
// which case HasParticipants is false and the caller decides what to do.
func ParseConversation(entry string, data []byte) (*Conversation, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return nil, &EntryError{Entry: entry, Op: "parse conversation", Err: err}
	}

	rawMsgs, ok := obj["messages"]
	if !ok || isNull(rawMsgs) {
		return nil, &EntryError{Entry: entry, Op: "parse conversation", Err: fmt.Errorf("%w: messages", ErrMissingField)}
	}
	var msgs []json.RawMessage
	if err := json.Unmarshal(rawMsgs, &msgs); err != nil {
		return nil, &EntryError{Entry: entry, Op: "parse conversation", Err: fmt.Errorf("%w: messages is not an array", ErrMissingField)}
	}

	conv := &Conversation{
		Entry:    entry,
		Messages: make([]Message, 0, len(msgs)),
	}
	for _, raw := range msgs {
		conv.Messages = append(conv.Messages, decodeMessage(raw))
	}

	if rawParts, ok := obj["participants"]; ok && !isNull(rawParts) {
		var parts []json.RawMessage
		if err := json.Unmarshal(rawParts, &parts); err == nil {
			conv.HasParticipants = true
			conv.Participants = make([]Participant, 0, len(parts))
			for _, raw := range parts {
				conv.Participants = append(conv.Participants, decodeParticipant(raw))
			}
		}
	}

	return conv, nil
}

func decodeMessage(raw json.RawMessage) Message {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return Message{Malformed: true}
	}

	var m Message
	m.SenderName, m.HasSender = stringField(obj, "sender_name")

	if ts, ok := obj["timestamp_ms"]; ok {
		n, err := strconv.ParseInt(string(bytes.TrimSpace(ts)), 10, 64)
		if err != nil {
			m.Malformed = true
		} else {
			m.TimestampMs = n
			m.HasTimestamp = true
		}
	}
	return m
}

func decodeParticipant(raw json.RawMessage) Participant {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Participant{}
	}
	name, ok := stringField(obj, "name")
	return Participant{Name: name, HasName: ok}
}

// decodeObject unmarshals data as a JSON object, classifying failures as
// malformed JSON or a shape mismatch.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: expected an object, got %s", ErrMissingField, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: expected an object, got null", ErrMissingField)
	}
	return obj, nil
}

// stringField reports a key's value when it is a JSON string.
func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
