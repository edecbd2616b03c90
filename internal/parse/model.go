package parse

// Participant is one entry of a conversation's participant list.
type Participant struct {
	Name    string
	HasName bool
}

// Message keeps only what reply timing needs. A field that is absent, null or
// of the wrong type is reported as missing.
type Message struct {
	SenderName   string
	HasSender    bool
	TimestampMs  int64
	HasTimestamp bool

	// Malformed is set when timestamp_ms is present but not an integer, or the
	// element is not a JSON object. Such a conversation cannot be ordered.
	Malformed bool
}

// Conversation is one decoded message_1.json record.
type Conversation struct {
	Entry string

	// HasParticipants is false when the record has no participants array.
	HasParticipants bool
	Participants    []Participant
	Messages        []Message
}
