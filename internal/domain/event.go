package domain

// WebhookPayload is the chat-platform webhook body as written to the object
// store. The ingest trigger adds S3ObjectKey before processing so every
// derived record can point back at the originating object.
type WebhookPayload struct {
	Events      []Event `json:"events"`
	S3ObjectKey string  `json:"s3_object_key,omitempty"`
}

// Event is one chat-platform event: a message plus its source and timestamp.
type Event struct {
	Message   MessagePayload `json:"message"`
	Source    Source         `json:"source"`
	Timestamp int64          `json:"timestamp"`
}

// MessagePayload carries the message fields the pipeline cares about. Text is
// absent for stickers and images; the sticker identifiers are absent for
// everything else.
type MessagePayload struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Text      string `json:"text,omitempty"`
	PackageID string `json:"packageId,omitempty"`
	StickerID string `json:"stickerId,omitempty"`
}

// Source identifies where an event came from.
type Source struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

// First returns the first event of the payload, the only one the pipeline
// processes. ok is false for an empty payload.
func (p WebhookPayload) First() (Event, bool) {
	if len(p.Events) == 0 {
		return Event{}, false
	}
	return p.Events[0], true
}
