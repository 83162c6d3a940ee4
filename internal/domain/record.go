package domain

// Message is one persisted chat message. Written once per inbound event,
// never updated or deleted.
type Message struct {
	ID            string `dynamodbav:"id" json:"id"`
	S3ObjectKey   string `dynamodbav:"s3_object_key" json:"s3_object_key"`
	MessageID     string `dynamodbav:"message_id" json:"message_id"`
	MessageType   string `dynamodbav:"message_type" json:"message_type"`
	Content       string `dynamodbav:"content" json:"content"`
	GroupID       string `dynamodbav:"group_id" json:"group_id"`
	UserID        string `dynamodbav:"user_id" json:"user_id"`
	UserType      string `dynamodbav:"user_type" json:"user_type"`
	SendTimestamp int64  `dynamodbav:"send_timestamp" json:"send_timestamp"`
}

// Segment is a time-bounded span of a group conversation. Opened by a start
// command, mutated exactly once at close, never reopened.
type Segment struct {
	ID             string `dynamodbav:"id" json:"id"`
	SegmentID      string `dynamodbav:"segment_id" json:"segment_id"`
	S3ObjectKey    string `dynamodbav:"s3_object_key" json:"s3_object_key"`
	GroupID        string `dynamodbav:"group_id" json:"group_id"`
	UserID         string `dynamodbav:"user_id" json:"user_id"`
	MessageID      string `dynamodbav:"message_id" json:"message_id"`
	StartTimestamp int64  `dynamodbav:"start_timestamp" json:"start_timestamp"`
	EndTimestamp   int64  `dynamodbav:"end_timestamp,omitempty" json:"end_timestamp,omitempty"`
	IsEnd          bool   `dynamodbav:"is_end" json:"is_end"`
	SegmentName    string `dynamodbav:"segment_name,omitempty" json:"segment_name,omitempty"`
	IsResolved     bool   `dynamodbav:"is_resolved,omitempty" json:"is_resolved,omitempty"`
}

// RegisteredUser is the registration record for one chat user. Overwritten on
// re-application while unverified; frozen once verified.
type RegisteredUser struct {
	UserID           string `dynamodbav:"user_id" json:"user_id"`
	Email            string `dynamodbav:"email" json:"email"`
	Name             string `dynamodbav:"name" json:"name"`
	ApplyTimestamp   int64  `dynamodbav:"apply_timestamp" json:"apply_timestamp"`
	VerificationCode string `dynamodbav:"verification_code" json:"verification_code"`
	IsVerified       bool   `dynamodbav:"is_verified" json:"is_verified"`
}

// User types stamped onto messages at write time. The stored value is a
// snapshot, informational only; authorization always re-reads the
// registration record.
const (
	UserTypeTAM    = "TAM"
	UserTypeClient = "Client"
)
