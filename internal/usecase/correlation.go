package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todam/internal/repository"
)

// Placeholder values projected when a stored message is missing optional
// fields; the query never fails over them.
const (
	unknownUserID      = "unknown_user_id"
	unknownUserType    = "unknown_user_type"
	unknownMessageType = "unknown_message_type"
)

// CorrelatedMessage is one message projected out of a closed segment.
type CorrelatedMessage struct {
	UserID        string `json:"user_id"`
	UserType      string `json:"user_type"`
	MessageType   string `json:"message_type"`
	Content       string `json:"content"`
	SendTimestamp int64  `json:"send_timestamp"`
}

// SegmentTranscript is the full correlation result for one closed segment.
type SegmentTranscript struct {
	GroupID        string              `json:"group_id"`
	SegmentID      string              `json:"segment_id"`
	StartTimestamp int64               `json:"start_timestamp"`
	EndTimestamp   int64               `json:"end_timestamp"`
	Messages       []CorrelatedMessage `json:"messages"`
}

// CorrelationService resolves the messages belonging to a closed segment.
type CorrelationService struct {
	segments SegmentStore
	messages MessageStore
}

// NewCorrelationService creates a CorrelationService.
func NewCorrelationService(segments SegmentStore, messages MessageStore) (*CorrelationService, error) {
	if segments == nil {
		return nil, errors.New("usecase: segment store must not be nil")
	}
	if messages == nil {
		return nil, errors.New("usecase: message store must not be nil")
	}
	return &CorrelationService{segments: segments, messages: messages}, nil
}

// SegmentMessages returns the ordered messages of a closed segment. A
// missing segment, or one still open, refuses with a not-found error.
func (s *CorrelationService) SegmentMessages(ctx context.Context, segmentID string) (SegmentTranscript, error) {
	if strings.TrimSpace(segmentID) == "" {
		return SegmentTranscript{}, newError(ErrorBadInput, "missing_segment_id", nil)
	}

	seg, err := s.segments.Get(ctx, segmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return SegmentTranscript{}, newError(ErrorNotFound, "segment_not_found_or_incomplete", err)
		}
		return SegmentTranscript{}, newError(ErrorInternal, "segment_lookup_error", err)
	}
	if !seg.IsEnd || seg.EndTimestamp == 0 {
		return SegmentTranscript{}, newError(ErrorNotFound, "segment_not_found_or_incomplete", nil)
	}

	msgs, err := s.messages.QueryRange(ctx, seg.GroupID, seg.StartTimestamp, seg.EndTimestamp)
	if err != nil {
		return SegmentTranscript{}, newError(ErrorInternal, "message_query_error", err)
	}

	projected := make([]CorrelatedMessage, 0, len(msgs))
	for _, m := range msgs {
		projected = append(projected, CorrelatedMessage{
			UserID:        orPlaceholder(m.UserID, unknownUserID),
			UserType:      orPlaceholder(m.UserType, unknownUserType),
			MessageType:   orPlaceholder(m.MessageType, unknownMessageType),
			Content:       m.Content,
			SendTimestamp: m.SendTimestamp,
		})
	}

	return SegmentTranscript{
		GroupID:        seg.GroupID,
		SegmentID:      segmentID,
		StartTimestamp: seg.StartTimestamp,
		EndTimestamp:   seg.EndTimestamp,
		Messages:       projected,
	}, nil
}

// RenderText concatenates a transcript as "<user_type>: <content>" lines in
// timestamp order for plain-text consumers.
func RenderText(messages []CorrelatedMessage) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.UserType, m.Content))
	}
	return strings.Join(lines, "\n")
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
