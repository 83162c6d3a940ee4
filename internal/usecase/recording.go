package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"todam/internal/domain"
	"todam/internal/repository"
	"todam/internal/timeutil"
)

// SegmentStore is the segment persistence consumed by the services.
type SegmentStore interface {
	CreateOpen(ctx context.Context, seg domain.Segment) error
	GetOpen(ctx context.Context, groupID string) (domain.Segment, error)
	Get(ctx context.Context, segmentID string) (domain.Segment, error)
	Close(ctx context.Context, groupID, segmentID string, endTimestamp int64, segmentName string) error
	ListUnresolved(ctx context.Context, groupID string) ([]domain.Segment, error)
	MarkResolved(ctx context.Context, segmentID string) error
}

// Authorizer decides whether a user may drive the recording state machine.
type Authorizer interface {
	VerifiedUser(ctx context.Context, userID string) (domain.RegisteredUser, bool, error)
}

// RecordingService is the per-group segment lifecycle state machine. All
// state lives in the segment store; the service itself is stateless across
// invocations.
type RecordingService struct {
	segments SegmentStore
	auth     Authorizer
	mailer   Mailer
	newID    func() string
}

// NewRecordingService creates a RecordingService.
func NewRecordingService(segments SegmentStore, auth Authorizer, mailer Mailer) (*RecordingService, error) {
	if segments == nil {
		return nil, errors.New("usecase: segment store must not be nil")
	}
	if auth == nil {
		return nil, errors.New("usecase: authorizer must not be nil")
	}
	if mailer == nil {
		return nil, errors.New("usecase: mailer must not be nil")
	}
	return &RecordingService{
		segments: segments,
		auth:     auth,
		mailer:   mailer,
		newID:    newRecordID,
	}, nil
}

func newRecordID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RecordingInput carries the event fields driving a start or end command.
type RecordingInput struct {
	GroupID     string
	UserID      string
	MessageID   string
	S3ObjectKey string
	Timestamp   int64
}

// RecordingResult reports what a start or end command did.
type RecordingResult struct {
	SegmentID        string
	StartTimestamp   int64
	EndTimestamp     int64
	SegmentName      string
	AlreadyRecording bool // start found an open segment and created nothing
	Closed           bool // end closed the open segment
	NoOpenSegment    bool // end found nothing to close
}

// Start opens a recording segment for the group. When the group is already
// recording the existing segment is reported as success and no second row is
// created, including when a concurrent invocation wins the create race.
func (s *RecordingService) Start(ctx context.Context, in RecordingInput) (RecordingResult, error) {
	if in.GroupID == "" || in.UserID == "" {
		return RecordingResult{}, newError(ErrorBadInput, "missing_group_or_user", nil)
	}

	user, verified, err := s.auth.VerifiedUser(ctx, in.UserID)
	if err != nil {
		return RecordingResult{}, newError(ErrorInternal, "user_lookup_error", err)
	}
	if !verified {
		return RecordingResult{}, newError(ErrorForbidden, "user_not_verified", nil)
	}

	open, err := s.segments.GetOpen(ctx, in.GroupID)
	switch {
	case err == nil:
		return s.reportAlreadyRecording(ctx, in.GroupID, user.Email, open), nil
	case errors.Is(err, repository.ErrNotFound):
		// no open segment, create one
	default:
		return RecordingResult{}, newError(ErrorInternal, "segment_lookup_error", err)
	}

	id := s.newID()
	seg := domain.Segment{
		ID:             id,
		SegmentID:      id,
		S3ObjectKey:    in.S3ObjectKey,
		GroupID:        in.GroupID,
		UserID:         in.UserID,
		MessageID:      in.MessageID,
		StartTimestamp: in.Timestamp,
		IsEnd:          false,
	}
	if err := s.segments.CreateOpen(ctx, seg); err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			// Lost the create race; report the winner's segment.
			open, readErr := s.segments.GetOpen(ctx, in.GroupID)
			if readErr != nil {
				return RecordingResult{}, newError(ErrorInternal, "segment_lookup_error", readErr)
			}
			return s.reportAlreadyRecording(ctx, in.GroupID, user.Email, open), nil
		}
		return RecordingResult{}, newError(ErrorInternal, "segment_write_error", err)
	}
	slog.Info("recording started", "group_id", in.GroupID, "segment_id", id)

	s.notify(ctx, user.Email, "Recording Started",
		fmt.Sprintf("Hi, the recording has started for your message in group %s.", in.GroupID))

	return RecordingResult{SegmentID: id, StartTimestamp: in.Timestamp}, nil
}

func (s *RecordingService) reportAlreadyRecording(ctx context.Context, groupID, email string, open domain.Segment) RecordingResult {
	slog.Info("group already recording", "group_id", groupID, "segment_id", open.ID)
	s.notify(ctx, email, "Recording Already Started",
		fmt.Sprintf("Hi, your group %s is already recording.\nSegment ID: %s\nStart Time: %s",
			groupID, open.ID, timeutil.FormatUTCPlus8(open.StartTimestamp)))
	return RecordingResult{
		SegmentID:        open.ID,
		StartTimestamp:   open.StartTimestamp,
		AlreadyRecording: true,
	}
}

// End closes the group's open segment. Ending with no open segment is a
// silent no-op.
func (s *RecordingService) End(ctx context.Context, in RecordingInput) (RecordingResult, error) {
	if in.GroupID == "" || in.UserID == "" {
		return RecordingResult{}, newError(ErrorBadInput, "missing_group_or_user", nil)
	}

	user, verified, err := s.auth.VerifiedUser(ctx, in.UserID)
	if err != nil {
		return RecordingResult{}, newError(ErrorInternal, "user_lookup_error", err)
	}
	if !verified {
		return RecordingResult{}, newError(ErrorForbidden, "user_not_verified", nil)
	}

	open, err := s.segments.GetOpen(ctx, in.GroupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Info("end recording with no open segment, ignoring", "group_id", in.GroupID)
			return RecordingResult{NoOpenSegment: true}, nil
		}
		return RecordingResult{}, newError(ErrorInternal, "segment_lookup_error", err)
	}

	startDisplay := timeutil.FormatUTCPlus8(open.StartTimestamp)
	endDisplay := timeutil.FormatUTCPlus8(in.Timestamp)
	name := startDisplay + "_" + endDisplay

	if err := s.segments.Close(ctx, in.GroupID, open.ID, in.Timestamp, name); err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			// A concurrent invocation closed it first.
			slog.Info("segment already closed by a concurrent end", "group_id", in.GroupID, "segment_id", open.ID)
			return RecordingResult{NoOpenSegment: true}, nil
		}
		return RecordingResult{}, newError(ErrorInternal, "segment_write_error", err)
	}
	slog.Info("recording ended", "group_id", in.GroupID, "segment_id", open.ID, "segment_name", name)

	s.notify(ctx, user.Email, "Recording Ended",
		fmt.Sprintf("Hi, the recording has ended for your message in group %s.\nSegment ID: %s\nStart Time: %s\nEnd Time: %s",
			in.GroupID, open.ID, startDisplay, endDisplay))

	return RecordingResult{
		SegmentID:      open.ID,
		StartTimestamp: open.StartTimestamp,
		EndTimestamp:   in.Timestamp,
		SegmentName:    name,
		Closed:         true,
	}, nil
}

// notify sends a best-effort notification email. The recording state change
// is the source of truth; a delivery failure is logged, never propagated.
func (s *RecordingService) notify(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		slog.Error("notification email failed", "to", to, "subject", subject, "err", err)
	}
}
