package usecase

import (
	"context"
	"errors"
)

// SegmentSummary is the projection returned by the segment listing.
type SegmentSummary struct {
	SegmentID   string `json:"segment_id"`
	SegmentName string `json:"segment_name"`
	GroupID     string `json:"group_id"`
}

// ListingService lists segments not yet resolved by a ticket.
type ListingService struct {
	segments SegmentStore
}

// NewListingService creates a ListingService.
func NewListingService(segments SegmentStore) (*ListingService, error) {
	if segments == nil {
		return nil, errors.New("usecase: segment store must not be nil")
	}
	return &ListingService{segments: segments}, nil
}

// ListUnresolved returns unresolved segments, optionally for one group.
// Missing display fields fall back to placeholders rather than failing.
func (s *ListingService) ListUnresolved(ctx context.Context, groupID string) ([]SegmentSummary, error) {
	segs, err := s.segments.ListUnresolved(ctx, groupID)
	if err != nil {
		return nil, newError(ErrorInternal, "segment_scan_error", err)
	}

	summaries := make([]SegmentSummary, 0, len(segs))
	for _, seg := range segs {
		summaries = append(summaries, SegmentSummary{
			SegmentID:   orPlaceholder(seg.SegmentID, "Unknown"),
			SegmentName: orPlaceholder(seg.SegmentName, "Unnamed"),
			GroupID:     orPlaceholder(seg.GroupID, "No Group"),
		})
	}
	return summaries, nil
}
