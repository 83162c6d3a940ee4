package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"todam/internal/usecase"
)

// ListingUseCase lists segments without a ticket yet.
type ListingUseCase interface {
	ListUnresolved(ctx context.Context, groupID string) ([]usecase.SegmentSummary, error)
}

// SegmentsHandler is the entrypoint for browsing unresolved segments,
// optionally narrowed to one group.
type SegmentsHandler struct {
	svc ListingUseCase
}

// NewSegmentsHandler creates a SegmentsHandler.
func NewSegmentsHandler(svc ListingUseCase) (*SegmentsHandler, error) {
	if svc == nil {
		return nil, errors.New("handler: listing service must not be nil")
	}
	return &SegmentsHandler{svc: svc}, nil
}

type segmentsResponse struct {
	Segments []usecase.SegmentSummary `json:"segments"`
}

func (h *SegmentsHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (Response, error) {
	corrID := correlationID(event.Headers)

	summaries, err := h.svc.ListUnresolved(ctx, event.QueryStringParameters["group_id"])
	if err != nil {
		return respondError(corrID, err), nil
	}
	if summaries == nil {
		summaries = []usecase.SegmentSummary{}
	}
	return jsonResponse(http.StatusOK, corrID, segmentsResponse{Segments: summaries}), nil
}
