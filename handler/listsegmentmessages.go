package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"todam/internal/usecase"
)

// CorrelationUseCase resolves the messages of a closed segment.
type CorrelationUseCase interface {
	SegmentMessages(ctx context.Context, segmentID string) (usecase.SegmentTranscript, error)
}

// SegmentMessagesHandler is the entrypoint for reading one segment's
// transcript. output=text switches the response to a condensed plain-text
// rendering.
type SegmentMessagesHandler struct {
	svc CorrelationUseCase
}

// NewSegmentMessagesHandler creates a SegmentMessagesHandler.
func NewSegmentMessagesHandler(svc CorrelationUseCase) (*SegmentMessagesHandler, error) {
	if svc == nil {
		return nil, errors.New("handler: correlation service must not be nil")
	}
	return &SegmentMessagesHandler{svc: svc}, nil
}

func (h *SegmentMessagesHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (Response, error) {
	corrID := correlationID(event.Headers)

	segmentID := event.QueryStringParameters["segment_id"]
	outputFormat := event.QueryStringParameters["output"]

	transcript, err := h.svc.SegmentMessages(ctx, segmentID)
	if err != nil {
		return respondError(corrID, err), nil
	}

	if outputFormat == "text" {
		return textResponse(http.StatusOK, corrID, usecase.RenderText(transcript.Messages)), nil
	}
	return jsonResponse(http.StatusOK, corrID, transcript), nil
}
