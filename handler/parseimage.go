package handler

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"todam/internal/usecase"
)

// ParseImageUseCase consumes at most one queued image job.
type ParseImageUseCase interface {
	ProcessNext(ctx context.Context, objectKey string) (usecase.ParseOutcome, error)
}

// ParseImageHandler is the queue-consumer entrypoint, triggered by the same
// bucket notification that queued the job.
type ParseImageHandler struct {
	svc ParseImageUseCase
}

// NewParseImageHandler creates a ParseImageHandler.
func NewParseImageHandler(svc ParseImageUseCase) (*ParseImageHandler, error) {
	if svc == nil {
		return nil, errors.New("handler: parse image service must not be nil")
	}
	return &ParseImageHandler{svc: svc}, nil
}

func (h *ParseImageHandler) Handle(ctx context.Context, event events.S3Event) (Response, error) {
	if len(event.Records) == 0 {
		return jsonResponse(http.StatusBadRequest, "", errorResponse{Error: string(usecase.ErrorBadInput), Reason: "no_records"}), nil
	}
	key := event.Records[0].S3.Object.Key

	if !imageExtensions[strings.ToLower(path.Ext(key))] {
		return jsonResponse(http.StatusBadRequest, "", errorResponse{
			Error:  string(usecase.ErrorBadInput),
			Reason: "unsupported_file_type",
		}), nil
	}

	outcome, err := h.svc.ProcessNext(ctx, key)
	if err != nil {
		return respondError("", err), nil
	}

	switch {
	case outcome.NoJob:
		return jsonResponse(http.StatusOK, "", messageResponse{Message: "No messages to process"}), nil
	case outcome.Deleted:
		return jsonResponse(http.StatusOK, "", messageResponse{Message: "Image parsing request sent successfully"}), nil
	default:
		status := outcome.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return jsonResponse(status, "", messageResponse{Message: "Failed to parse image or invalid response"}), nil
	}
}
