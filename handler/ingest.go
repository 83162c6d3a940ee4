package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"todam/internal/domain"
	"todam/internal/usecase"
)

// imageExtensions are the uploads routed to the image pipeline instead of
// being decoded as chat exports.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
}

// IngestUseCase processes one decoded webhook payload.
type IngestUseCase interface {
	ProcessWebhook(ctx context.Context, payload domain.WebhookPayload) (usecase.IngestResult, error)
}

// ObjectFetcher downloads the object named by the triggering notification.
type ObjectFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// AsyncInvoker fires the image-consumer function without waiting on it.
type AsyncInvoker interface {
	InvokeAsync(ctx context.Context, functionName string, payload any) error
}

// IngestHandler is the entrypoint behind the chat-export bucket: image
// uploads are handed to the parse-image function, everything else is decoded
// and ingested.
type IngestHandler struct {
	svc          IngestUseCase
	store        ObjectFetcher
	invoker      AsyncInvoker
	parseImageFn string
}

// NewIngestHandler creates an IngestHandler. parseImageFn names the function
// invoked for image uploads.
func NewIngestHandler(svc IngestUseCase, store ObjectFetcher, invoker AsyncInvoker, parseImageFn string) (*IngestHandler, error) {
	if svc == nil {
		return nil, errors.New("handler: ingest service must not be nil")
	}
	if store == nil {
		return nil, errors.New("handler: object store must not be nil")
	}
	if invoker == nil {
		return nil, errors.New("handler: invoker must not be nil")
	}
	if strings.TrimSpace(parseImageFn) == "" {
		return nil, errors.New("handler: parse image function name must not be empty")
	}
	return &IngestHandler{svc: svc, store: store, invoker: invoker, parseImageFn: parseImageFn}, nil
}

type ingestResponse struct {
	Message  string `json:"message"`
	RecordID string `json:"record_id,omitempty"`
	Command  string `json:"command,omitempty"`
}

func (h *IngestHandler) Handle(ctx context.Context, event events.S3Event) (Response, error) {
	if len(event.Records) == 0 {
		return jsonResponse(http.StatusBadRequest, "", errorResponse{Error: string(usecase.ErrorBadInput), Reason: "no_records"}), nil
	}
	key := event.Records[0].S3.Object.Key

	if imageExtensions[strings.ToLower(path.Ext(key))] {
		if err := h.invoker.InvokeAsync(ctx, h.parseImageFn, event); err != nil {
			return respondError("", err), nil
		}
		return jsonResponse(http.StatusOK, "", messageResponse{
			Message: "This API ignored non-log file, but it will send to model to parse image",
		}), nil
	}

	raw, err := h.store.Fetch(ctx, key)
	if err != nil {
		return respondError("", err), nil
	}

	var payload domain.WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return jsonResponse(http.StatusBadRequest, "", errorResponse{Error: string(usecase.ErrorBadInput), Reason: "malformed_payload"}), nil
	}
	payload.S3ObjectKey = key

	result, err := h.svc.ProcessWebhook(ctx, payload)
	if err != nil {
		return respondError("", err), nil
	}
	return jsonResponse(http.StatusOK, "", ingestResponse{
		Message:  "Log processed",
		RecordID: result.RecordID,
		Command:  string(result.Command),
	}), nil
}
