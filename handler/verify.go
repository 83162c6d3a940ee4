package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"todam/internal/usecase"
)

// VerifyUseCase completes a pending registration.
type VerifyUseCase interface {
	Verify(ctx context.Context, userID, code string) error
}

// VerifyHandler is the entrypoint behind the emailed verification link.
type VerifyHandler struct {
	svc VerifyUseCase
}

// NewVerifyHandler creates a VerifyHandler.
func NewVerifyHandler(svc VerifyUseCase) (*VerifyHandler, error) {
	if svc == nil {
		return nil, errors.New("handler: verify service must not be nil")
	}
	return &VerifyHandler{svc: svc}, nil
}

func (h *VerifyHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (Response, error) {
	corrID := correlationID(event.Headers)

	userID := event.QueryStringParameters["user_id"]
	code := event.QueryStringParameters["code"]
	if userID == "" || code == "" {
		return jsonResponse(http.StatusBadRequest, corrID, errorResponse{
			Error:  string(usecase.ErrorBadInput),
			Reason: "missing_user_id_or_code",
		}), nil
	}

	if err := h.svc.Verify(ctx, userID, code); err != nil {
		return respondError(corrID, err), nil
	}
	return jsonResponse(http.StatusOK, corrID, messageResponse{Message: "Registration verified"}), nil
}
