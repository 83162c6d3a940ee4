package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"todam/internal/usecase"
)

// TicketUseCase forwards a ticket request and resolves the segment.
type TicketUseCase interface {
	Create(ctx context.Context, in usecase.TicketInput) (usecase.TicketOutcome, error)
}

// TicketHandler is the entrypoint for raising a ticket from a recorded
// segment.
type TicketHandler struct {
	svc TicketUseCase
}

// NewTicketHandler creates a TicketHandler.
func NewTicketHandler(svc TicketUseCase) (*TicketHandler, error) {
	if svc == nil {
		return nil, errors.New("handler: ticket service must not be nil")
	}
	return &TicketHandler{svc: svc}, nil
}

type ticketRequest struct {
	SegmentID    string `json:"segment_id"`
	Subject      string `json:"ticket_subject"`
	Description  string `json:"ticket_description"`
	DepartmentID string `json:"department_id"`
}

func (h *TicketHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (Response, error) {
	corrID := correlationID(event.Headers)

	var req ticketRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return jsonResponse(http.StatusBadRequest, corrID, errorResponse{
			Error:  string(usecase.ErrorBadInput),
			Reason: "malformed_body",
		}), nil
	}

	outcome, err := h.svc.Create(ctx, usecase.TicketInput{
		SegmentID:    req.SegmentID,
		Subject:      req.Subject,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return respondError(corrID, err), nil
	}

	// The upstream body passes through untouched, rejected or not.
	return Response{
		StatusCode: outcome.StatusCode,
		Headers:    responseHeaders("application/json", corrID),
		Body:       string(outcome.Body),
	}, nil
}
