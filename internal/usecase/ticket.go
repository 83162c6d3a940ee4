package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"todam/internal/repository"
)

// TicketRequest is the payload forwarded to the external ticketing API.
type TicketRequest struct {
	Subject      string `json:"ticket_subject"`
	Description  string `json:"ticket_description"`
	DepartmentID string `json:"department_id"`
}

// TicketResponse is the ticketing API's answer, passed through to the caller.
type TicketResponse struct {
	StatusCode int
	Body       json.RawMessage
}

// TicketAPI calls the external ticketing service.
type TicketAPI interface {
	CreateTicket(ctx context.Context, req TicketRequest) (TicketResponse, error)
}

// TicketService proxies ticket creation and marks the backing segment
// resolved on success.
type TicketService struct {
	api      TicketAPI
	segments SegmentStore
}

// NewTicketService creates a TicketService.
func NewTicketService(api TicketAPI, segments SegmentStore) (*TicketService, error) {
	if api == nil {
		return nil, errors.New("usecase: ticket api must not be nil")
	}
	if segments == nil {
		return nil, errors.New("usecase: segment store must not be nil")
	}
	return &TicketService{api: api, segments: segments}, nil
}

// TicketInput is one ticket-creation request.
type TicketInput struct {
	SegmentID    string
	Subject      string
	Description  string
	DepartmentID string
}

// TicketOutcome carries the upstream response plus whether the segment was
// marked resolved.
type TicketOutcome struct {
	StatusCode int
	Body       json.RawMessage
	Resolved   bool
}

// Create forwards the ticket to the upstream API. An upstream rejection is
// reported in the outcome, not as an error; the segment is flipped to
// resolved only after an upstream 200.
func (s *TicketService) Create(ctx context.Context, in TicketInput) (TicketOutcome, error) {
	if strings.TrimSpace(in.SegmentID) == "" {
		return TicketOutcome{}, newError(ErrorBadInput, "missing_segment_id", nil)
	}

	res, err := s.api.CreateTicket(ctx, TicketRequest{
		Subject:      in.Subject,
		Description:  in.Description,
		DepartmentID: in.DepartmentID,
	})
	if err != nil {
		return TicketOutcome{}, newError(ErrorUpstream, "ticket_api_error", err)
	}
	if res.StatusCode != 200 {
		slog.Error("ticket creation rejected upstream", "segment_id", in.SegmentID, "status", res.StatusCode)
		return TicketOutcome{StatusCode: res.StatusCode, Body: res.Body}, nil
	}

	if err := s.segments.MarkResolved(ctx, in.SegmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TicketOutcome{}, newError(ErrorNotFound, "segment_not_found", err)
		}
		return TicketOutcome{}, newError(ErrorInternal, "segment_write_error", err)
	}
	slog.Info("segment resolved by ticket", "segment_id", in.SegmentID)

	return TicketOutcome{StatusCode: res.StatusCode, Body: res.Body, Resolved: true}, nil
}
