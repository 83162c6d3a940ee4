package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"todam/internal/usecase"
)

type stubCorrelation struct {
	out       usecase.SegmentTranscript
	err       error
	segmentID string
}

func (s *stubCorrelation) SegmentMessages(_ context.Context, segmentID string) (usecase.SegmentTranscript, error) {
	s.segmentID = segmentID
	return s.out, s.err
}

func transcript() usecase.SegmentTranscript {
	return usecase.SegmentTranscript{
		GroupID:        "group-1",
		SegmentID:      "seg-1",
		StartTimestamp: 1000,
		EndTimestamp:   5000,
		Messages: []usecase.CorrelatedMessage{
			{UserID: "user-1", UserType: "Client", MessageType: "text", Content: "hi", SendTimestamp: 2000},
			{UserID: "user-2", UserType: "TAM", MessageType: "text", Content: "hello", SendTimestamp: 3000},
		},
	}
}

func TestSegmentMessagesHandle_JSONOutput(t *testing.T) {
	svc := &stubCorrelation{out: transcript()}
	h, err := NewSegmentMessagesHandler(svc)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeGetEvent(map[string]string{"segment_id": "seg-1"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "seg-1", svc.segmentID)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])

	out := parseBody[usecase.SegmentTranscript](t, resp.Body)
	require.Equal(t, transcript(), out)
}

func TestSegmentMessagesHandle_TextOutput(t *testing.T) {
	h, err := NewSegmentMessagesHandler(&stubCorrelation{out: transcript()})
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeGetEvent(map[string]string{"segment_id": "seg-1", "output": "text"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/plain", resp.Headers["Content-Type"])
	require.Equal(t, "Client: hi\nTAM: hello", resp.Body)
}

func TestSegmentMessagesHandle_MapsServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "missing segment id", err: &usecase.Error{Code: usecase.ErrorBadInput, Reason: "missing_segment_id"}, status: http.StatusBadRequest},
		{name: "not found or incomplete", err: &usecase.Error{Code: usecase.ErrorNotFound, Reason: "segment_not_found_or_incomplete"}, status: http.StatusNotFound},
		{name: "lookup failure", err: &usecase.Error{Code: usecase.ErrorInternal, Reason: "segment_lookup_error"}, status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewSegmentMessagesHandler(&stubCorrelation{err: tc.err})
			require.NoError(t, err)

			resp, err := h.Handle(context.Background(), makeGetEvent(map[string]string{"segment_id": "seg-1"}))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestNewSegmentMessagesHandler_ValidatesDependency(t *testing.T) {
	_, err := NewSegmentMessagesHandler(nil)
	require.Error(t, err)
}
