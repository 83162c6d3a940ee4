package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"todam/internal/usecase"
)

type stubParseImage struct {
	out usecase.ParseOutcome
	err error
	key string
}

func (s *stubParseImage) ProcessNext(_ context.Context, objectKey string) (usecase.ParseOutcome, error) {
	s.key = objectKey
	return s.out, s.err
}

func TestParseImageHandle_ConfirmedSuccess(t *testing.T) {
	svc := &stubParseImage{out: usecase.ParseOutcome{Deleted: true, StatusCode: 200}}
	h, err := NewParseImageHandler(svc)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeS3Event("uploads/photo.jpg"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "uploads/photo.jpg", svc.key)

	out := parseBody[messageResponse](t, resp.Body)
	require.Equal(t, "Image parsing request sent successfully", out.Message)
}

func TestParseImageHandle_EmptyQueue(t *testing.T) {
	h, err := NewParseImageHandler(&stubParseImage{out: usecase.ParseOutcome{NoJob: true}})
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeS3Event("uploads/photo.jpg"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := parseBody[messageResponse](t, resp.Body)
	require.Equal(t, "No messages to process", out.Message)
}

func TestParseImageHandle_UnconfirmedPassesUpstreamStatus(t *testing.T) {
	h, err := NewParseImageHandler(&stubParseImage{out: usecase.ParseOutcome{StatusCode: http.StatusBadGateway}})
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeS3Event("uploads/photo.jpg"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	out := parseBody[messageResponse](t, resp.Body)
	require.Equal(t, "Failed to parse image or invalid response", out.Message)
}

func TestParseImageHandle_UnsupportedFileType(t *testing.T) {
	svc := &stubParseImage{}
	h, err := NewParseImageHandler(svc)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeS3Event("logs/export.json"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, svc.key)

	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, "unsupported_file_type", out.Reason)
}

func TestParseImageHandle_ServiceError(t *testing.T) {
	h, err := NewParseImageHandler(&stubParseImage{err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "queue_receive_error"}})
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeS3Event("uploads/photo.jpg"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestNewParseImageHandler_ValidatesDependency(t *testing.T) {
	_, err := NewParseImageHandler(nil)
	require.Error(t, err)
}
