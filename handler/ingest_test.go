package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"todam/internal/classify"
	"todam/internal/domain"
	"todam/internal/usecase"
)

type stubIngest struct {
	out usecase.IngestResult
	err error
	in  domain.WebhookPayload
}

func (s *stubIngest) ProcessWebhook(_ context.Context, payload domain.WebhookPayload) (usecase.IngestResult, error) {
	s.in = payload
	return s.out, s.err
}

type stubFetcher struct {
	body []byte
	err  error
	key  string
}

func (s *stubFetcher) Fetch(_ context.Context, key string) ([]byte, error) {
	s.key = key
	return s.body, s.err
}

type stubInvoker struct {
	err     error
	fn      string
	payload any
	calls   int
}

func (s *stubInvoker) InvokeAsync(_ context.Context, functionName string, payload any) error {
	s.calls++
	s.fn = functionName
	s.payload = payload
	return s.err
}

const webhookJSON = `{
	"events": [{
		"message": {"type": "text", "id": "m-1", "text": "hello"},
		"source": {"groupId": "group-1", "userId": "user-1"},
		"timestamp": 1700000000000
	}]
}`

func mustIngestHandler(t *testing.T, svc *stubIngest, store *stubFetcher, invoker *stubInvoker) *IngestHandler {
	t.Helper()
	h, err := NewIngestHandler(svc, store, invoker, "parse-image-fn")
	require.NoError(t, err)
	return h
}

func TestIngestHandle_DecodesAndProcessesLog(t *testing.T) {
	svc := &stubIngest{out: usecase.IngestResult{RecordID: "rec-1", Command: classify.KindPlain}}
	store := &stubFetcher{body: []byte(webhookJSON)}
	invoker := &stubInvoker{}
	h := mustIngestHandler(t, svc, store, invoker)

	resp, err := h.Handle(context.Background(), makeS3Event("logs/2024/abc.json"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "logs/2024/abc.json", store.key)
	require.Zero(t, invoker.calls)

	require.Equal(t, "logs/2024/abc.json", svc.in.S3ObjectKey)
	require.Equal(t, "hello", svc.in.Events[0].Message.Text)

	out := parseBody[ingestResponse](t, resp.Body)
	require.Equal(t, "rec-1", out.RecordID)
	require.Equal(t, string(classify.KindPlain), out.Command)
}

func TestIngestHandle_ImageUploadInvokesParseFunction(t *testing.T) {
	svc := &stubIngest{}
	store := &stubFetcher{}
	invoker := &stubInvoker{}
	h := mustIngestHandler(t, svc, store, invoker)

	event := makeS3Event("uploads/photo.PNG")
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, invoker.calls)
	require.Equal(t, "parse-image-fn", invoker.fn)
	require.Equal(t, event, invoker.payload)
	require.Empty(t, store.key)
}

func TestIngestHandle_InvokeFailure(t *testing.T) {
	invoker := &stubInvoker{err: errors.New("denied")}
	h := mustIngestHandler(t, &stubIngest{}, &stubFetcher{}, invoker)

	resp, err := h.Handle(context.Background(), makeS3Event("uploads/photo.png"))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestIngestHandle_FetchFailure(t *testing.T) {
	store := &stubFetcher{err: errors.New("no such key")}
	h := mustIngestHandler(t, &stubIngest{}, store, &stubInvoker{})

	resp, err := h.Handle(context.Background(), makeS3Event("logs/abc.json"))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestIngestHandle_MalformedPayload(t *testing.T) {
	store := &stubFetcher{body: []byte("not json")}
	h := mustIngestHandler(t, &stubIngest{}, store, &stubInvoker{})

	resp, err := h.Handle(context.Background(), makeS3Event("logs/abc.json"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, string(usecase.ErrorBadInput), out.Error)
}

func TestIngestHandle_MapsServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "bad input", err: &usecase.Error{Code: usecase.ErrorBadInput, Reason: "empty_events"}, status: http.StatusBadRequest, code: string(usecase.ErrorBadInput)},
		{name: "forbidden", err: &usecase.Error{Code: usecase.ErrorForbidden, Reason: "user_not_verified"}, status: http.StatusForbidden, code: string(usecase.ErrorForbidden)},
		{name: "upstream", err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "image_queue_error"}, status: http.StatusBadGateway, code: string(usecase.ErrorUpstream)},
		{name: "internal", err: &usecase.Error{Code: usecase.ErrorInternal, Reason: "message_write_error"}, status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubIngest{err: tc.err}
			h := mustIngestHandler(t, svc, &stubFetcher{body: []byte(webhookJSON)}, &stubInvoker{})

			resp, err := h.Handle(context.Background(), makeS3Event("logs/abc.json"))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			out := parseBody[errorResponse](t, resp.Body)
			require.Equal(t, tc.code, out.Error)
		})
	}
}

func TestIngestHandle_NoRecords(t *testing.T) {
	h := mustIngestHandler(t, &stubIngest{}, &stubFetcher{}, &stubInvoker{})

	resp, err := h.Handle(context.Background(), events.S3Event{})
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewIngestHandler_ValidatesDependencies(t *testing.T) {
	_, err := NewIngestHandler(nil, &stubFetcher{}, &stubInvoker{}, "fn")
	require.Error(t, err)
	_, err = NewIngestHandler(&stubIngest{}, nil, &stubInvoker{}, "fn")
	require.Error(t, err)
	_, err = NewIngestHandler(&stubIngest{}, &stubFetcher{}, nil, "fn")
	require.Error(t, err)
	_, err = NewIngestHandler(&stubIngest{}, &stubFetcher{}, &stubInvoker{}, " ")
	require.Error(t, err)
}
