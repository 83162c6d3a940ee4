package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"todam/internal/classify"
	"todam/internal/domain"
)

// MessageStore is the message persistence consumed by the services.
type MessageStore interface {
	Put(ctx context.Context, msg domain.Message) error
	QueryRange(ctx context.Context, groupID string, start, end int64) ([]domain.Message, error)
	TableName() string
}

// Recorder is the segment lifecycle surface the ingest flow drives.
type Recorder interface {
	Start(ctx context.Context, in RecordingInput) (RecordingResult, error)
	End(ctx context.Context, in RecordingInput) (RecordingResult, error)
}

// Registrar is the verification surface the ingest flow drives.
type Registrar interface {
	Apply(ctx context.Context, userID, email string) error
	ResolveUserType(ctx context.Context, userID string) string
}

// JobEnqueuer puts a job on the image-analysis work queue.
type JobEnqueuer interface {
	Send(ctx context.Context, body any) error
}

// ImageJob is the correlation payload handed to the image-analysis pipeline.
type ImageJob struct {
	TableName string `json:"dynamodb_table_name"`
	ItemID    string `json:"dynamodb_item_id"`
}

// IngestService turns one inbound chat event into a durable message record
// and the side effects its classification calls for.
type IngestService struct {
	classifier *classify.Classifier
	messages   MessageStore
	recorder   Recorder
	registrar  Registrar
	queue      JobEnqueuer
	newID      func() string
}

// NewIngestService creates an IngestService.
func NewIngestService(classifier *classify.Classifier, messages MessageStore, recorder Recorder, registrar Registrar, queue JobEnqueuer) (*IngestService, error) {
	if classifier == nil {
		return nil, errors.New("usecase: classifier must not be nil")
	}
	if messages == nil {
		return nil, errors.New("usecase: message store must not be nil")
	}
	if recorder == nil {
		return nil, errors.New("usecase: recorder must not be nil")
	}
	if registrar == nil {
		return nil, errors.New("usecase: registrar must not be nil")
	}
	if queue == nil {
		return nil, errors.New("usecase: job queue must not be nil")
	}
	return &IngestService{
		classifier: classifier,
		messages:   messages,
		recorder:   recorder,
		registrar:  registrar,
		queue:      queue,
		newID:      newRecordID,
	}, nil
}

// IngestResult reports what processing one event did.
type IngestResult struct {
	RecordID  string
	Command   classify.Kind
	Recording *RecordingResult
}

// ProcessWebhook handles one webhook payload: classify, persist the message
// record unconditionally, then run the command's side effects.
func (s *IngestService) ProcessWebhook(ctx context.Context, payload domain.WebhookPayload) (IngestResult, error) {
	event, ok := payload.First()
	if !ok {
		return IngestResult{}, newError(ErrorBadInput, "empty_events", nil)
	}
	msg := event.Message
	if strings.TrimSpace(msg.Type) == "" {
		return IngestResult{}, newError(ErrorBadInput, "missing_message_type", nil)
	}

	cmd := s.classifier.Classify(msg)
	recordID := s.newID()
	slog.Info("event classified", "command", string(cmd.Kind), "record_id", recordID,
		"group_id", event.Source.GroupID, "message_type", msg.Type)

	// The image job is enqueued before the record write so the analysis
	// pipeline sees the same item id the record will carry. Queue failures
	// are correctness-critical for images and propagate.
	if cmd.Kind == classify.KindImage {
		job := ImageJob{TableName: s.messages.TableName(), ItemID: recordID}
		if err := s.queue.Send(ctx, job); err != nil {
			return IngestResult{}, newError(ErrorUpstream, "image_queue_error", err)
		}
	}

	content := msg.Text
	if msg.Type == "sticker" {
		switch cmd.Kind {
		case classify.KindStartRecording:
			content = classify.StartRecordingText
		case classify.KindEndRecording:
			content = classify.EndRecordingText
		}
	}

	var userType string
	if event.Source.UserID != "" {
		userType = s.registrar.ResolveUserType(ctx, event.Source.UserID)
	}
	record := domain.Message{
		ID:            recordID,
		S3ObjectKey:   payload.S3ObjectKey,
		MessageID:     msg.ID,
		MessageType:   msg.Type,
		Content:       content,
		GroupID:       event.Source.GroupID,
		UserID:        event.Source.UserID,
		UserType:      userType,
		SendTimestamp: event.Timestamp,
	}
	if err := s.messages.Put(ctx, record); err != nil {
		return IngestResult{}, newError(ErrorInternal, "message_write_error", err)
	}

	result := IngestResult{RecordID: recordID, Command: cmd.Kind}
	recIn := RecordingInput{
		GroupID:     event.Source.GroupID,
		UserID:      event.Source.UserID,
		MessageID:   msg.ID,
		S3ObjectKey: payload.S3ObjectKey,
		Timestamp:   event.Timestamp,
	}

	switch cmd.Kind {
	case classify.KindStartRecording:
		rec, err := s.recorder.Start(ctx, recIn)
		if err != nil {
			return IngestResult{}, err
		}
		result.Recording = &rec
	case classify.KindEndRecording:
		rec, err := s.recorder.End(ctx, recIn)
		if err != nil {
			return IngestResult{}, err
		}
		result.Recording = &rec
	case classify.KindRegister:
		if err := s.registrar.Apply(ctx, event.Source.UserID, cmd.Email); err != nil {
			return IngestResult{}, err
		}
	}

	return result, nil
}
