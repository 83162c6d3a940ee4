package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
)

// QueueJob is one received work-queue entry.
type QueueJob struct {
	MessageID     string
	ReceiptHandle string
	Body          []byte
}

// JobDequeuer receives and deletes image-analysis jobs.
type JobDequeuer interface {
	Receive(ctx context.Context) (QueueJob, bool, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// ParseRequest is the payload posted to the image-parsing API.
type ParseRequest struct {
	S3BucketName string `json:"s3_bucket_name"`
	S3ObjectKey  string `json:"s3_object_key"`
	TableName    string `json:"dynamodb_table_name"`
	ItemID       string `json:"dynamodb_item_id"`
}

// ParseResult is the image-parsing API's answer. MessageID is the
// downstream-confirmed message identifier, empty when the response carried
// none.
type ParseResult struct {
	StatusCode int
	MessageID  string
}

// ImageParser calls the external image-parsing API.
type ImageParser interface {
	Parse(ctx context.Context, req ParseRequest) (ParseResult, error)
}

// ParseImageService is the consumer half of the image dispatcher: it takes
// one job off the queue, calls the parsing API, and deletes the job only on
// confirmed success so everything else redelivers after the visibility
// window.
type ParseImageService struct {
	queue  JobDequeuer
	parser ImageParser
	bucket string
}

// NewParseImageService creates a ParseImageService. bucket is the object
// store holding the originating images.
func NewParseImageService(queue JobDequeuer, parser ImageParser, bucket string) (*ParseImageService, error) {
	if queue == nil {
		return nil, errors.New("usecase: job queue must not be nil")
	}
	if parser == nil {
		return nil, errors.New("usecase: image parser must not be nil")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("usecase: bucket must not be empty")
	}
	return &ParseImageService{queue: queue, parser: parser, bucket: bucket}, nil
}

// ParseOutcome reports one consumer step.
type ParseOutcome struct {
	NoJob      bool
	Deleted    bool
	StatusCode int
}

// ProcessNext handles at most one queued job for the given object key. The
// queue entry is deleted only when the API reports success AND confirms a
// message identifier; any other outcome leaves it for redelivery.
func (s *ParseImageService) ProcessNext(ctx context.Context, objectKey string) (ParseOutcome, error) {
	job, ok, err := s.queue.Receive(ctx)
	if err != nil {
		return ParseOutcome{}, newError(ErrorUpstream, "queue_receive_error", err)
	}
	if !ok {
		slog.Info("no image jobs to process")
		return ParseOutcome{NoJob: true}, nil
	}

	var imageJob ImageJob
	if err := json.Unmarshal(job.Body, &imageJob); err != nil {
		// Left undeleted; redelivery gives a fixed consumer another chance.
		return ParseOutcome{}, newError(ErrorInternal, "job_decode_error", err)
	}
	slog.Info("processing image job", "queue_message_id", job.MessageID, "item_id", imageJob.ItemID)

	res, err := s.parser.Parse(ctx, ParseRequest{
		S3BucketName: s.bucket,
		S3ObjectKey:  objectKey,
		TableName:    imageJob.TableName,
		ItemID:       imageJob.ItemID,
	})
	if err != nil {
		return ParseOutcome{}, newError(ErrorUpstream, "parse_api_error", err)
	}

	outcome := ParseOutcome{StatusCode: res.StatusCode}
	if res.StatusCode == 200 && res.MessageID != "" {
		if err := s.queue.Delete(ctx, job.ReceiptHandle); err != nil {
			return ParseOutcome{}, newError(ErrorUpstream, "queue_delete_error", err)
		}
		outcome.Deleted = true
		slog.Info("image job completed", "queue_message_id", job.MessageID)
	} else {
		slog.Error("image parse unconfirmed, leaving job for redelivery",
			"queue_message_id", job.MessageID, "status", res.StatusCode)
	}
	return outcome, nil
}
