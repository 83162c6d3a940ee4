package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"todam/internal/usecase"
)

// sqsAPI is the minimal AWS SQS interface required by Client.
// *sqs.Client from aws-sdk-go-v2 satisfies this interface.
type sqsAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// The FIFO queue has content-based deduplication enabled, so sends carry a
// group id but no explicit deduplication id. A single group keeps jobs in
// strict arrival order.
const messageGroupID = "default_message_group_id"

// Receive behaves as a short poll with a redelivery window: undeleted jobs
// come back after the visibility timeout elapses.
const (
	receiveBatchSize     = 1
	visibilityTimeoutSec = 30
	waitTimeSec          = 5
)

// Client sends and receives image-analysis jobs over one SQS FIFO queue.
type Client struct {
	api      sqsAPI
	queueURL string
}

// New creates a Client bound to the given queue URL.
func New(api sqsAPI, queueURL string) (*Client, error) {
	if api == nil {
		return nil, errors.New("queue: api must not be nil")
	}
	queueURL = strings.TrimSpace(queueURL)
	if queueURL == "" {
		return nil, errors.New("queue: queue url must not be empty")
	}
	return &Client{api: api, queueURL: queueURL}, nil
}

// Send marshals body as JSON and enqueues it.
func (c *Client) Send(ctx context.Context, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("queue: marshal message body: %w", err)
	}

	out, err := c.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:       aws.String(c.queueURL),
		MessageBody:    aws.String(string(raw)),
		MessageGroupId: aws.String(messageGroupID),
	})
	if err != nil {
		return fmt.Errorf("queue: send message: %w", err)
	}
	if out != nil && out.MessageId != nil {
		slog.Info("queued message", "queue_message_id", *out.MessageId)
	}
	return nil
}

// Receive polls for at most one job. The second return is false when the
// queue had nothing to hand out within the wait window.
func (c *Client) Receive(ctx context.Context) (usecase.QueueJob, bool, error) {
	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: receiveBatchSize,
		VisibilityTimeout:   visibilityTimeoutSec,
		WaitTimeSeconds:     waitTimeSec,
	})
	if err != nil {
		return usecase.QueueJob{}, false, fmt.Errorf("queue: receive message: %w", err)
	}
	if out == nil || len(out.Messages) == 0 {
		return usecase.QueueJob{}, false, nil
	}

	msg := out.Messages[0]
	job := usecase.QueueJob{}
	if msg.MessageId != nil {
		job.MessageID = *msg.MessageId
	}
	if msg.ReceiptHandle != nil {
		job.ReceiptHandle = *msg.ReceiptHandle
	}
	if msg.Body != nil {
		job.Body = []byte(*msg.Body)
	}
	return job, true, nil
}

// Delete removes a received job so it is not redelivered.
func (c *Client) Delete(ctx context.Context, receiptHandle string) error {
	if strings.TrimSpace(receiptHandle) == "" {
		return errors.New("queue: receipt handle is required")
	}
	_, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("queue: delete message: %w", err)
	}
	return nil
}
