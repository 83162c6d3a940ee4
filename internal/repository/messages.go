package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"todam/internal/domain"
)

// MessageStore wraps the messages table.
type MessageStore struct {
	api       dynamodbAPI
	tableName string
}

// NewMessageStore creates a MessageStore for the given table.
func NewMessageStore(api dynamodbAPI, tableName string) (*MessageStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: messages table name must not be empty")
	}
	return &MessageStore{api: api, tableName: tableName}, nil
}

// TableName returns the messages table name, used in image-job payloads.
func (s *MessageStore) TableName() string {
	return s.tableName
}

// Put persists one message record.
func (s *MessageStore) Put(ctx context.Context, msg domain.Message) error {
	if msg.ID == "" {
		return errors.New("repository: Put message: id is required")
	}
	item, err := attributevalue.MarshalMap(msg)
	if err != nil {
		return fmt.Errorf("repository: marshal message: %w", err)
	}
	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("repository: put message: %w", err)
	}
	return nil
}

// QueryRange returns the group's messages with send_timestamp in the
// inclusive range [start, end], in ascending timestamp order.
func (s *MessageStore) QueryRange(ctx context.Context, groupID string, start, end int64) ([]domain.Message, error) {
	out, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(GroupTimeIndex),
		KeyConditionExpression: aws.String("group_id = :gid AND send_timestamp BETWEEN :start AND :end"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":gid":   &types.AttributeValueMemberS{Value: groupID},
			":start": &types.AttributeValueMemberN{Value: strconv.FormatInt(start, 10)},
			":end":   &types.AttributeValueMemberN{Value: strconv.FormatInt(end, 10)},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: query message range: %w", err)
	}

	msgs := make([]domain.Message, 0, len(out.Items))
	for _, item := range out.Items {
		var msg domain.Message
		if err := attributevalue.UnmarshalMap(item, &msg); err != nil {
			return nil, fmt.Errorf("repository: unmarshal message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
