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

// openGuardPrefix keys the per-group open-segment guard row. The guard's
// existence is the "at most one open segment per group" invariant: it is
// created in the same transaction as the segment row and deleted when the
// segment closes.
const openGuardPrefix = "OPEN#"

type openGuard struct {
	ID             string `dynamodbav:"id"`
	GroupID        string `dynamodbav:"group_id"`
	SegmentID      string `dynamodbav:"segment_id"`
	StartTimestamp int64  `dynamodbav:"start_timestamp"`
}

// SegmentStore wraps the segments table.
type SegmentStore struct {
	api       dynamodbAPI
	tableName string
}

// NewSegmentStore creates a SegmentStore for the given table.
func NewSegmentStore(api dynamodbAPI, tableName string) (*SegmentStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: segments table name must not be empty")
	}
	return &SegmentStore{api: api, tableName: tableName}, nil
}

func guardKey(groupID string) string {
	return openGuardPrefix + groupID
}

// CreateOpen writes a new open segment and its guard row in one transaction.
// Returns ErrConditionFailed if another open segment already exists for the
// group; the caller re-reads and reports the existing segment.
func (s *SegmentStore) CreateOpen(ctx context.Context, seg domain.Segment) error {
	if seg.ID == "" || seg.GroupID == "" {
		return errors.New("repository: CreateOpen: segment id and group id are required")
	}
	segItem, err := attributevalue.MarshalMap(seg)
	if err != nil {
		return fmt.Errorf("repository: marshal segment: %w", err)
	}
	guardItem, err := attributevalue.MarshalMap(openGuard{
		ID:             guardKey(seg.GroupID),
		GroupID:        seg.GroupID,
		SegmentID:      seg.ID,
		StartTimestamp: seg.StartTimestamp,
	})
	if err != nil {
		return fmt.Errorf("repository: marshal open guard: %w", err)
	}

	_, err = s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.tableName),
					Item:                segItem,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.tableName),
					Item:                guardItem,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("repository: CreateOpen %s: %w", seg.GroupID, ErrConditionFailed)
		}
		return fmt.Errorf("repository: CreateOpen: %w", err)
	}
	return nil
}

// GetOpen returns the group's open segment, or ErrNotFound when the group is
// not recording.
func (s *SegmentStore) GetOpen(ctx context.Context, groupID string) (domain.Segment, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: guardKey(groupID)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Segment{}, fmt.Errorf("repository: GetOpen guard: %w", err)
	}
	if len(out.Item) == 0 {
		return domain.Segment{}, fmt.Errorf("repository: GetOpen %s: %w", groupID, ErrNotFound)
	}

	var guard openGuard
	if err := attributevalue.UnmarshalMap(out.Item, &guard); err != nil {
		return domain.Segment{}, fmt.Errorf("repository: unmarshal open guard: %w", err)
	}
	return s.Get(ctx, guard.SegmentID)
}

// Get returns one segment by id.
func (s *SegmentStore) Get(ctx context.Context, segmentID string) (domain.Segment, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: segmentID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Segment{}, fmt.Errorf("repository: Get segment: %w", err)
	}
	if len(out.Item) == 0 {
		return domain.Segment{}, fmt.Errorf("repository: Get segment %s: %w", segmentID, ErrNotFound)
	}
	var seg domain.Segment
	if err := attributevalue.UnmarshalMap(out.Item, &seg); err != nil {
		return domain.Segment{}, fmt.Errorf("repository: unmarshal segment: %w", err)
	}
	return seg, nil
}

// Close marks an open segment ended and removes its guard row in one
// transaction. The update is conditioned on the segment still being open, so
// a closed segment is never closed twice.
func (s *SegmentStore) Close(ctx context.Context, groupID, segmentID string, endTimestamp int64, segmentName string) error {
	if groupID == "" || segmentID == "" {
		return errors.New("repository: Close: group id and segment id are required")
	}

	_, err := s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName: aws.String(s.tableName),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: segmentID},
					},
					UpdateExpression:    aws.String("SET end_timestamp = :end, is_end = :true, segment_name = :name"),
					ConditionExpression: aws.String("attribute_exists(id) AND is_end = :false"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":end":   &types.AttributeValueMemberN{Value: strconv.FormatInt(endTimestamp, 10)},
						":name":  &types.AttributeValueMemberS{Value: segmentName},
						":true":  &types.AttributeValueMemberBOOL{Value: true},
						":false": &types.AttributeValueMemberBOOL{Value: false},
					},
				},
			},
			{
				Delete: &types.Delete{
					TableName: aws.String(s.tableName),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: guardKey(groupID)},
					},
					ConditionExpression: aws.String("segment_id = :sid"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":sid": &types.AttributeValueMemberS{Value: segmentID},
					},
				},
			},
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("repository: Close %s: %w", segmentID, ErrConditionFailed)
		}
		return fmt.Errorf("repository: Close: %w", err)
	}
	return nil
}

// ListUnresolved scans for segment rows not yet resolved by a ticket,
// optionally restricted to one group. Guard rows are excluded.
func (s *SegmentStore) ListUnresolved(ctx context.Context, groupID string) ([]domain.Segment, error) {
	filter := "NOT begins_with(id, :guard) AND (is_resolved = :false OR attribute_not_exists(is_resolved))"
	values := map[string]types.AttributeValue{
		":guard": &types.AttributeValueMemberS{Value: openGuardPrefix},
		":false": &types.AttributeValueMemberBOOL{Value: false},
	}
	if groupID != "" {
		filter += " AND group_id = :gid"
		values[":gid"] = &types.AttributeValueMemberS{Value: groupID}
	}

	out, err := s.api.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(s.tableName),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return nil, fmt.Errorf("repository: ListUnresolved: %w", err)
	}

	segs := make([]domain.Segment, 0, len(out.Items))
	for _, item := range out.Items {
		var seg domain.Segment
		if err := attributevalue.UnmarshalMap(item, &seg); err != nil {
			return nil, fmt.Errorf("repository: unmarshal segment: %w", err)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// MarkResolved flips a segment's is_resolved flag after a ticket is created
// for it.
func (s *SegmentStore) MarkResolved(ctx context.Context, segmentID string) error {
	_, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: segmentID},
		},
		UpdateExpression:    aws.String("SET is_resolved = :true"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("repository: MarkResolved %s: %w", segmentID, ErrNotFound)
		}
		return fmt.Errorf("repository: MarkResolved: %w", err)
	}
	return nil
}
