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

// UserStore wraps the registered-users table.
type UserStore struct {
	api       dynamodbAPI
	tableName string
}

// NewUserStore creates a UserStore for the given table.
func NewUserStore(api dynamodbAPI, tableName string) (*UserStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: users table name must not be empty")
	}
	return &UserStore{api: api, tableName: tableName}, nil
}

// Get returns the registration record for a user, or ErrNotFound.
func (s *UserStore) Get(ctx context.Context, userID string) (domain.RegisteredUser, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.RegisteredUser{}, fmt.Errorf("repository: Get user: %w", err)
	}
	if len(out.Item) == 0 {
		return domain.RegisteredUser{}, fmt.Errorf("repository: Get user %s: %w", userID, ErrNotFound)
	}
	var user domain.RegisteredUser
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return domain.RegisteredUser{}, fmt.Errorf("repository: unmarshal user: %w", err)
	}
	return user, nil
}

// PutApplication overwrites a user's registration record. priorApplyTimestamp
// guards against a concurrent re-application: the write only succeeds if the
// record is still absent (priorApplyTimestamp == 0) or still carries the
// apply_timestamp the caller read. A lost race returns ErrConditionFailed.
func (s *UserStore) PutApplication(ctx context.Context, user domain.RegisteredUser, priorApplyTimestamp int64) error {
	if user.UserID == "" {
		return errors.New("repository: PutApplication: user id is required")
	}
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("repository: marshal user: %w", err)
	}

	in := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}
	if priorApplyTimestamp == 0 {
		in.ConditionExpression = aws.String("attribute_not_exists(user_id)")
	} else {
		in.ConditionExpression = aws.String("apply_timestamp = :prior")
		in.ExpressionAttributeValues = map[string]types.AttributeValue{
			":prior": &types.AttributeValueMemberN{Value: strconv.FormatInt(priorApplyTimestamp, 10)},
		}
	}

	if _, err := s.api.PutItem(ctx, in); err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("repository: PutApplication %s: %w", user.UserID, ErrConditionFailed)
		}
		return fmt.Errorf("repository: PutApplication: %w", err)
	}
	return nil
}

// MarkVerified flips is_verified for an existing user.
func (s *UserStore) MarkVerified(ctx context.Context, userID string) error {
	_, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:    aws.String("SET is_verified = :true"),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("repository: MarkVerified %s: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("repository: MarkVerified: %w", err)
	}
	return nil
}
