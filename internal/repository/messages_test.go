package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"todam/internal/domain"
)

func mustMessageStore(t *testing.T, db *fakeDynamo) *MessageStore {
	t.Helper()
	s, err := NewMessageStore(db, "messages-table")
	require.NoError(t, err)
	return s
}

func messageItem(id string, ts string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":             strAV(id),
		"group_id":       strAV("group-1"),
		"user_id":        strAV("user-1"),
		"user_type":      strAV("Client"),
		"message_type":   strAV("text"),
		"content":        strAV("hello"),
		"send_timestamp": numAV(ts),
	}
}

func TestNewMessageStore_Validation(t *testing.T) {
	_, err := NewMessageStore(nil, "messages-table")
	require.Error(t, err)
	_, err = NewMessageStore(&fakeDynamo{}, "")
	require.Error(t, err)
}

func TestPut_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	s := mustMessageStore(t, db)

	err := s.Put(context.Background(), domain.Message{ID: "msg-1", GroupID: "group-1", Content: "hello"})
	require.NoError(t, err)
	require.Equal(t, "messages-table", *db.lastPutInput.TableName)
	require.Equal(t, "hello", db.lastPutInput.Item["content"].(*types.AttributeValueMemberS).Value)
}

func TestPut_MissingID(t *testing.T) {
	s := mustMessageStore(t, &fakeDynamo{})
	require.Error(t, s.Put(context.Background(), domain.Message{GroupID: "group-1"}))
}

func TestPut_DynamoError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("ProvisionedThroughputExceededException")}
	s := mustMessageStore(t, db)
	err := s.Put(context.Background(), domain.Message{ID: "msg-1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "put message")
}

func TestQueryRange_UsesGroupTimeIndexAscending(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{
			messageItem("msg-1", "1000"),
			messageItem("msg-2", "2000"),
		},
	}}
	s := mustMessageStore(t, db)

	msgs, err := s.QueryRange(context.Background(), "group-1", 1000, 5000)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, int64(1000), msgs[0].SendTimestamp)

	require.Equal(t, GroupTimeIndex, *db.lastQueryInput.IndexName)
	require.Equal(t, "group_id = :gid AND send_timestamp BETWEEN :start AND :end", *db.lastQueryInput.KeyConditionExpression)
	require.True(t, *db.lastQueryInput.ScanIndexForward)
	require.Equal(t, "1000", db.lastQueryInput.ExpressionAttributeValues[":start"].(*types.AttributeValueMemberN).Value)
	require.Equal(t, "5000", db.lastQueryInput.ExpressionAttributeValues[":end"].(*types.AttributeValueMemberN).Value)
}

func TestQueryRange_Empty(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{}}
	s := mustMessageStore(t, db)

	msgs, err := s.QueryRange(context.Background(), "group-1", 1000, 5000)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestQueryRange_QueryError(t *testing.T) {
	db := &fakeDynamo{queryErr: errors.New("boom")}
	s := mustMessageStore(t, db)

	_, err := s.QueryRange(context.Background(), "group-1", 1000, 5000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "query message range")
}
