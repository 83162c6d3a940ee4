package repository

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo captures the last input per operation and returns configured
// outputs.
type fakeDynamo struct {
	getOut    *dynamodb.GetItemOutput
	getErr    error
	getOuts   []*dynamodb.GetItemOutput // consumed first when non-empty
	putErr    error
	updateErr error
	queryOut  *dynamodb.QueryOutput
	queryErr  error
	scanOut   *dynamodb.ScanOutput
	scanErr   error
	txErr     error

	lastGetInput    *dynamodb.GetItemInput
	lastPutInput    *dynamodb.PutItemInput
	lastUpdateInput *dynamodb.UpdateItemInput
	lastQueryInput  *dynamodb.QueryInput
	lastScanInput   *dynamodb.ScanInput
	lastTxInput     *dynamodb.TransactWriteItemsInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	if len(f.getOuts) > 0 {
		out := f.getOuts[0]
		f.getOuts = f.getOuts[1:]
		return out, f.getErr
	}
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.lastUpdateInput = in
	return &dynamodb.UpdateItemOutput{}, f.updateErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQueryInput = in
	return f.queryOut, f.queryErr
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.lastScanInput = in
	return f.scanOut, f.scanErr
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.lastTxInput = in
	return &dynamodb.TransactWriteItemsOutput{}, f.txErr
}

func strAV(v string) types.AttributeValue  { return &types.AttributeValueMemberS{Value: v} }
func numAV(v string) types.AttributeValue  { return &types.AttributeValueMemberN{Value: v} }
func boolAV(v bool) types.AttributeValue   { return &types.AttributeValueMemberBOOL{Value: v} }
func conditionFailedTxErr() error {
	code := "ConditionalCheckFailed"
	return &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: &code}},
	}
}
