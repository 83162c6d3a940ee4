package lambdafn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// lambdaAPI is the minimal AWS Lambda interface required by Client.
// *lambda.Client from aws-sdk-go-v2 satisfies this interface.
type lambdaAPI interface {
	Invoke(ctx context.Context, in *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Client fires event-style invocations of other functions.
type Client struct {
	api lambdaAPI
}

// New creates a Client with the given Lambda API implementation.
func New(api lambdaAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("lambdafn: api must not be nil")
	}
	return &Client{api: api}, nil
}

// InvokeAsync hands payload to functionName without waiting for the result.
// The invocation type is Event, so a nil error only means the request was
// accepted.
func (c *Client) InvokeAsync(ctx context.Context, functionName string, payload any) error {
	functionName = strings.TrimSpace(functionName)
	if functionName == "" {
		return errors.New("lambdafn: function name is required")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("lambdafn: marshal payload: %w", err)
	}

	_, err = c.api.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeEvent,
		Payload:        raw,
	})
	if err != nil {
		return fmt.Errorf("lambdafn: invoke %s: %w", functionName, err)
	}
	slog.Info("invoked function", "function_name", functionName)
	return nil
}
