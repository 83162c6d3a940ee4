package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// sesAPI is the minimal AWS SES interface required by Client.
// *ses.Client from aws-sdk-go-v2 satisfies this interface.
type sesAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Client sends plain-text notification emails from a fixed source address.
type Client struct {
	api    sesAPI
	source string
}

// New creates a Client. source is the verified sender identity, e.g.
// "TODAM <noreply@example.com>".
func New(api sesAPI, source string) (*Client, error) {
	if api == nil {
		return nil, errors.New("email: api must not be nil")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("email: source address must not be empty")
	}
	return &Client{api: api, source: source}, nil
}

// Send delivers one plain-text email.
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("email: recipient is required")
	}

	out, err := c.api.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(c.source),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body:    &types.Body{Text: &types.Content{Data: aws.String(body)}},
		},
	})
	if err != nil {
		return fmt.Errorf("email: send to %s: %w", to, err)
	}
	if out != nil && out.MessageId != nil {
		slog.Info("email sent", "to", to, "subject", subject, "ses_message_id", *out.MessageId)
	}
	return nil
}
