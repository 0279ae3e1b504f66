package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"

	"github.com/wiseuni/identity-hooks/internal/hookerr"
)

const charsetUTF8 = "UTF-8"

// SESAPI is the subset of the SES v2 client used for sending.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends through Amazon SES. The sender address must be verified in SES.
type SESSender struct {
	client           SESAPI
	configurationSet string
}

// NewSESSender creates an SES sender. configurationSet may be empty.
func NewSESSender(client SESAPI, configurationSet string) *SESSender {
	return &SESSender{client: client, configurationSet: configurationSet}
}

// Send implements Sender.
func (s *SESSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	body := &types.Body{}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String(charsetUTF8)}
	}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(charsetUTF8)}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charsetUTF8)},
				Body:    body,
			},
		},
	}
	if s.configurationSet != "" {
		input.ConfigurationSetName = aws.String(s.configurationSet)
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return "", classifySESError(err)
	}
	return aws.ToString(out.MessageId), nil
}

// classifySESError keeps the SES error code (MessageRejected,
// MailFromDomainNotVerifiedException, TooManyRequestsException, ...) so log
// lines show why delivery failed.
func classifySESError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return hookerr.Delivery(apiErr.ErrorCode(), fmt.Errorf("ses: %s: %w", apiErr.ErrorMessage(), err))
	}
	return hookerr.Delivery("SESRequestFailed", fmt.Errorf("ses: %w", err))
}
