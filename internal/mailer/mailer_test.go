package mailer_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/smithy-go"
	"github.com/mailersend/mailersend-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/hookerr"
	"github.com/wiseuni/identity-hooks/internal/mailer"
)

func testMessage() mailer.Message {
	return mailer.Message{
		From:    "WiseUni Student Portal <noreply@wiseuni.co.uk>",
		To:      "ada@example.com",
		ToName:  "Ada",
		Subject: "Welcome",
		Text:    "Hi Ada",
		HTML:    "<p>Hi Ada</p>",
	}
}

// fakeSES implements mailer.SESAPI.
type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-0001")}, nil
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	s := mailer.NewSESSender(fake, "transactional")

	id, err := s.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, "ses-0001", id)

	in := fake.input
	require.NotNil(t, in)
	assert.Equal(t, "WiseUni Student Portal <noreply@wiseuni.co.uk>", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"ada@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "transactional", aws.ToString(in.ConfigurationSetName))
	assert.Equal(t, "Welcome", aws.ToString(in.Content.Simple.Subject.Data))
	assert.Equal(t, "UTF-8", aws.ToString(in.Content.Simple.Body.Html.Charset))
	assert.Equal(t, "Hi Ada", aws.ToString(in.Content.Simple.Body.Text.Data))
}

func TestSESSender_ClassifiesAPIErrors(t *testing.T) {
	fake := &fakeSES{err: &smithy.GenericAPIError{Code: "MessageRejected", Message: "Email address is not verified."}}
	s := mailer.NewSESSender(fake, "")

	_, err := s.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, hookerr.ErrDelivery)

	var he *hookerr.Error
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "MessageRejected", he.Code)
	assert.Contains(t, err.Error(), "not verified")
}

func TestSESSender_TransportError(t *testing.T) {
	s := mailer.NewSESSender(&fakeSES{err: errors.New("dial tcp: i/o timeout")}, "")

	_, err := s.Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, hookerr.ErrDelivery)
}

func TestMessage_Validate(t *testing.T) {
	msg := testMessage()
	msg.To = " "
	assert.ErrorIs(t, msg.Validate(), hookerr.ErrDelivery)

	msg = testMessage()
	msg.Text, msg.HTML = "", ""
	assert.ErrorIs(t, msg.Validate(), hookerr.ErrDelivery)

	assert.NoError(t, testMessage().Validate())
}

// fakePublisher implements mailer.Publisher.
type fakePublisher struct {
	id      string
	payload any
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, id string, payload any) error {
	f.id, f.payload = id, payload
	return f.err
}

func TestQueueSender_Send(t *testing.T) {
	pub := &fakePublisher{}
	s := mailer.NewQueueSender(pub)

	id, err := s.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, pub.id, id)

	event, ok := pub.payload.(mailer.EmailRequestedEvent)
	require.True(t, ok)
	assert.Equal(t, mailer.EventTypeEmailRequested, event.EventType)
	assert.Equal(t, id, event.MessageID)
	assert.Equal(t, "ada@example.com", event.To)
	assert.Equal(t, "<p>Hi Ada</p>", event.HTML)
}

func TestQueueSender_PublishFailure(t *testing.T) {
	s := mailer.NewQueueSender(&fakePublisher{err: errors.New("channel closed")})

	_, err := s.Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, hookerr.ErrDelivery)
}

// fakeMailerSend implements mailer.MailerSendAPI.
type fakeMailerSend struct {
	sent *mailersend.Message
	res  *mailersend.Response
	err  error
}

func (f *fakeMailerSend) NewMessage() *mailersend.Message { return &mailersend.Message{} }

func (f *fakeMailerSend) Send(_ context.Context, m *mailersend.Message) (*mailersend.Response, error) {
	f.sent = m
	return f.res, f.err
}

func TestMailerSendSender_Success(t *testing.T) {
	header := http.Header{}
	header.Set("X-Message-Id", "ms-42")
	fake := &fakeMailerSend{res: &mailersend.Response{Response: &http.Response{
		StatusCode: http.StatusAccepted,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader("")),
	}}}
	s := mailer.NewMailerSendSenderWithAPI(fake)

	id, err := s.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, "ms-42", id)
	assert.NotNil(t, fake.sent)
}

func TestMailerSendSender_StatusError(t *testing.T) {
	fake := &fakeMailerSend{res: &mailersend.Response{Response: &http.Response{
		StatusCode: http.StatusUnprocessableEntity,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(`{"message":"The from.email domain must be verified"}`)),
	}}}
	s := mailer.NewMailerSendSenderWithAPI(fake)

	_, err := s.Send(context.Background(), testMessage())
	require.Error(t, err)

	var he *hookerr.Error
	require.True(t, errors.As(err, &he))
	assert.Equal(t, hookerr.KindDelivery, he.Kind)
	assert.Equal(t, "HTTP422", he.Code)
}

func TestMailerSendSender_RequestError(t *testing.T) {
	s := mailer.NewMailerSendSenderWithAPI(&fakeMailerSend{err: errors.New("connection reset")})

	_, err := s.Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, hookerr.ErrDelivery)
}

func TestMailerSendSender_EmptyResponse(t *testing.T) {
	for _, res := range []*mailersend.Response{nil, {}} {
		s := mailer.NewMailerSendSenderWithAPI(&fakeMailerSend{res: res})

		id, err := s.Send(context.Background(), testMessage())
		assert.ErrorIs(t, err, hookerr.ErrDelivery)
		assert.Empty(t, id)
		var hookErr *hookerr.Error
		require.True(t, errors.As(err, &hookErr))
		assert.Equal(t, "MailerSendEmptyResponse", hookErr.Code)
	}
}

func TestLogSender_Send(t *testing.T) {
	id, err := mailer.NewLogSender(zap.NewNop()).Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "log-"))
}
