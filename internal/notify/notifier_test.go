// internal/notify/notifier_test.go
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "marketplace-routing/internal/common/errors"
	"marketplace-routing/internal/common/logger"
	"marketplace-routing/internal/models"
	"marketplace-routing/internal/routing"
)

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, input)
	return &sns.PublishOutput{}, m.err
}

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, input)
	return &ses.SendEmailOutput{}, m.err
}

func testNotifierConfig() Config {
	return Config{
		ReviewTopicARN: "arn:aws:sns:us-east-1:123456789012:routing-review",
		ReviewEmail:    "review@example.com",
		SenderEmail:    "noreply@example.com",
	}
}

func reviewDecision() *routing.Decision {
	return &routing.Decision{
		Primary:     routing.ChannelEbay,
		Secondary:   routing.ChannelAmazon,
		NeedsReview: true,
		Scores: map[routing.Channel]int{
			routing.ChannelEbay:   70,
			routing.ChannelAmazon: 68,
		},
	}
}

func TestNotifyReview_PublishesBothPaths(t *testing.T) {
	snsMock := &mockSNS{}
	sesMock := &mockSES{}
	n := New(testNotifierConfig(), snsMock, sesMock, logger.NewTestLogger(t))

	item := &models.Item{ID: "item-1", SKU: "SKU-1", Title: "Widget"}
	err := n.NotifyReview(context.Background(), item, reviewDecision())
	require.NoError(t, err)

	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:routing-review", *snsMock.inputs[0].TopicArn)

	var msg reviewMessage
	require.NoError(t, json.Unmarshal([]byte(*snsMock.inputs[0].Message), &msg))
	assert.Equal(t, "item-1", msg.ItemID)
	assert.Equal(t, "routing.needs_review", msg.MessageType)
	require.NotNil(t, msg.Decision)
	assert.True(t, msg.Decision.NeedsReview)

	require.Len(t, sesMock.inputs, 1)
	assert.Equal(t, []string{"review@example.com"}, sesMock.inputs[0].Destination.ToAddresses)
	assert.Equal(t, "noreply@example.com", *sesMock.inputs[0].Source)
	assert.Contains(t, *sesMock.inputs[0].Message.Body.Text.Data, "item-1")
}

func TestNotifyReview_MissingFieldsEmailAsksForCompletion(t *testing.T) {
	sesMock := &mockSES{}
	n := New(testNotifierConfig(), nil, sesMock, logger.NewTestLogger(t))

	item := &models.Item{ID: "item-2", Title: "Mystery Box"}
	d := &routing.Decision{NeedsReview: true, MissingRequiredFields: []string{"brandTier", "condition"}}
	require.NoError(t, n.NotifyReview(context.Background(), item, d))

	require.Len(t, sesMock.inputs, 1)
	body := *sesMock.inputs[0].Message.Body.Text.Data
	assert.Contains(t, body, "missing required fields")
	assert.Contains(t, body, "brandTier")
}

func TestNotifyReview_SNSFailureStillSendsEmail(t *testing.T) {
	snsMock := &mockSNS{err: errors.New("topic gone")}
	sesMock := &mockSES{}
	n := New(testNotifierConfig(), snsMock, sesMock, logger.NewTestLogger(t))

	err := n.NotifyReview(context.Background(), &models.Item{ID: "item-3"}, reviewDecision())
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeNotificationSendFailed, stderrors.CodeOf(err))
	// The email path still ran.
	assert.Len(t, sesMock.inputs, 1)
}

func TestNotifyReview_DisabledPathsAreSkipped(t *testing.T) {
	snsMock := &mockSNS{}
	sesMock := &mockSES{}
	n := New(Config{}, snsMock, sesMock, logger.NewTestLogger(t))

	require.NoError(t, n.NotifyReview(context.Background(), &models.Item{ID: "item-4"}, reviewDecision()))
	assert.Empty(t, snsMock.inputs)
	assert.Empty(t, sesMock.inputs)
}
