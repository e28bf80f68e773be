// internal/notify/notifier.go

// Package notify pushes needs-review routing decisions to the manual-review
// workflow: a JSON message on the review SNS topic for machine consumers,
// and an SES email to the review staff address.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	stderrors "marketplace-routing/internal/common/errors"
	"marketplace-routing/internal/common/logger"
	"marketplace-routing/internal/models"
	"marketplace-routing/internal/routing"
)

// SNSPublisher is the publish surface of the SNS client, narrowed for mocking.
type SNSPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// EmailSender is the send surface of the SES client, narrowed for mocking.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// Config holds the notifier destinations. Empty fields disable the
// corresponding delivery path.
type Config struct {
	ReviewTopicARN string
	ReviewEmail    string
	SenderEmail    string
}

// Notifier implements routing.ReviewNotifier.
type Notifier struct {
	config Config
	sns    SNSPublisher
	ses    EmailSender
	logger logger.Logger
}

// New creates a notifier. snsClient or sesClient may be nil when the
// corresponding path is disabled.
func New(cfg Config, snsClient SNSPublisher, sesClient EmailSender, log logger.Logger) *Notifier {
	return &Notifier{
		config: cfg,
		sns:    snsClient,
		ses:    sesClient,
		logger: log.WithFields(map[string]interface{}{"component": "review-notifier"}),
	}
}

type reviewMessage struct {
	ItemID      string            `json:"itemId"`
	SKU         string            `json:"sku,omitempty"`
	Title       string            `json:"title,omitempty"`
	Decision    *routing.Decision `json:"decision"`
	NotifiedAt  time.Time         `json:"notifiedAt"`
	MessageType string            `json:"messageType"`
}

// NotifyReview delivers the decision to all configured paths. Delivery is
// best effort per path; the first error is returned after every path has
// been attempted.
func (n *Notifier) NotifyReview(ctx context.Context, item *models.Item, d *routing.Decision) error {
	msg := reviewMessage{
		ItemID:      item.ID,
		SKU:         item.SKU,
		Title:       item.Title,
		Decision:    d,
		NotifiedAt:  time.Now().UTC(),
		MessageType: "routing.needs_review",
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return stderrors.NewNotificationSendError(err)
	}

	var firstErr error

	if n.sns != nil && n.config.ReviewTopicARN != "" {
		_, err := n.sns.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(n.config.ReviewTopicARN),
			Subject:  aws.String("Routing decision needs review"),
			Message:  aws.String(string(payload)),
		})
		if err != nil {
			n.logger.WithError(err).Warn("SNS publish failed", map[string]interface{}{"itemId": item.ID})
			firstErr = stderrors.NewNotificationSendError(err)
		}
	}

	if n.ses != nil && n.config.ReviewEmail != "" && n.config.SenderEmail != "" {
		subject := fmt.Sprintf("Review needed: item %s", item.ID)
		body := reviewEmailBody(item, d)
		_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
			Destination: &sestypes.Destination{
				ToAddresses: []string{n.config.ReviewEmail},
			},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
			Source: aws.String(n.config.SenderEmail),
		})
		if err != nil {
			n.logger.WithError(err).Warn("SES send failed", map[string]interface{}{"itemId": item.ID})
			if firstErr == nil {
				firstErr = stderrors.NewNotificationSendError(err)
			}
		}
	}

	return firstErr
}

func reviewEmailBody(item *models.Item, d *routing.Decision) string {
	if len(d.MissingRequiredFields) > 0 {
		return fmt.Sprintf(
			"Item %s (%s) could not be routed: missing required fields %v.\nPlease complete the record and re-route.",
			item.ID, item.Title, d.MissingRequiredFields,
		)
	}
	return fmt.Sprintf(
		"Item %s (%s) needs a routing review.\nScores: %v\nDisqualifications: %v",
		item.ID, item.Title, d.Scores, d.Disqualifications,
	)
}
