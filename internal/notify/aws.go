// internal/notify/aws.go
package notify

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// snsTopicPublisher adapts the SDK client to the SNSPublisher surface.
type snsTopicPublisher struct {
	client *sns.Client
}

func (p *snsTopicPublisher) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	return p.client.Publish(ctx, input)
}

// NewSNSPublisher builds the review-topic publisher from the ambient AWS
// credential chain.
func NewSNSPublisher(ctx context.Context, region string) (SNSPublisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &snsTopicPublisher{client: sns.NewFromConfig(cfg)}, nil
}

// sesEmailSender adapts the SDK client to the EmailSender surface.
type sesEmailSender struct {
	client *ses.Client
}

func (s *sesEmailSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}

// NewEmailSender builds the reviewer email sender from the ambient AWS
// credential chain.
func NewEmailSender(ctx context.Context, region string) (EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &sesEmailSender{client: ses.NewFromConfig(cfg)}, nil
}
