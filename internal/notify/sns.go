package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes alerts to an SNS topic.
type SNSPublisher struct {
	client snsAPI
	logger *logging.Logger
}

var _ Notifier = (*SNSPublisher)(nil)

func NewSNSPublisher(client snsAPI, logger *logging.Logger) *SNSPublisher {
	if client == nil {
		panic("notify: sns client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SNSPublisher{client: client, logger: logger}
}

func (p *SNSPublisher) Publish(ctx context.Context, topic, subject, body string) error {
	if topic == "" {
		return errors.New("notify: topic arn required")
	}
	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topic),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("notify: sns publish: %w", err)
	}
	p.logger.Info("alert published", "topic", topic, "message_id", aws.ToString(out.MessageId))
	return nil
}
