package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/rs/zerolog"
)

// snsAPI is the part of the SNS client used for publishing.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type snsPublisher struct {
	client   snsAPI
	topicARN string
	logger   zerolog.Logger
}

// NewSNSPublisher creates a publisher that sends events to an SNS topic.
func NewSNSPublisher(ctx context.Context, region, topicARN string, logger zerolog.Logger) (Publisher, error) {
	logger = logger.With().Str("component", "sns-publisher").Logger()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().Str("topic_arn", topicARN).Msg("SNS publisher initialised")

	return newSNSPublisher(sns.NewFromConfig(cfg), topicARN, logger), nil
}

func newSNSPublisher(client snsAPI, topicARN string, logger zerolog.Logger) *snsPublisher {
	return &snsPublisher{client: client, topicARN: topicARN, logger: logger}
}

func (p *snsPublisher) Publish(ctx context.Context, event PaymentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Type),
			},
		},
	})
	if err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("failed to publish event to SNS")
		return fmt.Errorf("failed to publish event to SNS: %w", err)
	}
	return nil
}

func (p *snsPublisher) Close() error { return nil }
