package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Clients holds the AWS service clients the pipeline talks to.
type Clients struct {
	Bedrock  *bedrockruntime.Client
	Agents   *bedrockagentruntime.Client
	DynamoDB *dynamodb.Client
	S3       *s3.Client
	SNS      *sns.Client
	SES      *sesv2.Client
	SQS      *sqs.Client
}

// NewClients builds every service client from one shared AWS config.
func NewClients(awsCfg aws.Config) Clients {
	return Clients{
		Bedrock:  bedrockruntime.NewFromConfig(awsCfg),
		Agents:   bedrockagentruntime.NewFromConfig(awsCfg),
		DynamoDB: dynamodb.NewFromConfig(awsCfg),
		S3: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			// LocalStack serves buckets on the path, not a subdomain.
			o.UsePathStyle = awsCfg.BaseEndpoint != nil
		}),
		SNS: sns.NewFromConfig(awsCfg),
		SES: sesv2.NewFromConfig(awsCfg),
		SQS: sqs.NewFromConfig(awsCfg),
	}
}
