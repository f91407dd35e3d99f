package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var storeTracer = otel.Tracer("support-agent-router/ticket")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoStore persists tickets in a DynamoDB table keyed by ticket_id.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client dynamoAPI, tableName string) *DynamoStore {
	if client == nil {
		panic("ticket: dynamodb client cannot be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		panic("ticket: table name cannot be empty")
	}
	return &DynamoStore{client: client, tableName: tableName}
}

// Put writes a new ticket record.
func (s *DynamoStore) Put(ctx context.Context, t *Ticket) error {
	if t == nil {
		return errors.New("ticket: ticket cannot be nil")
	}
	ctx, span := storeTracer.Start(ctx, "ticket.put", trace.WithAttributes(attribute.String("ticket.id", t.TicketID)))
	defer span.End()

	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("ticket: marshal ticket: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(ticket_id)"),
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("ticket: persist ticket: %w", err)
	}
	return nil
}

// Get fetches a ticket by id.
func (s *DynamoStore) Get(ctx context.Context, ticketID string) (*Ticket, error) {
	if ticketID == "" {
		return nil, errors.New("ticket: ticket id required")
	}
	ctx, span := storeTracer.Start(ctx, "ticket.get", trace.WithAttributes(attribute.String("ticket.id", ticketID)))
	defer span.End()

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       keyFor(ticketID),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("ticket: fetch ticket: %w", err)
	}
	if out == nil || out.Item == nil {
		return nil, ErrNotFound
	}
	var t Ticket
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("ticket: decode ticket: %w", err)
	}
	return &t, nil
}

// Cancel marks an existing ticket cancelled. The update is conditional on the
// item existing so an unknown id surfaces as ErrNotFound instead of creating a stub item.
func (s *DynamoStore) Cancel(ctx context.Context, ticketID, reason string, at time.Time) error {
	if ticketID == "" {
		return errors.New("ticket: ticket id required")
	}
	ctx, span := storeTracer.Start(ctx, "ticket.cancel", trace.WithAttributes(attribute.String("ticket.id", ticketID)))
	defer span.End()

	update := "SET #status = :status, updated_at = :updated"
	values := map[string]types.AttributeValue{
		":status":  &types.AttributeValueMemberS{Value: string(StatusCancelled)},
		":updated": &types.AttributeValueMemberS{Value: timestamp(at)},
	}
	if reason != "" {
		update += ", cancellation_reason = :reason"
		values[":reason"] = &types.AttributeValueMemberS{Value: reason}
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       keyFor(ticketID),
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String("attribute_exists(ticket_id)"),
		ExpressionAttributeNames:  map[string]string{"#status": "status"},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		span.RecordError(err)
		return fmt.Errorf("ticket: cancel ticket: %w", err)
	}
	return nil
}

func keyFor(ticketID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"ticket_id": &types.AttributeValueMemberS{Value: ticketID},
	}
}
