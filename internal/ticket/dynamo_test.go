package ticket

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type mockDynamo struct {
	putInput     *dynamodb.PutItemInput
	updateInputs []*dynamodb.UpdateItemInput
	getOutput    *dynamodb.GetItemOutput
	putErr       error
	updateErr    error
	getErr       error
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = in
	return &dynamodb.PutItemOutput{}, m.putErr
}

func (m *mockDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, in)
	return &dynamodb.UpdateItemOutput{}, m.updateErr
}

func (m *mockDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.getOutput, nil
}

func TestDynamoStore_PutPreventsOverwrite(t *testing.T) {
	mock := &mockDynamo{}
	store := NewDynamoStore(mock, "Ticket-DB")

	tk := &Ticket{TicketID: "t-1", Subject: "Printer", Status: StatusOpen, Priority: PriorityHigh}
	if err := store.Put(context.Background(), tk); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if mock.putInput == nil {
		t.Fatal("expected PutItem to be called")
	}
	if got := aws.ToString(mock.putInput.TableName); got != "Ticket-DB" {
		t.Fatalf("unexpected table %q", got)
	}
	if expr := aws.ToString(mock.putInput.ConditionExpression); expr != "attribute_not_exists(ticket_id)" {
		t.Fatalf("expected overwrite guard, got %q", expr)
	}
	var stored Ticket
	if err := attributevalue.UnmarshalMap(mock.putInput.Item, &stored); err != nil {
		t.Fatalf("failed to unmarshal stored ticket: %v", err)
	}
	if stored != *tk {
		t.Fatalf("stored ticket mismatch: %+v", stored)
	}
	if _, ok := mock.putInput.Item["assigned_to"]; ok {
		t.Fatal("expected empty assigned_to to be omitted")
	}
}

func TestDynamoStore_GetNotFound(t *testing.T) {
	store := NewDynamoStore(&mockDynamo{}, "Ticket-DB")
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDynamoStore_GetDecodes(t *testing.T) {
	item, err := attributevalue.MarshalMap(Ticket{TicketID: "t-2", Subject: "VPN", Status: StatusOpen})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	store := NewDynamoStore(&mockDynamo{getOutput: &dynamodb.GetItemOutput{Item: item}}, "Ticket-DB")
	got, err := store.Get(context.Background(), "t-2")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Subject != "VPN" || got.Status != StatusOpen {
		t.Fatalf("unexpected ticket %+v", got)
	}
}

func TestDynamoStore_CancelUsesReservedAttributeAlias(t *testing.T) {
	mock := &mockDynamo{}
	store := NewDynamoStore(mock, "Ticket-DB")
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Cancel(context.Background(), "t-1", "duplicate", at); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if len(mock.updateInputs) != 1 {
		t.Fatalf("expected 1 update call, got %d", len(mock.updateInputs))
	}
	update := mock.updateInputs[0]
	if update.ExpressionAttributeNames["#status"] != "status" {
		t.Fatalf("expected status alias, got %v", update.ExpressionAttributeNames)
	}
	expr := aws.ToString(update.UpdateExpression)
	if !strings.Contains(expr, "#status = :status") || !strings.Contains(expr, "cancellation_reason = :reason") {
		t.Fatalf("unexpected update expression %q", expr)
	}
	if got := update.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS).Value; got != "cancelled" {
		t.Fatalf("expected cancelled status, got %s", got)
	}
	if got := update.ExpressionAttributeValues[":updated"].(*types.AttributeValueMemberS).Value; got != "2024-03-01T12:00:00Z" {
		t.Fatalf("unexpected updated_at %s", got)
	}
	if aws.ToString(update.ConditionExpression) != "attribute_exists(ticket_id)" {
		t.Fatalf("expected existence condition, got %v", update.ConditionExpression)
	}
}

func TestDynamoStore_CancelWithoutReasonLeavesReasonUntouched(t *testing.T) {
	mock := &mockDynamo{}
	store := NewDynamoStore(mock, "Ticket-DB")
	if err := store.Cancel(context.Background(), "t-1", "", time.Now()); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	update := mock.updateInputs[0]
	if strings.Contains(aws.ToString(update.UpdateExpression), "cancellation_reason") {
		t.Fatalf("expected no reason update, got %q", aws.ToString(update.UpdateExpression))
	}
	if _, ok := update.ExpressionAttributeValues[":reason"]; ok {
		t.Fatal("expected no :reason value")
	}
}

func TestDynamoStore_CancelMissingTicket(t *testing.T) {
	mock := &mockDynamo{updateErr: &types.ConditionalCheckFailedException{Message: aws.String("nope")}}
	store := NewDynamoStore(mock, "Ticket-DB")
	if err := store.Cancel(context.Background(), "missing", "", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDynamoStore_CancelPropagatesStoreErrors(t *testing.T) {
	mock := &mockDynamo{updateErr: errors.New("throttled")}
	store := NewDynamoStore(mock, "Ticket-DB")
	err := store.Cancel(context.Background(), "t-1", "", time.Now())
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestNewDynamoStorePanicsOnMissingTable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewDynamoStore(&mockDynamo{}, " ")
}
