package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type fakeConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (f *fakeConverse) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = params
	return f.out, f.err
}

func textOutput(parts ...string) *bedrockruntime.ConverseOutput {
	blocks := make([]brtypes.ContentBlock, 0, len(parts))
	for _, p := range parts {
		blocks = append(blocks, &brtypes.ContentBlockMemberText{Value: p})
	}
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: blocks,
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage: &brtypes.TokenUsage{
			InputTokens:  aws.Int32(10),
			OutputTokens: aws.Int32(5),
			TotalTokens:  aws.Int32(15),
		},
	}
}

func TestBedrockClientComplete(t *testing.T) {
	api := &fakeConverse{out: textOutput("  hello ", "world  ")}
	client := NewBedrockClient(api)

	resp, err := client.Complete(context.Background(), UserPrompt("model-x", "say hi", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello world" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.Usage.TotalTokens != 15 || resp.StopReason != "end_turn" {
		t.Fatalf("unexpected usage/stop: %+v %q", resp.Usage, resp.StopReason)
	}
	if got := aws.ToString(api.input.ModelId); got != "model-x" {
		t.Fatalf("expected model id forwarded, got %q", got)
	}
	if api.input.InferenceConfig == nil || aws.ToInt32(api.input.InferenceConfig.MaxTokens) != DefaultMaxTokens {
		t.Fatalf("expected default max tokens, got %+v", api.input.InferenceConfig)
	}
	if api.input.InferenceConfig.Temperature != nil {
		t.Fatalf("expected temperature omitted")
	}
	if len(api.input.Messages) != 1 || api.input.Messages[0].Role != brtypes.ConversationRoleUser {
		t.Fatalf("expected single user message, got %+v", api.input.Messages)
	}
}

func TestBedrockClientSystemMessagesMoveToSystemBlocks(t *testing.T) {
	api := &fakeConverse{out: textOutput("ok")}
	client := NewBedrockClient(api)

	_, err := client.Complete(context.Background(), Request{
		Model: "m",
		Messages: []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
			{Role: RoleUser, Content: "  "},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.input.System) != 1 {
		t.Fatalf("expected one system block, got %d", len(api.input.System))
	}
	if len(api.input.Messages) != 2 {
		t.Fatalf("expected blank message skipped, got %d messages", len(api.input.Messages))
	}
}

func TestBedrockClientErrors(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeConverse
		req  Request
		want string
	}{
		{name: "missing model", api: &fakeConverse{}, req: UserPrompt("", "hi", 10), want: "model id is required"},
		{name: "bad role", api: &fakeConverse{}, req: Request{Model: "m", Messages: []Message{{Role: "tool", Content: "x"}}}, want: "unsupported role"},
		{name: "transport", api: &fakeConverse{err: errors.New("throttled")}, req: UserPrompt("m", "hi", 10), want: "throttled"},
		{name: "no text", api: &fakeConverse{out: textOutput("   ")}, req: UserPrompt("m", "hi", 10), want: "no text content"},
		{name: "nil output", api: &fakeConverse{}, req: UserPrompt("m", "hi", 10), want: "response is nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBedrockClient(tt.api).Complete(context.Background(), tt.req)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestNewBedrockClientPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewBedrockClient(nil)
}
