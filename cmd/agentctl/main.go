// Command agentctl runs the support request pipeline from a terminal.
//
// Usage:
//
//	go run ./cmd/agentctl --interactive [--memory-tickets] [--guardrail-id=ID --guardrail-version=N]
//
// Flags override the matching environment variables. Without --interactive the
// command prints how the pipeline was configured and exits.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/wolfman30/support-agent-router/cmd/mainconfig"
	"github.com/wolfman30/support-agent-router/internal/agent"
	"github.com/wolfman30/support-agent-router/internal/app/bootstrap"
	appconfig "github.com/wolfman30/support-agent-router/internal/config"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// gate is the subset of safety.Gate the loop needs.
type gate interface {
	Process(ctx context.Context, text, sessionID string) agent.Response
}

type options struct {
	interactive   bool
	memoryTickets bool
}

func main() {
	mainconfig.LoadEnv()
	cfg := appconfig.Load()

	opts, err := parseFlags(os.Args[1:], cfg, os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	// Logs go to stderr so they do not interleave with the conversation.
	logger := logging.NewWithWriter(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, os.Stdin, os.Stdout, logger); err != nil {
		logger.Error("agentctl failed", "error", err)
		os.Exit(1)
	}
}

// parseFlags applies command line overrides on top of the env-derived cfg.
// Flags left unset keep the environment value.
func parseFlags(args []string, cfg *appconfig.Config, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("agentctl", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var opts options
	fs.StringVar(&cfg.SupervisorAgentID, "supervisor-agent-id", cfg.SupervisorAgentID, "Bedrock agent ID for the supervisor")
	fs.StringVar(&cfg.SupervisorAgentAliasID, "supervisor-agent-alias-id", cfg.SupervisorAgentAliasID, "Bedrock agent alias ID for the supervisor")
	fs.StringVar(&cfg.BedrockModelID, "model-id", cfg.BedrockModelID, "Bedrock model ID used by the sub-agents")
	fs.StringVar(&cfg.AWSRegion, "region", cfg.AWSRegion, "AWS region")
	fs.StringVar(&cfg.KnowledgeBaseBucket, "s3-bucket", cfg.KnowledgeBaseBucket, "S3 bucket holding the knowledge base")
	fs.StringVar(&cfg.EmergencySNSTopicARN, "sns-topic-arn", cfg.EmergencySNSTopicARN, "SNS topic for emergency notifications")
	fs.StringVar(&cfg.GuardrailID, "guardrail-id", cfg.GuardrailID, "Bedrock guardrail ID")
	fs.StringVar(&cfg.GuardrailVersion, "guardrail-version", cfg.GuardrailVersion, "Bedrock guardrail version")
	fs.BoolVar(&cfg.LocalGuardEnabled, "local-guard", cfg.LocalGuardEnabled, "run the pattern filter in front of the Bedrock guardrail")
	fs.BoolVar(&opts.interactive, "interactive", false, "read requests from stdin")
	fs.BoolVar(&opts.memoryTickets, "memory-tickets", false, "keep tickets in memory instead of DynamoDB")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, cfg *appconfig.Config, opts options, in io.Reader, out io.Writer, logger *logging.Logger) error {
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	sys, err := bootstrap.BuildSystem(ctx, cfg, bootstrap.NewClients(awsCfg), bootstrap.Options{
		MemoryTickets: opts.memoryTickets,
	}, logger)
	if err != nil {
		return err
	}
	defer sys.Close()

	if !opts.interactive {
		printSummary(out, cfg, sys.Guardrail.Enabled())
		return nil
	}
	return repl(ctx, sys.Gate, in, out)
}

func printSummary(out io.Writer, cfg *appconfig.Config, guardrails bool) {
	fmt.Fprintln(out, "Support agent router initialized")
	fmt.Fprintf(out, "Supervisor Agent ID: %s\n", cfg.SupervisorAgentID)
	fmt.Fprintf(out, "Model ID: %s\n", cfg.BedrockModelID)
	fmt.Fprintf(out, "Region: %s\n", cfg.AWSRegion)
	fmt.Fprintf(out, "Guardrails enabled: %t\n", guardrails)
}

// repl sends each input line through g until exit, quit, EOF or ctx ends.
// The session id returned by one turn is passed to the next.
func repl(ctx context.Context, g gate, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Support agent router")
	fmt.Fprintln(out, "Type 'exit' to quit")
	fmt.Fprintln(out, strings.Repeat("-", 50))

	scanner := bufio.NewScanner(in)
	var sessionID string
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		case "":
			continue
		}

		resp := g.Process(ctx, line, sessionID)
		if resp.SessionID != "" {
			sessionID = resp.SessionID
		}
		render(out, resp)
	}
}

func render(out io.Writer, resp agent.Response) {
	fmt.Fprintf(out, "\nSystem: %s\n", displayText(resp))

	if len(resp.Actions) > 0 {
		fmt.Fprintln(out, "\nRecommended actions:")
		for i, action := range resp.Actions {
			fmt.Fprintf(out, "  %d. %s\n", i+1, action)
		}
	}
	if len(resp.Sources) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, source := range resp.Sources {
			fmt.Fprintf(out, "  - %s\n", source)
		}
	}
}

func displayText(resp agent.Response) string {
	switch {
	case resp.Message != nil:
		return *resp.Message
	case resp.Answer != nil:
		return *resp.Answer
	case resp.Reply != nil:
		return *resp.Reply
	}
	raw, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return resp.Error
	}
	return string(raw)
}
