package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/wolfman30/support-agent-router/cmd/mainconfig"
	"github.com/wolfman30/support-agent-router/internal/agent"
	"github.com/wolfman30/support-agent-router/internal/app/bootstrap"
	appconfig "github.com/wolfman30/support-agent-router/internal/config"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// gate is the subset of safety.Gate the handler needs.
type gate interface {
	Process(ctx context.Context, text, sessionID string) agent.Response
}

type requestBody struct {
	Input     string `json:"input"`
	SessionID string `json:"session_id"`
}

// sessionEnvelope is returned when the pipeline reports a session id.
type sessionEnvelope struct {
	Response  agent.Response `json:"response"`
	SessionID string         `json:"session_id"`
}

func main() {
	mainconfig.LoadEnv()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	sys, err := bootstrap.BuildSystem(ctx, cfg, bootstrap.NewClients(awsCfg), bootstrap.Options{}, logger)
	if err != nil {
		logger.Error("failed to build request pipeline", "error", err)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, sys.Gate, evt)
	})
}

func handle(ctx context.Context, g gate, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}
	if path == "/health" || path == "/_health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid body"}), nil
	}

	var req requestBody
	if strings.TrimSpace(string(body)) != "" {
		if err := json.Unmarshal(body, &req); err != nil {
			return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid JSON body"}), nil
		}
	}
	if strings.TrimSpace(req.Input) == "" {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "No input provided"}), nil
	}

	resp := g.Process(ctx, req.Input, strings.TrimSpace(req.SessionID))
	if resp.SessionID == "" {
		return jsonResponse(http.StatusOK, resp), nil
	}
	sessionID := resp.SessionID
	resp.SessionID = ""
	return jsonResponse(http.StatusOK, sessionEnvelope{Response: resp, SessionID: sessionID}), nil
}

func jsonResponse(status int, payload any) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"content-type": "application/json"},
	}
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}
