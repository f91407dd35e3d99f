package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultModelID is the Bedrock model used for the sub-agents when none is configured.
const DefaultModelID = "anthropic.claude-3-sonnet-20240229-v1:0"

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Bedrock model used by the intent classifier, emergency evaluator and FAQ synthesizer.
	BedrockModelID string
	LLMMaxTokens   int

	// Supervisor agent (Bedrock Agents) that produces routing decisions.
	SupervisorAgentID      string
	SupervisorAgentAliasID string

	// Ticket persistence
	TicketTable   string
	DefaultUserID string

	// Knowledge base documents
	KnowledgeBaseBucket  string
	KnowledgeBasePrefix  string
	KnowledgeBaseMaxDocs int
	DocumentCacheTTL     time.Duration

	// Emergency escalation
	EmergencySNSTopicARN string
	EmergencyEmailTo     string
	EmailProvider        string
	EmailFrom            string
	EmailFromName        string
	SendGridAPIKey       string

	// Content filtering. Guardrails are disabled unless both id and version are set.
	GuardrailID       string
	GuardrailVersion  string
	LocalGuardEnabled bool

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AuditQueueURL string

	// Per-client limit on /v1 routes; zero disables it.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		BedrockModelID: getEnv("BEDROCK_MODEL_ID", DefaultModelID),
		LLMMaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 1000),

		SupervisorAgentID:      getEnv("SUPERVISOR_AGENT_ID", ""),
		SupervisorAgentAliasID: getEnv("SUPERVISOR_AGENT_ALIAS_ID", ""),

		TicketTable:   getEnv("TICKET_TABLE", "Ticket-DB"),
		DefaultUserID: getEnv("DEFAULT_USER_ID", "anonymous"),

		KnowledgeBaseBucket:  getEnv("KNOWLEDGE_BASE_S3_BUCKET", ""),
		KnowledgeBasePrefix:  getEnv("KNOWLEDGE_BASE_S3_PREFIX", "knowledge_base/"),
		KnowledgeBaseMaxDocs: getEnvAsInt("KNOWLEDGE_BASE_MAX_DOCS", 3),
		DocumentCacheTTL:     getEnvAsDuration("DOCUMENT_CACHE_TTL", 15*time.Minute),

		EmergencySNSTopicARN: getEnv("EMERGENCY_SNS_TOPIC_ARN", ""),
		EmergencyEmailTo:     getEnv("EMERGENCY_EMAIL_TO", ""),
		EmailProvider:        strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "ses"))),
		EmailFrom:            getEnv("EMAIL_FROM", ""),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", "Support Desk"),
		SendGridAPIKey:       getEnv("SENDGRID_API_KEY", ""),

		GuardrailID:       getEnv("BEDROCK_GUARDRAIL_ID", ""),
		GuardrailVersion:  getEnv("BEDROCK_GUARDRAIL_VERSION", ""),
		LocalGuardEnabled: getEnvAsBool("LOCAL_GUARD_ENABLED", false),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AuditQueueURL: getEnv("AUDIT_QUEUE_URL", ""),

		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
	}
}

// GuardrailsEnabled reports whether a Bedrock guardrail policy is configured.
func (c *Config) GuardrailsEnabled() bool {
	return strings.TrimSpace(c.GuardrailID) != "" && strings.TrimSpace(c.GuardrailVersion) != ""
}

// Validate reports missing identifiers for collaborators the pipeline cannot run without.
// Optional collaborators (guardrails, SNS topic, email, redis, audit queue) are not checked.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SupervisorAgentID) == "" {
		errs = append(errs, errors.New("SUPERVISOR_AGENT_ID is required"))
	}
	if strings.TrimSpace(c.SupervisorAgentAliasID) == "" {
		errs = append(errs, errors.New("SUPERVISOR_AGENT_ALIAS_ID is required"))
	}
	if strings.TrimSpace(c.BedrockModelID) == "" {
		errs = append(errs, errors.New("BEDROCK_MODEL_ID is required"))
	}
	if strings.TrimSpace(c.TicketTable) == "" {
		errs = append(errs, errors.New("TICKET_TABLE is required"))
	}
	if c.KnowledgeBaseMaxDocs <= 0 {
		errs = append(errs, fmt.Errorf("KNOWLEDGE_BASE_MAX_DOCS must be positive, got %d", c.KnowledgeBaseMaxDocs))
	}
	switch c.EmailProvider {
	case "ses", "sendgrid":
	default:
		errs = append(errs, fmt.Errorf("EMAIL_PROVIDER must be ses or sendgrid, got %q", c.EmailProvider))
	}
	return errors.Join(errs...)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
