package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	appconfig "github.com/wolfman30/support-agent-router/internal/config"
	"github.com/wolfman30/support-agent-router/internal/guardrail"
	"github.com/wolfman30/support-agent-router/internal/notify"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DialTimeout: 2 * time.Second,
		ReadTimeout: time.Second,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, document cache disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildFilter returns the content filter for the safety gate and the Bedrock
// guardrail inside it. With LOCAL_GUARD_ENABLED the pattern guard runs first.
func BuildFilter(cfg *appconfig.Config, clients Clients, logger *logging.Logger) (guardrail.Filter, *guardrail.BedrockFilter) {
	bedrock := guardrail.NewBedrockFilter(clients.Bedrock, cfg.GuardrailID, cfg.GuardrailVersion, logger.Component("guardrail"))
	if !cfg.LocalGuardEnabled {
		return bedrock, bedrock
	}
	return guardrail.NewChain(logger, guardrail.NewPatternFilter(), bedrock), bedrock
}

// BuildNotifier returns nil when no escalation topic is configured. An
// EMERGENCY_EMAIL_TO address adds an email copy of each alert.
func BuildNotifier(cfg *appconfig.Config, clients Clients, logger *logging.Logger) notify.Notifier {
	if strings.TrimSpace(cfg.EmergencySNSTopicARN) == "" {
		return nil
	}
	var publisher notify.Notifier = notify.NewSNSPublisher(clients.SNS, logger)
	sender := buildEmailSender(cfg, clients, logger)
	if sender == nil {
		return publisher
	}
	return notify.NewEmailNotifier(publisher, sender, cfg.EmergencyEmailTo, logger)
}

func buildEmailSender(cfg *appconfig.Config, clients Clients, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s
		}
	default:
		if clients.SES == nil {
			return nil
		}
		if s := notify.NewSESSender(clients.SES, notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s
		}
	}
	return nil
}
