package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/support-agent-router/internal/audit"
	appconfig "github.com/wolfman30/support-agent-router/internal/config"
	"github.com/wolfman30/support-agent-router/internal/emergency"
	"github.com/wolfman30/support-agent-router/internal/guardrail"
	"github.com/wolfman30/support-agent-router/internal/intent"
	"github.com/wolfman30/support-agent-router/internal/knowledge"
	"github.com/wolfman30/support-agent-router/internal/llm"
	"github.com/wolfman30/support-agent-router/internal/observability/metrics"
	"github.com/wolfman30/support-agent-router/internal/router"
	"github.com/wolfman30/support-agent-router/internal/safety"
	"github.com/wolfman30/support-agent-router/internal/supervisor"
	"github.com/wolfman30/support-agent-router/internal/ticket"
	"github.com/wolfman30/support-agent-router/internal/ticketing"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// Options adjusts how BuildSystem wires optional pieces.
type Options struct {
	// MemoryTickets keeps tickets in process instead of DynamoDB.
	MemoryTickets bool
	// Registerer receives the pipeline metrics; nil uses the default registry.
	Registerer prometheus.Registerer
}

// System is the fully wired request pipeline.
type System struct {
	Gate      *safety.Gate
	Router    *router.Router
	Tickets   *ticket.Service
	Audit     *audit.Publisher
	Guardrail *guardrail.BedrockFilter
	Metrics   *metrics.RouterMetrics
	Redis     *redis.Client
}

// Close releases connections held by the system.
func (s *System) Close() error {
	if s == nil || s.Redis == nil {
		return nil
	}
	return s.Redis.Close()
}

// BuildSystem validates cfg and wires the gate, router and every handler.
func BuildSystem(ctx context.Context, cfg *appconfig.Config, clients Clients, opts Options, logger *logging.Logger) (*System, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bootstrap: invalid config: %w", err)
	}
	if logger == nil {
		logger = logging.Default()
	}

	m := metrics.NewRouterMetrics(opts.Registerer)
	model := llm.NewBedrockClient(clients.Bedrock)
	maxTokens := int32(cfg.LLMMaxTokens)

	var store ticket.Store
	if opts.MemoryTickets {
		logger.Warn("using in-memory ticket store; tickets are lost on exit")
		store = ticket.NewMemoryStore()
	} else {
		store = ticket.NewDynamoStore(clients.DynamoDB, cfg.TicketTable)
	}
	tickets := ticket.NewService(store, logger.Component("ticket"))

	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	var cache knowledge.BodyCache
	if redisClient != nil {
		cache = knowledge.NewRedisCache(redisClient, cfg.DocumentCacheTTL, logger.Component("knowledge"))
	}
	if cfg.KnowledgeBaseBucket == "" {
		logger.Warn("knowledge base bucket not configured; faq answers will report no documents")
	}
	retriever := knowledge.NewS3Retriever(clients.S3, knowledge.RetrieverConfig{
		Bucket:  cfg.KnowledgeBaseBucket,
		Prefix:  cfg.KnowledgeBasePrefix,
		MaxDocs: cfg.KnowledgeBaseMaxDocs,
	}, cache, logger.Component("knowledge"))

	evaluator := emergency.NewEvaluator(model, BuildNotifier(cfg, clients, logger.Component("notify")), emergency.Config{
		Model:     cfg.BedrockModelID,
		MaxTokens: maxTokens,
		TopicARN:  cfg.EmergencySNSTopicARN,
	}, m, logger.Component("emergency"))

	classifier := intent.NewClassifier(model, cfg.BedrockModelID, maxTokens, logger.Component("intent"))

	rt := router.New(router.Handlers{
		Supervisor: supervisor.NewBedrockAgentClient(clients.Agents, cfg.SupervisorAgentID, cfg.SupervisorAgentAliasID, logger.Component("supervisor")),
		Emergency:  evaluator,
		Tickets:    ticketing.NewAgent(classifier, tickets, cfg.DefaultUserID, logger.Component("ticketing")),
		FAQ:        knowledge.NewSynthesizer(retriever, model, cfg.BedrockModelID, maxTokens, logger.Component("faq")),
	}, m, logger.Component("router"))

	filter, bedrockFilter := BuildFilter(cfg, clients, logger)
	logger.Info("content filter configured",
		"bedrock_guardrail_enabled", bedrockFilter.Enabled(),
		"local_guard_enabled", cfg.LocalGuardEnabled,
	)

	var auditPublisher *audit.Publisher
	if cfg.AuditQueueURL != "" {
		auditPublisher = audit.NewPublisher(audit.NewSQSQueue(clients.SQS, cfg.AuditQueueURL), logger.Component("audit"))
	}

	return &System{
		Gate:      safety.NewGate(rt, filter, m, logger.Component("safety")),
		Router:    rt,
		Tickets:   tickets,
		Audit:     auditPublisher,
		Guardrail: bedrockFilter,
		Metrics:   m,
		Redis:     redisClient,
	}, nil
}
