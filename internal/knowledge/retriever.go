// Package knowledge answers questions from a document collection stored in S3.
package knowledge

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/wolfman30/support-agent-router/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxDocs caps how many documents a query returns.
const DefaultMaxDocs = 3

var documentExtensions = map[string]bool{".txt": true, ".md": true, ".json": true}

// S3API is the subset of the S3 client used by S3Retriever.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// DocumentMatch is a document that shares at least one term with the query.
type DocumentMatch struct {
	Content   string `json:"content"`
	Source    string `json:"source"`
	Relevance int    `json:"relevance"`
}

// RetrieverConfig locates the document collection.
type RetrieverConfig struct {
	Bucket  string
	Prefix  string
	MaxDocs int
}

// S3Retriever ranks documents under a prefix by keyword overlap with the query.
type S3Retriever struct {
	client S3API
	cfg    RetrieverConfig
	cache  BodyCache
	logger *logging.Logger
	tracer trace.Tracer
}

// NewS3Retriever builds a retriever. cache may be nil.
func NewS3Retriever(client S3API, cfg RetrieverConfig, cache BodyCache, logger *logging.Logger) *S3Retriever {
	if client == nil {
		panic("knowledge: s3 client cannot be nil")
	}
	if cfg.MaxDocs <= 0 {
		cfg.MaxDocs = DefaultMaxDocs
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Retriever{
		client: client,
		cfg:    cfg,
		cache:  cache,
		logger: logger,
		tracer: otel.Tracer("support-agent-router/knowledge"),
	}
}

// Retrieve returns matches ranked by relevance, ties kept in listing order.
// Listing stops once MaxDocs matches are collected. Store failures yield no matches.
func (r *S3Retriever) Retrieve(ctx context.Context, query string) []DocumentMatch {
	if r.cfg.Bucket == "" {
		r.logger.Warn("knowledge base bucket not configured")
		return nil
	}
	ctx, span := r.tracer.Start(ctx, "knowledge.retrieve", trace.WithAttributes(attribute.String("s3.prefix", r.cfg.Prefix)))
	defer span.End()

	queryTerms := terms(query)
	var matches []DocumentMatch

	pager := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.cfg.Bucket),
		Prefix: aws.String(r.cfg.Prefix),
	})
scan:
	for len(matches) < r.cfg.MaxDocs && pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			span.RecordError(err)
			r.logger.Error("failed to list knowledge base", "error", err, "bucket", r.cfg.Bucket)
			return nil
		}
		for _, obj := range page.Contents {
			if len(matches) >= r.cfg.MaxDocs {
				break scan
			}
			key := aws.ToString(obj.Key)
			if !documentExtensions[path.Ext(key)] {
				continue
			}
			body, err := r.body(ctx, key, aws.ToString(obj.ETag))
			if err != nil {
				span.RecordError(err)
				r.logger.Error("failed to fetch knowledge document", "error", err, "key", key)
				return nil
			}
			if overlap := relevance(queryTerms, body); overlap > 0 {
				matches = append(matches, DocumentMatch{Content: body, Source: key, Relevance: overlap})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Relevance > matches[j].Relevance
	})
	if len(matches) > r.cfg.MaxDocs {
		matches = matches[:r.cfg.MaxDocs]
	}
	span.SetAttributes(attribute.Int("knowledge.matches", len(matches)))
	return matches
}

func (r *S3Retriever) body(ctx context.Context, key, etag string) (string, error) {
	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, key, etag); ok {
			return string(cached), nil
		}
	}
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("knowledge: s3 get %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("knowledge: read %s: %w", key, err)
	}
	if r.cache != nil {
		r.cache.Set(ctx, key, etag, data)
	}
	return string(data), nil
}

func terms(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func relevance(queryTerms map[string]struct{}, content string) int {
	overlap := 0
	for term := range terms(content) {
		if _, ok := queryTerms[term]; ok {
			overlap++
		}
	}
	return overlap
}
