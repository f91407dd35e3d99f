// Command seed-knowledge uploads FAQ documents into the knowledge base bucket.
//
// Usage:
//
//	KNOWLEDGE_BASE_S3_BUCKET=support-kb go run ./scripts/seed-knowledge testdata/sample-knowledge.json
//
// AWS_ENDPOINT_OVERRIDE=http://localhost:4566 targets LocalStack.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/wolfman30/support-agent-router/cmd/mainconfig"
	"github.com/wolfman30/support-agent-router/internal/app/bootstrap"
	appconfig "github.com/wolfman30/support-agent-router/internal/config"
)

type KnowledgeFile struct {
	Documents []Document `json:"documents"`
}

type Document struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/seed-knowledge <knowledge-file.json>")
		fmt.Println("Example: go run ./scripts/seed-knowledge testdata/sample-knowledge.json")
		os.Exit(1)
	}

	mainconfig.LoadEnv()
	cfg := appconfig.Load()
	if cfg.KnowledgeBaseBucket == "" {
		fmt.Println("❌ KNOWLEDGE_BASE_S3_BUCKET is not set")
		os.Exit(1)
	}

	fmt.Printf("🌱 Seeding Knowledge Base\n")
	fmt.Printf("============================\n")
	fmt.Printf("Bucket: s3://%s/%s\n", cfg.KnowledgeBaseBucket, cfg.KnowledgeBasePrefix)
	fmt.Printf("Knowledge file: %s\n\n", os.Args[1])

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("❌ Error reading file: %v\n", err)
		os.Exit(1)
	}
	var knowledge KnowledgeFile
	if err := json.Unmarshal(data, &knowledge); err != nil {
		fmt.Printf("❌ Error parsing JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Documents to upload: %d\n\n", len(knowledge.Documents))

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		fmt.Printf("❌ Error loading AWS config: %v\n", err)
		os.Exit(1)
	}

	uploaded, failed := seed(ctx, bootstrap.NewClients(awsCfg).S3, cfg.KnowledgeBaseBucket, cfg.KnowledgeBasePrefix, knowledge.Documents)
	fmt.Printf("\n✅ Uploaded %d documents (%d failed)\n", uploaded, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// seed writes one markdown object per document and reports how many succeeded.
func seed(ctx context.Context, client objectPutter, bucket, prefix string, docs []Document) (uploaded, failed int) {
	for _, doc := range docs {
		key := objectKey(prefix, doc)
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        strings.NewReader(render(doc)),
			ContentType: aws.String("text/markdown"),
		})
		if err != nil {
			fmt.Printf("   ❌ %s: %v\n", key, err)
			failed++
			continue
		}
		fmt.Printf("   ✅ %s\n", key)
		uploaded++
	}
	return uploaded, failed
}

func objectKey(prefix string, doc Document) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(doc.Title), "-"), "-")
	if slug == "" {
		slug = "untitled"
	}
	if c := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(doc.Category), "-"), "-"); c != "" {
		slug = c + "/" + slug
	}
	return prefix + slug + ".md"
}

// render keeps the title in the body so keyword matching sees it.
func render(doc Document) string {
	return fmt.Sprintf("# %s\n\n%s\n", strings.TrimSpace(doc.Title), strings.TrimSpace(doc.Content))
}
