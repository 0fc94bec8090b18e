package publishers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samvad-hq/samvad-feed-loader/internal/logger"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
  - id: topic
    type: sns
    sns:
      region: us-east-1
      topic_arn: arn:aws:sns:us-east-1:123456789012:feed
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "http2" || enabled[1].ID != "topic" {
		t.Fatalf("unexpected enabled publishers %#v", enabled)
	}
	http2 := enabled[0]
	if http2.HTTP.Method != "POST" || http2.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %#v", http2.HTTP)
	}
	topic := enabled[1]
	if topic.SNS.Region != "us-east-1" {
		t.Fatalf("inline aws config not decoded: %#v", topic.SNS)
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing http":     {ID: "h1", Type: TypeHTTP},
		"missing sqs uri":  {ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{AWSConfig: AWSConfig{Region: "eu-west-1"}}},
		"missing region":   {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn"}},
		"half credentials": {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn", AWSConfig: AWSConfig{Region: "r", AccessKeyID: "k"}}},
		"missing topic":    {ID: "g", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubPublisherConfig{ProjectID: "p"}},
		"missing type":     {ID: "x"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := validatePublisherConfig(cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	pubs, err := BuildAll(context.Background(), DefaultRegistry(), []PublisherConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com", Method: "POST", TimeoutSeconds: 1}},
		{ID: "queue", Type: TypeSQS, SQS: &SQSPublisherConfig{
			QueueURL:  "https://sqs.eu-west-1.amazonaws.com/123456789012/feed",
			AWSConfig: AWSConfig{Region: "eu-west-1", AccessKeyID: "key", SecretAccessKey: "secret"},
		}},
	}, logger.NopLogger{})
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 2 || pubs[0].Type() != TypeHTTP || pubs[1].Type() != TypeSQS {
		t.Fatalf("unexpected publishers %#v", pubs)
	}
}

func TestBuildAllClosesBuiltPublishersOnFailure(t *testing.T) {
	built := &stubPublisher{id: "first", typ: "stub"}
	reg := NewRegistry(map[string]Builder{
		"stub": func(context.Context, PublisherConfig, logger.Logger) (Publisher, error) { return built, nil },
		"fail": func(context.Context, PublisherConfig, logger.Logger) (Publisher, error) {
			return nil, errors.New("broken")
		},
	})

	_, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "first", Type: "stub"},
		{ID: "second", Type: "fail"},
	}, nil)
	if err == nil {
		t.Fatalf("expected build error")
	}
	if !built.closed {
		t.Fatalf("expected already built publisher to be closed")
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	if _, err := DefaultRegistry().PublisherFor(context.Background(), PublisherConfig{ID: "x", Type: "kafka"}, nil); err == nil {
		t.Fatalf("expected unknown type error")
	}
}
