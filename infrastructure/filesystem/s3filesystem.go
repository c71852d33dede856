package filesystem

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Bucket stores and reads objects of one S3 bucket.
type Bucket struct {
	client        *s3.Client
	name          string
	region        string
	publicBaseURL string
}

func NewBucket(ctx context.Context, name, region, publicBaseURL string) (*Bucket, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &Bucket{
		client:        s3.NewFromConfig(cfg),
		name:          name,
		region:        cfg.Region,
		publicBaseURL: publicBaseURL,
	}, nil
}

func (b *Bucket) Name() string {
	return b.name
}

// Upload stores body at key and returns the public URL of the object.
func (b *Bucket) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	// PutObject needs a seekable body to sign the payload
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload %s: %w", key, err)
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(b.name),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := b.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to put object %s into bucket %s: %w", key, b.name, err)
	}
	return b.URL(key), nil
}

func (b *Bucket) URL(key string) string {
	return ObjectURL(b.name, b.region, b.publicBaseURL, key)
}

// ObjectURL is the virtual-hosted URL of key, or key under base when base is set.
func ObjectURL(bucket, region, base, key string) string {
	escaped := escapeKey(key)
	if base != "" {
		return strings.TrimRight(base, "/") + "/" + escaped
	}
	if region == "" || region == "us-east-1" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, escaped)
}

func escapeKey(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (b *Bucket) ReadFile(ctx context.Context, key string, outStream io.Writer) error {
	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to get object %s from bucket %s: %w", key, b.name, err)
	}
	defer resp.Body.Close()

	if _, err = io.Copy(outStream, resp.Body); err != nil {
		return fmt.Errorf("failed to copy object %s from bucket %s: %w", key, b.name, err)
	}
	return nil
}

// ListFiles returns the keys under prefix.
func (b *Bucket) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(b.name)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(b.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in bucket %s: %w", b.name, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}
	return keys, nil
}
