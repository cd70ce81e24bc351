package apt

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the connection settings for a bucket mirror.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
}

// S3Publisher mirrors a built repository tree to an S3-compatible
// bucket so the repository can be served over HTTP.
type S3Publisher struct {
	client *s3.Client
	bucket string
}

func NewS3Publisher(cfg S3Config) *S3Publisher {
	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})
	return &S3Publisher{client: client, bucket: cfg.Bucket}
}

// Upload puts a single object into the bucket.
func (p *S3Publisher) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: &p.bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := p.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	return nil
}

// PublishTree uploads every file under repo, with bucket keys matching
// the repository-relative paths. Pool symlinks are resolved so the
// bucket holds the package bytes themselves.
func (p *S3Publisher) PublishTree(ctx context.Context, repo string) error {
	return filepath.WalkDir(repo, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(repo, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		data, err := os.ReadFile(path) // resolves symlinks
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		slog.Debug("Uploading", "key", key, "bytes", len(data))
		return p.Upload(ctx, key, data, contentTypeFor(key))
	})
}

func contentTypeFor(key string) string {
	switch {
	case strings.HasSuffix(key, ".deb"):
		return "application/vnd.debian.binary-package"
	case strings.HasSuffix(key, ".gz"), strings.HasSuffix(key, ".xz"), strings.HasSuffix(key, ".gpg"):
		return ""
	default:
		return "text/plain"
	}
}
