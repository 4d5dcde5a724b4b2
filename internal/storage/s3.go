package storage

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/alnah/go-cuesplit/internal/apierr"
)

const defaultRegion = "us-east-1"

// S3Config holds the configuration for S3 publishing.
type S3Config struct {
	Bucket          string
	Prefix          string // Key prefix, without slashes at either end.
	Region          string
	Endpoint        string // Optional: for custom S3-compatible endpoints
	AccessKeyID     string // Optional: AWS access key ID
	SecretAccessKey string // Optional: AWS secret access key
}

// objectPutter is the part of *s3.Client the publisher uses.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads files to a bucket, retrying transient failures.
type S3Publisher struct {
	client objectPutter
	bucket string
	prefix string
	retry  apierr.RetryConfig
	logger *slog.Logger
}

// S3Option configures an S3Publisher.
type S3Option func(*S3Publisher)

// WithRetryConfig sets the upload retry policy.
func WithRetryConfig(cfg apierr.RetryConfig) S3Option {
	return func(p *S3Publisher) { p.retry = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) S3Option {
	return func(p *S3Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// withClient replaces the S3 client (tests only).
func withClient(c objectPutter) S3Option {
	return func(p *S3Publisher) { p.client = c }
}

// NewS3Publisher creates an S3Publisher. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
// The SDK's own retries are disabled so that RetryConfig alone governs
// how often an upload is attempted.
func NewS3Publisher(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: missing bucket", ErrInvalidTarget)
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	configOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.RetryMaxAttempts = 1
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			// Many S3-compatible stores reject the newer default checksums.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})

	p := &S3Publisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		retry:  apierr.DefaultRetryConfig,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Key returns the object key for a local file.
func (p *S3Publisher) Key(localPath string) string {
	return path.Join(p.prefix, filepath.Base(localPath))
}

// Publish uploads localPath and returns its s3:// URL.
func (p *S3Publisher) Publish(ctx context.Context, localPath string) (string, error) {
	key := p.Key(localPath)

	retry := p.retry
	retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		p.logger.Warn("upload failed, retrying",
			"key", key,
			"attempt", attempt,
			"wait", wait,
			"err", err)
	}

	_, err := apierr.RetryWithBackoff(ctx, retry, func() (struct{}, error) {
		return struct{}{}, p.put(ctx, localPath, key)
	}, apierr.Retryable)
	if err != nil {
		return "", fmt.Errorf("upload to S3: %w", err)
	}

	url := fmt.Sprintf("s3://%s/%s", p.bucket, key)
	p.logger.Info("uploaded", "url", url)
	return url, nil
}

// put performs a single upload attempt. The file is reopened each time so
// a retry never sends a partially consumed body.
func (p *S3Publisher) put(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath) // #nosec G304 -- path comes from our own export
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	in := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		in.ContentType = aws.String(ct)
	}

	_, err = p.client.PutObject(ctx, in)
	return apierr.Classify(err)
}
