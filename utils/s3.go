package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

var S3Client *s3.Client

// InitS3 connects to the archive bucket store and checks the credentials with a bucket listing.
func InitS3(logger *zap.Logger) error {
	endpoint := os.Getenv("S3_ENDPOINT_URL")
	accessKeyID := MustGetEnv("S3_ACCESS_KEY_ID")
	secretAccessKey := MustGetEnv("S3_SECRET_ACCESS_KEY")
	region := GetEnvOrDefault("S3_REGION", "us-east-1")

	sugar := logger.Sugar()
	sugar.Info("Initializing cloud storage service")

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	if endpoint != "" {
		sugar.Info("Using custom storage endpoint configuration")
	} else {
		sugar.Info("Using default cloud storage configuration")
	}
	S3Client = newS3Client(cfg, endpoint)

	buckets, err := S3Client.ListBuckets(context.Background(), &s3.ListBucketsInput{})
	if err != nil {
		return fmt.Errorf("failed to list buckets: %w", err)
	}
	sugar.Infow("Cloud storage service initialized successfully", "bucket_count", len(buckets.Buckets))
	return nil
}

// newS3Client builds a path-style client that makes exactly one attempt per call.
func newS3Client(cfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.Retryer = aws.NopRetryer{}
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// DownloadS3Object reads a whole object in a single attempt
func DownloadS3Object(ctx context.Context, bucket, key string) ([]byte, error) {
	if S3Client == nil {
		return nil, errors.New("s3 client is nil; call InitS3 first")
	}

	result, err := S3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// ParseS3URI parses "s3://bucket/key" into bucket + key.
func ParseS3URI(u string) (bucket, key string, _ error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return "", "", fmt.Errorf("parse s3 uri: %w", err)
	}
	if parsed.Scheme != "s3" {
		return "", "", fmt.Errorf("not an s3 uri: %s", u)
	}
	if parsed.Host == "" || len(parsed.Path) < 2 {
		return "", "", fmt.Errorf("incomplete s3 uri: %s", u)
	}
	return parsed.Host, parsed.Path[1:], nil // trim leading '/'
}

// UploadFile stores src under key in AWS_BUCKET and returns its s3:// URI.
func UploadFile(ctx context.Context, src io.Reader, key, contentType string) (string, error) {
	if S3Client == nil {
		return "", errors.New("s3Client is nil; call InitS3 first")
	}
	bucket := MustGetEnv("AWS_BUCKET")
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   src,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := S3Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object failed: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}
