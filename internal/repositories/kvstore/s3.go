package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// S3API is the part of *s3.Client the repository needs.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options describes an S3-compatible endpoint (AWS or MinIO).
type S3Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	Prefix       string
}

// S3Repository keeps each key as a single object named Prefix+key.
// Single-object PUTs are atomic, which is all the credential store needs.
type S3Repository struct {
	client S3API
	bucket string
	prefix string
}

var _ Repository = (*S3Repository)(nil)

// loadDefaultAWSConfig is a test seam for config.LoadDefaultConfig.
var loadDefaultAWSConfig = config.LoadDefaultConfig

func NewS3Repository(client S3API, bucket, prefix string) *S3Repository {
	return &S3Repository{client: client, bucket: bucket, prefix: prefix}
}

// OpenS3 builds an S3 client from static credentials. Path-style addressing
// is forced so MinIO endpoints work.
func OpenS3(ctx context.Context, opts S3Options) (*S3Repository, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return NewS3Repository(client, opts.Bucket, opts.Prefix), nil
}

func (r *S3Repository) objectKey(key string) *string {
	return aws.String(r.prefix + key)
}

func (r *S3Repository) Get(ctx context.Context, key string) (string, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    r.objectKey(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read kv[%s]: %w", key, err)
	}
	return string(b), nil
}

func (r *S3Repository) Set(ctx context.Context, key string, value string) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         r.objectKey(key),
		Body:        strings.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

// Remove is idempotent: S3 reports success for absent objects.
func (r *S3Repository) Remove(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    r.objectKey(key),
	})
	if err != nil {
		return fmt.Errorf("failed to remove kv[%s]: %w", key, err)
	}
	return nil
}

func (r *S3Repository) Close() error { return nil }
