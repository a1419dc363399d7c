// Package storage uploads exported reports to S3.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config locates the export bucket.
type Config struct {
	Bucket string
	Region string
	Prefix string
}

// S3API is the part of the S3 client the exporter uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Object is one stored export.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Exporter writes report files under a dated prefix.
type Exporter struct {
	client S3API
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Exporter loads the default AWS credential chain for cfg.Region.
func NewS3Exporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewExporter(s3.NewFromConfig(awsCfg), cfg), nil
}

// NewExporter wraps an existing client.
func NewExporter(client S3API, cfg Config) *Exporter {
	return &Exporter{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		now:    time.Now,
	}
}

// Key returns the object key for a file exported today.
func (e *Exporter) Key(name string) string {
	return path.Join(e.prefix, e.now().Format("2006-01-02"), path.Base(name))
}

// Put uploads data and returns its s3:// URI.
func (e *Exporter) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := e.Key(name)
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", e.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", e.bucket, key), nil
}

// List returns every export under the prefix, following continuation
// tokens.
func (e *Exporter) List(ctx context.Context) ([]Object, error) {
	var (
		out   []Object
		token *string
	)
	prefix := e.prefix
	if prefix != "" {
		prefix += "/"
	}
	for {
		page, err := e.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(e.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", e.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			o := Object{Key: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				o.LastModified = *obj.LastModified
			}
			out = append(out, o)
		}
		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			return out, nil
		}
		token = page.NextContinuationToken
	}
}
