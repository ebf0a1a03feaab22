// Package backup provides snapshot destinations for directory Reset:
// a local file writer and an S3 object writer, both satisfying
// sectorfile.SnapshotWriter.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Open resolves destination to a snapshot writer: a local file path, or
// an "s3://bucket/key" URI. The returned writer's Close must be called
// once the snapshot copy completes to flush and release resources.
func Open(ctx context.Context, destination string) (WriteCloser, error) {
	if strings.HasPrefix(destination, "s3://") {
		return openS3(ctx, destination)
	}
	return openLocal(destination)
}

// WriteCloser is a sectorfile.SnapshotWriter that must be closed after use.
type WriteCloser interface {
	Write(p []byte) (int, error)
	Close() error
}

type localWriter struct {
	f *os.File
}

func openLocal(path string) (WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("backup: open %s: %w", path, err)
	}
	return &localWriter{f: f}, nil
}

func (w *localWriter) Write(p []byte) (int, error) { return w.f.Write(p) }
func (w *localWriter) Close() error                { return w.f.Close() }

// s3Writer buffers the snapshot in memory and uploads it as a single
// object on Close; directory files are small enough (bounded by
// configured capacity) that a single PutObject call is appropriate.
type s3Writer struct {
	ctx    context.Context
	client *s3.Client
	bucket string
	key    string
	buf    []byte
}

func openS3(ctx context.Context, uri string) (WriteCloser, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("backup: parse %s: %w", uri, err)
	}
	bucket := parsed.Host
	key := strings.TrimPrefix(parsed.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("backup: %s must have the form s3://bucket/key", uri)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if accessKey, secretKey := os.Getenv("FIXGATE_BACKUP_S3_ACCESS_KEY"), os.Getenv("FIXGATE_BACKUP_S3_SECRET_KEY"); accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("backup: load AWS config: %w", err)
	}

	return &s3Writer{
		ctx:    ctx,
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		key:    key,
	}, nil
}

func (w *s3Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *s3Writer) Close() error {
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buf),
	})
	if err != nil {
		return fmt.Errorf("backup: put object s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}
