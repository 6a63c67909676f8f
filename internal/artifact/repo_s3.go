package artifact

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// s3Repository fetches artifacts from an s3://bucket/prefix URL. The endpoint
// defaults to AWS and can be overridden with NXHARNESS_S3_ENDPOINT;
// credentials come from the standard AWS environment variables.
type s3Repository struct {
	client *minio.Client
	bucket string
	prefix string
}

func newS3Repository(u *url.URL) (*s3Repository, error) {
	bucket := u.Host
	if bucket == "" {
		return nil, fmt.Errorf("s3 repository URL %q has no bucket", u)
	}

	endpoint := os.Getenv("NXHARNESS_S3_ENDPOINT")
	secure := true
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	} else if strings.HasPrefix(endpoint, "http://") {
		endpoint = strings.TrimPrefix(endpoint, "http://")
		secure = false
	} else {
		endpoint = strings.TrimPrefix(endpoint, "https://")
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			os.Getenv("AWS_SESSION_TOKEN"),
		),
		Region: region,
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &s3Repository{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(u.Path, "/"),
	}, nil
}

func (r *s3Repository) objectName(filename string) string {
	if r.prefix == "" {
		return filename
	}
	return path.Join(r.prefix, filename)
}

func (r *s3Repository) fetch(ctx context.Context, filename string, w io.Writer) (int64, error) {
	objectName := r.objectName(filename)

	// StatObject first so a missing key fails with a clean error instead of
	// surfacing on the first read.
	if _, err := r.client.StatObject(ctx, r.bucket, objectName, minio.StatObjectOptions{}); err != nil {
		return 0, fmt.Errorf("stat object %q: %w", objectName, err)
	}

	obj, err := r.client.GetObject(ctx, r.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("get object %q: %w", objectName, err)
	}
	defer obj.Close()

	return io.Copy(w, obj)
}

func (r *s3Repository) digest(ctx context.Context, filename string) (string, error) {
	for _, ext := range sidecarExtensions {
		obj, err := r.client.GetObject(ctx, r.bucket, r.objectName(filename+ext), minio.GetObjectOptions{})
		if err != nil {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(obj, 1024))
		obj.Close()
		if err != nil {
			continue
		}
		if digest := parseDigest(string(data)); digest != "" {
			return digest, nil
		}
	}
	return "", nil
}

func (r *s3Repository) describe() string {
	return fmt.Sprintf("s3://%s/%s", r.bucket, r.prefix)
}
