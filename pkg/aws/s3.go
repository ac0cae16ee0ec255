package aws

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Presigner issues upload URLs for media objects.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, map[string]string, error)
}

// S3Presigner presigns PUT requests against a single bucket.
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
}

// NewS3Client builds an S3 client. Custom endpoints do not serve
// virtual-hosted buckets, so they get path-style addressing.
func NewS3Client(cfg sdkaws.Config) *s3.Client {
	url := Endpoint()
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if url == "" {
			return
		}
		o.UsePathStyle = true
		if o.BaseEndpoint == nil {
			o.BaseEndpoint = sdkaws.String(url)
		}
	})
}

func NewS3Presigner(cfg sdkaws.Config, bucket string) *S3Presigner {
	return &S3Presigner{client: s3.NewPresignClient(NewS3Client(cfg)), bucket: bucket}
}

// PresignPut returns a presigned PUT URL for key plus the headers the
// uploader must send with it.
func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, map[string]string, error) {
	input := &s3.PutObjectInput{Bucket: sdkaws.String(p.bucket), Key: sdkaws.String(key)}
	if contentType != "" {
		input.ContentType = sdkaws.String(contentType)
	}

	presigned, err := p.client.PresignPutObject(ctx, input, s3.WithPresignExpires(expires))
	if err != nil {
		return "", nil, fmt.Errorf("presign %s/%s: %w", p.bucket, key, err)
	}

	return presigned.URL, uploadHeaders(presigned.SignedHeader), nil
}

// uploadHeaders flattens the signed headers minus Host, which the HTTP
// client sets itself.
func uploadHeaders(signed http.Header) map[string]string {
	out := make(map[string]string, len(signed))
	for name, values := range signed {
		if len(values) == 0 || strings.EqualFold(name, "host") {
			continue
		}
		out[name] = values[0]
	}
	return out
}
