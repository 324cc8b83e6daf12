package snapshot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the part of the S3 client an S3Destination needs.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Destination uploads snapshots to one object of an S3-compatible bucket.
// The object key's extension decides the content type.
type S3Destination struct {
	client s3API
	bucket string
	key    string
	format Format
}

// NewS3Destination builds a client from the default AWS credential chain.
// A non-empty endpoint switches to path-style addressing for MinIO and
// other S3-compatible stores.
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Destination{client: client, bucket: bucket, key: key, format: FormatFromPath(key)}, nil
}

func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	in := &s3.PutObjectInput{
		Bucket:       aws.String(d.bucket),
		Key:          aws.String(d.key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(d.format.ContentType()),
		CacheControl: aws.String("no-cache"),
		Metadata:     map[string]string{"hypergraph-format": string(d.format)},
	}
	if _, err := d.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", d.bucket, d.key, err)
	}
	return nil
}

func (d *S3Destination) String() string { return "s3://" + d.bucket + "/" + d.key }
