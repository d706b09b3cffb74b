package fpo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the slice of the S3 API the source needs; *s3.Client
// satisfies it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source loads the organization workbook from an S3 object.
type S3Source struct {
	bucket string
	key    string
	client ObjectGetter
}

// S3Option configures an S3Source.
type S3Option func(*S3Source)

func WithS3Bucket(bucket string) S3Option {
	return func(s *S3Source) {
		s.bucket = bucket
	}
}

func WithS3Key(key string) S3Option {
	return func(s *S3Source) {
		s.key = key
	}
}

func WithS3Client(clt ObjectGetter) S3Option {
	return func(s *S3Source) {
		s.client = clt
	}
}

// NewS3Source creates a workbook source backed by an S3 object.
func NewS3Source(opts ...S3Option) *S3Source {
	ret := new(S3Source)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Load fetches the object and parses it as a workbook.
func (s *S3Source) Load(ctx context.Context) ([]Entry, error) {
	if s.client == nil {
		return nil, errors.New("s3 source: no client configured")
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer out.Body.Close()

	entries, err := ReadWorkbook(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return entries, nil
}
