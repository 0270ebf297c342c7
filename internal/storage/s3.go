package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/chisomo-phiri/studyhub/internal/config"
)

// S3Store talks to any S3-compatible object store using static credentials and
// a custom endpoint. Supabase Storage buckets are addressed this way.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3 initializes the client using static credentials and custom endpoint.
func NewS3(cfg config.S3Config) *S3Store {
	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	log.Println("Successfully initialized S3 client for bucket", cfg.BucketName)

	return &S3Store{
		client:        client,
		bucket:        cfg.BucketName,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}
}

func (s *S3Store) Backend() string { return BackendS3 }

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return key, nil
}

// URL returns the bucket's public URL for the object when the deployment has
// one configured, otherwise "" so the object is served through the proxy.
func (s *S3Store) URL(locator string) string {
	if s.publicBaseURL == "" {
		return ""
	}
	return s.publicBaseURL + "/" + locator
}

func (s *S3Store) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(locator),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

// PresignGet creates a presigned URL for downloading an object.
func (s *S3Store) PresignGet(ctx context.Context, locator string, expires time.Duration) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(locator),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Exists checks if a given object key exists in the bucket.
// Returns true if the object exists, false if not, and an error if something went wrong.
func (s *S3Store) Exists(ctx context.Context, locator string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(locator),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		// Other error (e.g. auth, network)
		return false, err
	}
	return true, nil
}
