package files

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the subset of the S3 client used by S3
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds bucket settings for the S3 store
type S3Config struct {
	Bucket string
	Region string
	// Endpoint overrides the AWS endpoint (MinIO and other compatible stores)
	Endpoint string
	// PublicURL is the prefix objects are reachable under
	PublicURL string
}

// S3 stores files in an S3-compatible bucket
type S3 struct {
	api       ObjectAPI
	bucket    string
	publicURL string
}

// Ensure S3 implements FileStore
var _ FileStore = (*S3)(nil)

// NewS3 creates an S3 store using the default AWS credential chain
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3WithAPI(client, cfg), nil
}

// NewS3WithAPI creates an S3 store with an existing client (for testing)
func NewS3WithAPI(api ObjectAPI, cfg S3Config) *S3 {
	return &S3{
		api:       api,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}
}

// Put uploads r as an object named key
func (s *S3) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

// Remove deletes the object published at url
func (s *S3) Remove(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || key == "" {
		return fmt.Errorf("%w: %s", ErrInvalidKey, url)
	}
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}
