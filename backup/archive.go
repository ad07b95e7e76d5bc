package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

var ErrArchiveNotFound = errors.New("backup archive not found")

// ObjectStorage is the part of the S3 client used by Archiver.
type ObjectStorage interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Archiver keeps backup documents in an S3 compatible bucket.
type Archiver struct {
	client ObjectStorage
	bucket string
	prefix string
}

func NewArchiver(client ObjectStorage, bucket string) *Archiver {
	return &Archiver{client: client, bucket: bucket, prefix: "backups/"}
}

// NewR2Archiver connects to a Cloudflare R2 bucket of the given account.
func NewR2Archiver(ctx context.Context, accountID, accessKeyID, accessKeySecret, bucket string) (*Archiver, error) {
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
		}, nil
	})
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewArchiver(s3.NewFromConfig(cfg), bucket), nil
}

func (a *Archiver) objectKey(name string) string {
	return a.prefix + name
}

func (a *Archiver) Upload(ctx context.Context, name string, doc []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.objectKey(name)),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading backup %s: %w", name, err)
	}
	log.Info().Str("bucket", a.bucket).Str("key", a.objectKey(name)).Int("bytes", len(doc)).Msg("backup archived")
	return nil
}

func (a *Archiver) Download(ctx context.Context, name string) ([]byte, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.objectKey(name)),
	})
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("downloading backup %s: %w", name, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}
