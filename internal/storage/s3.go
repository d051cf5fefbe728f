package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/msomdec/portfolio-api/internal/domain"
)

// DefaultFolder is the root key prefix for remotely stored images.
const DefaultFolder = "portfolio"

// ObjectAPI is the subset of the S3 client used by S3Backend.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3ClientConfig holds connection settings for an S3-compatible service
// (AWS S3, Cloudflare R2, MinIO).
type S3ClientConfig struct {
	Region    string
	Endpoint  string // Empty for AWS; set for S3-compatible services
	AccessKey string
	SecretKey string
}

// NewS3Client builds an S3 client. Static credentials are used when both keys
// are set; otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg S3ClientConfig, optFns ...func(*s3.Options)) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Required for MinIO and most S3-compatible services.
			o.UsePathStyle = true
		}
		for _, fn := range optFns {
			fn(o)
		}
	})
	return client, nil
}

// S3Options configures an S3Backend.
type S3Options struct {
	Bucket string
	Region string
	// Folder is the root key prefix; objects land under <Folder>/<category>/.
	Folder string
	// PublicURL is the base address objects are publicly resolvable under,
	// e.g. "https://cdn.example.com" or "http://localhost:9000/portfolio".
	PublicURL string
}

// S3Backend implements domain.StorageBackend on an S3-compatible object store.
// Objects are addressed by their key.
type S3Backend struct {
	client    ObjectAPI
	bucket    string
	region    string
	folder    string
	publicURL string
}

// NewS3Backend creates a remote backend using client.
func NewS3Backend(client ObjectAPI, opts S3Options) (*S3Backend, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if opts.PublicURL == "" {
		return nil, errors.New("s3 public url is required")
	}
	folder := strings.Trim(opts.Folder, "/")
	if folder == "" {
		folder = DefaultFolder
	}
	return &S3Backend{
		client:    client,
		bucket:    opts.Bucket,
		region:    opts.Region,
		folder:    folder,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
	}, nil
}

// Store uploads data under <folder>/<category>/<generated name> and returns
// once the service has acknowledged the write.
func (b *S3Backend) Store(ctx context.Context, data []byte, opts domain.StoreOptions) (*domain.StoredArtifact, error) {
	name, err := newFilename(opts.OriginalFilename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	key := path.Join(b.folder, opts.Category, name)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("%w: put object %s: %w", domain.ErrStorage, key, err)
	}

	width, height, format := probeImage(data)
	return &domain.StoredArtifact{
		StorageRef: key,
		URL:        b.publicURL + "/" + key,
		Width:      width,
		Height:     height,
		Format:     format,
	}, nil
}

// Delete removes the object stored under ref.
func (b *S3Backend) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return fmt.Errorf("%w: empty storage ref", domain.ErrInvalidInput)
	}
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("%w: delete object %s: %w", domain.ErrStorage, ref, err)
	}
	return nil
}

// EnsureBucket creates the bucket if it doesn't exist yet.
func (b *S3Backend) EnsureBucket(ctx context.Context) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(b.bucket)}
	if b.region != "" && b.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.region),
		}
	}

	_, err := b.client.CreateBucket(ctx, input)
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		var alreadyExists *types.BucketAlreadyExists
		if errors.As(err, &alreadyOwned) || errors.As(err, &alreadyExists) {
			return nil
		}
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}
