package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Target stores snapshot archives in an S3 bucket under an optional prefix.
type S3Target struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

var _ Target = (*S3Target)(nil)

// S3Options configures NewS3Target. Region and static credentials are
// optional; when empty, the SDK's default chain (environment, shared config,
// instance role) applies.
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Target builds an S3-backed target.
func NewS3Target(ctx context.Context, opts S3Options) (*S3Target, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("backup: s3 target requires a bucket")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("backup: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Target{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		prefix:   strings.TrimSuffix(opts.Prefix, "/"),
	}, nil
}

func (t *S3Target) key(name string) string {
	if t.prefix == "" {
		return name
	}
	return t.prefix + "/" + name
}

// Put implements Target using the upload manager, which handles multipart
// uploads for large archives.
func (t *S3Target) Put(ctx context.Context, name string, r io.Reader) error {
	_, err := t.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(name)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("backup: uploading %s: %w", name, err)
	}
	return nil
}

// Get implements Target.
func (t *S3Target) Get(ctx context.Context, name string, w io.Writer) error {
	out, err := t.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(name)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return fmt.Errorf("backup: fetching %s: %w", name, err)
	}
	defer out.Body.Close()

	_, err = io.Copy(w, out.Body)
	return err
}

// List implements Target.
func (t *S3Target) List(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(t.bucket)}
	if t.prefix != "" {
		input.Prefix = aws.String(t.prefix + "/")
	}

	var names []string
	paginator := s3.NewListObjectsV2Paginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("backup: listing snapshots: %w", err)
		}
		for _, obj := range page.Contents {
			name := aws.ToString(obj.Key)
			if t.prefix != "" {
				name = strings.TrimPrefix(name, t.prefix+"/")
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
