package tabular

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/teranos/porydex/errors"
)

// DefaultS3Region is used when S3Options.Region is empty.
const DefaultS3Region = "us-east-1"

// S3Options configures an S3 (or S3-compatible, e.g. MinIO) location.
type S3Options struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string // optional custom endpoint
	// Static credentials; when empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// objectAPI is the part of *s3.Client the location uses.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 is a bucket prefix holding reference files as <prefix>/<table>.csv.
type S3 struct {
	client objectAPI
	bucket string
	prefix string
}

// NewS3 builds an S3 client from opts and the default AWS configuration.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := opts.Region
	if region == "" {
		region = DefaultS3Region
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.PathStyle {
			o.UsePathStyle = true
		}
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return newS3(client, opts.Bucket, opts.Prefix), nil
}

func newS3(client objectAPI, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3) String() string {
	if s.prefix == "" {
		return "s3://" + s.bucket
	}
	return "s3://" + s.bucket + "/" + s.prefix
}

func (s *S3) key(table string) string {
	return path.Join(s.prefix, FileName(table))
}

// Open fetches <prefix>/<table>.csv.
func (s *S3) Open(ctx context.Context, table string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(table)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, missing(err, table, s.String())
		}
		return nil, errors.Wrapf(err, "get %s/%s", s, FileName(table))
	}
	return out.Body, nil
}

// Create buffers the file and uploads it on Close.
func (s *S3) Create(ctx context.Context, table string) (io.WriteCloser, error) {
	return &s3Upload{ctx: ctx, s: s, table: table}, nil
}

type s3Upload struct {
	ctx   context.Context
	s     *S3
	table string
	buf   bytes.Buffer
	done  bool
}

func (u *s3Upload) Write(p []byte) (int, error) {
	if u.done {
		return 0, errors.Newf("write to closed upload of %s", FileName(u.table))
	}
	return u.buf.Write(p)
}

func (u *s3Upload) Close() error {
	if u.done {
		return nil
	}
	u.done = true
	_, err := u.s.client.PutObject(u.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.s.bucket),
		Key:         aws.String(u.s.key(u.table)),
		Body:        bytes.NewReader(u.buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return errors.Wrapf(err, "put %s/%s", u.s, FileName(u.table))
	}
	return nil
}
