package source

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/slate/internal/errors"
)

// S3API is the subset of the S3 client used by S3.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 loads documents from an S3 bucket. Document names are object keys
// relative to Prefix.
type S3 struct {
	Client S3API
	Bucket string
	Prefix string
}

// NewS3Client creates an S3 client for region with credentials from the
// standard AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN
// variables. Without credentials requests are anonymous.
func NewS3Client(region string) *s3.Client {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	opts := s3.Options{Region: region}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     key,
					SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
					SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
					Source:          "environment",
				}, nil
			}))
	}
	return s3.New(opts)
}

// List pages through every object under Prefix.
func (s S3) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(s.Prefix),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New(errors.CodeSourceRead).WithDetail(s.Location("")).Wrap(err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !IsDocument(key) {
				continue
			}
			names = append(names, strings.TrimPrefix(key, s.Prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read fetches one document.
func (s S3) Read(ctx context.Context, name string) ([]byte, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Prefix + name),
	})
	if err != nil {
		return nil, errors.New(errors.CodeSourceRead).WithDetail(s.Location(name)).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New(errors.CodeSourceRead).WithDetail(s.Location(name)).Wrap(err)
	}
	return data, nil
}

// Location returns the s3:// URL of the named document.
func (s S3) Location(name string) string {
	return "s3://" + s.Bucket + "/" + s.Prefix + name
}
