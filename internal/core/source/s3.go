package source

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/aufaim/docquery/internal/core"
	"github.com/aufaim/docquery/internal/models"
)

// S3Config carries the credentials and bucket for an S3Source.
type S3Config struct {
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
}

// S3Source lists and downloads objects from an S3 bucket prefix.
type S3Source struct {
	client     *s3.Client
	downloader *manager.Downloader
	bucket     string
	converter  core.DocumentConverter
}

func NewS3Source(ctx context.Context, cfg S3Config, converter core.DocumentConverter) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is empty")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Source{
		client:     client,
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		converter:  converter,
	}, nil
}

// List returns the supported objects directly under the given prefix. The
// delimiter keeps objects in deeper "folders" out of the run.
func (s *S3Source) List(ctx context.Context, location string) ([]models.SourceFile, error) {
	prefix := location
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var files []models.SourceFile
	var continuation *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("list s3 prefix %q: %w", prefix, err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix || strings.HasSuffix(key, "/") {
				continue
			}
			name := path.Base(key)
			if !s.converter.Supports(name) {
				log.Debug().Str("key", key).Msg("skipping unsupported s3 object")
				continue
			}
			files = append(files, models.SourceFile{ID: key, Name: name})
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuation = out.NextContinuationToken
	}
	return files, nil
}

// Fetch downloads the object to a temp file and returns its path together
// with a cleanup that removes it.
func (s *S3Source) Fetch(ctx context.Context, file models.SourceFile) (string, func(), error) {
	tmp, err := os.CreateTemp("", "docquery-s3-*"+sanitizeExt(file.Name))
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", tmp.Name()).Msg("temp file cleanup failed")
		}
	}

	_, err = s.downloader.Download(ctx, tmp, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(file.ID),
	})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("download s3 object %q: %w", file.ID, err)
	}
	return tmp.Name(), cleanup, nil
}

var _ core.DocumentSource = (*S3Source)(nil)
