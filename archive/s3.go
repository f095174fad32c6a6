package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"report-ingestor/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rs/zerolog/log"
)

// ErrIncompleteS3Config is returned when the S3 configuration is incomplete
var ErrIncompleteS3Config = errors.New("incomplete S3 configuration")

// S3Archive keeps a content-addressed copy of every ingested file in an
// s3 bucket.
type S3Archive struct {
	S3Client *s3.Client
	Timeout  time.Duration
	Bucket   string
}

// NewS3 creates an s3-backed archive from the application config
func NewS3() (*S3Archive, error) {
	// check for required S3 configuration
	if strings.TrimSpace(config.Cfg.Archive.S3.AccessKey) == "" ||
		strings.TrimSpace(config.Cfg.Archive.S3.KeyID) == "" ||
		strings.TrimSpace(config.Cfg.Archive.S3.Endpoint) == "" ||
		strings.TrimSpace(config.Cfg.Archive.S3.Region) == "" ||
		strings.TrimSpace(config.Cfg.Archive.S3.Bucket) == "" ||
		strings.TrimSpace(config.Cfg.Archive.S3.Timeout) == "" {
		return nil, fmt.Errorf("%w", ErrIncompleteS3Config)
	}
	s3Client := s3.New(s3.Options{
		UsePathStyle: true,
		BaseEndpoint: aws.String(config.Cfg.Archive.S3.Endpoint),
		Region:       config.Cfg.Archive.S3.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				config.Cfg.Archive.S3.KeyID,
				config.Cfg.Archive.S3.AccessKey,
				"",
			),
		),
	})

	timeoutDuration, err := time.ParseDuration(config.Cfg.Archive.S3.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 timeout value: %w", err)
	}

	return &S3Archive{
		S3Client: s3Client,
		Timeout:  timeoutDuration,
		Bucket:   config.Cfg.Archive.S3.Bucket,
	}, nil
}

// Put uploads the file bytes under <asset>/<hash>.xlsx and returns that
// key
func (a *S3Archive) Put(
	assetID string,
	contentHash string,
	content []byte,
) (string, error) {
	key := objectKey(assetID, contentHash)

	uploader := manager.NewUploader(a.S3Client)

	ctx, cancel := context.WithTimeout(context.Background(), a.Timeout)
	defer cancel()
	result, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		var mu manager.MultiUploadFailure
		if errors.As(err, &mu) {
			// Process error and its associated uploadID
			log.Error().
				Msg(fmt.Sprintf("multi-upload failure (upload_id: %s): %v", mu.UploadID(), mu))

			return "", fmt.Errorf(
				"multi-upload failure (upload_id: %s): %w",
				mu.UploadID(),
				mu,
			)
		} else {
			// Process error generically
			log.Error().Err(err).Msg("upload failure")

			return "", fmt.Errorf("upload failure: %w", err)
		}
	}
	log.Info().
		Str("location", result.Location).
		Msg("successfully uploaded report file to s3 bucket")

	return key, nil
}
