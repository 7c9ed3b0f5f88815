package store

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// S3Store uploads artifacts to <Bucket>/<Prefix>/<runID>/<name>.
type S3Store struct {
	Bucket   string
	Prefix   string
	uploader s3manageriface.UploaderAPI
}

/*
NewS3Store creates an uploader from the default AWS credential chain
(AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY, shared config, instance role).
Endpoint and ForcePathStyle allow S3-compatible services such as MinIO.
*/
func NewS3Store(cfg S3Config) (s *S3Store, e *xerr.Error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		err := fmt.Errorf("s3 bucket is empty")
		return nil, xerr.NewError(err, "configure s3 store", "store.s3.bucket")
	}

	awsConfig := &aws.Config{}
	if cfg.Region != "" {
		awsConfig.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.ForcePathStyle {
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, sessionErr := session.NewSession(awsConfig)
	if sessionErr != nil {
		return nil, xerr.NewError(sessionErr, "create aws session", cfg.Bucket)
	}

	return NewS3StoreWithUploader(cfg.Bucket, cfg.Prefix, s3manager.NewUploader(sess)), nil
}

// NewS3StoreWithUploader is NewS3Store with a caller-provided uploader.
func NewS3StoreWithUploader(bucket string, prefix string, uploader s3manageriface.UploaderAPI) *S3Store {
	return &S3Store{
		Bucket:   bucket,
		Prefix:   strings.Trim(prefix, "/"),
		uploader: uploader,
	}
}

// Key returns the object key used for an artifact.
func (s *S3Store) Key(runID string, name string) string {
	return path.Join(s.Prefix, runID, name)
}

func (s *S3Store) Put(ctx context.Context, runID string, name string, data []byte, contentType string) (location string, e *xerr.Error) {
	e = validateName(runID, name)
	if e != nil {
		return "", e
	}

	key := s.Key(runID, name)
	location = fmt.Sprintf("s3://%s/%s", s.Bucket, key)

	_, uploadErr := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if uploadErr != nil {
		return "", xerr.NewError(uploadErr, "upload artifact to s3", location)
	}

	tl.Log(tl.Info1, palette.Green, "Uploaded %s (%s bytes) to '%s'", name, fmt.Sprintf("%d", len(data)), location)
	return location, nil
}
