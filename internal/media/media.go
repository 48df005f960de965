package media

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"controlnest-backend/config"
	"controlnest-backend/internal/logging"
	"controlnest-backend/internal/metrics"
	"controlnest-backend/internal/model"
)

// Service stores device images on a remote host.
type Service interface {
	Upload(ctx context.Context, data []byte, mimeType, originalName string) (*model.Image, error)
	Delete(ctx context.Context, id string) error
}

// objectAPI is the subset of the S3 client used here.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Service implements Service on an S3-compatible bucket.
type S3Service struct {
	client     objectAPI
	bucket     string
	folder     string
	publicBase string
	now        func() time.Time
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewS3 builds an S3Service from cfg using static credentials.
func NewS3(ctx context.Context, cfg config.MediaConfig) (*S3Service, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media: bucket is required")
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Service(client, cfg), nil
}

func newS3Service(client objectAPI, cfg config.MediaConfig) *S3Service {
	folder := strings.Trim(cfg.Folder, "/")
	if folder == "" {
		folder = "devices"
	}
	return &S3Service{
		client:     client,
		bucket:     cfg.Bucket,
		folder:     folder,
		publicBase: publicBase(cfg),
		now:        time.Now,
	}
}

// publicBase is the URL prefix under which uploaded keys are served.
func publicBase(cfg config.MediaConfig) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// PublicID returns the pseudo-unique name an upload is stored under:
// random hex, the original file name and the upload time in milliseconds.
func PublicID(originalName string, at time.Time) (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]) + "+" + originalName + "+" + strconv.FormatInt(at.UnixMilli(), 10), nil
}

// Upload stores data in a single attempt and returns its reference.
func (s *S3Service) Upload(ctx context.Context, data []byte, mimeType, originalName string) (img *model.Image, err error) {
	start := time.Now()
	defer func() { metrics.ObserveMedia("upload", err, time.Since(start)) }()

	publicID, err := PublicID(originalName, s.now())
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	key := s.folder + "/" + publicID

	sum := md5.Sum(data)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(int64(len(data))),
		ContentMD5:    aws.String(base64.StdEncoding.EncodeToString(sum[:])),
	})
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	logging.Debug().Str("key", key).Int("bytes", len(data)).Msg("image uploaded")
	return &model.Image{ID: key, URL: s.publicBase + "/" + escapeKey(key)}, nil
}

// Delete removes the object stored under id.
func (s *S3Service) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveMedia("delete", err, time.Since(start)) }()

	if _, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	}); err != nil {
		return fmt.Errorf("delete image %s: %w", id, err)
	}

	logging.Debug().Str("key", id).Msg("image deleted")
	return nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
