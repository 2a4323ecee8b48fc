package contentstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
	"github.com/Snehagupta1907/monad-journal/internal/metrics"
)

// cidMetaKey is the user metadata key under which Filebase reports the pinned CID.
const cidMetaKey = "cid"

// objectAPI is the subset of the S3 client used by FilebaseStore.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// FilebaseOptions configures the S3-compatible Filebase endpoint.
type FilebaseOptions struct {
	Endpoint  string // ex: https://s3.filebase.com
	Region    string // ex: us-east-1
	Bucket    string
	AccessKey string
	SecretKey string
}

// FilebaseStore pins payloads on IPFS through Filebase's S3 API.
type FilebaseStore struct {
	api    objectAPI
	bucket string
	logger logger.Logger
}

// NewFilebaseStore builds an S3 client for opts.
func NewFilebaseStore(ctx context.Context, opts FilebaseOptions, log logger.Logger) (*FilebaseStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("filebase bucket is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load filebase config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	return newFilebaseStore(client, opts.Bucket, log), nil
}

func newFilebaseStore(api objectAPI, bucket string, log logger.Logger) *FilebaseStore {
	return &FilebaseStore{
		api:    api,
		bucket: bucket,
		logger: log.With(logger.Component("filebase")),
	}
}

// ObjectKey derives the object key from the payload hash, so identical payloads share a key.
func ObjectKey(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Store uploads payload and returns ipfs://<cid>.
func (s *FilebaseStore) Store(ctx context.Context, payload []byte) (addr domain.ContentAddress, err error) {
	defer func() { metrics.StoreUploads.WithLabelValues(metrics.Result(err)).Inc() }()

	if len(payload) == 0 {
		return "", fmt.Errorf("%w: empty payload", domain.ErrValidation)
	}

	key := ObjectKey(payload)

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String(contentType(payload)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %s: %w", domain.ErrStoreUnavailable, key, err)
	}

	head, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("%w: head object %s: %w", domain.ErrStoreUnavailable, key, err)
	}

	cid := lookupCID(head.Metadata)
	if cid == "" {
		err = fmt.Errorf("%w: object %s has no cid metadata", domain.ErrStoreUnavailable, key)
		return "", err
	}

	s.logger.Debug("payload pinned",
		logger.String("key", key),
		logger.String("cid", cid),
		logger.Int("bytes", len(payload)))

	return domain.ContentAddress(Scheme + cid), nil
}

func lookupCID(meta map[string]string) string {
	if v := meta[cidMetaKey]; v != "" {
		return v
	}
	for k, v := range meta {
		if strings.EqualFold(k, cidMetaKey) {
			return v
		}
	}
	return ""
}

func contentType(payload []byte) string {
	if json.Valid(payload) {
		return "application/json"
	}
	return http.DetectContentType(payload)
}
