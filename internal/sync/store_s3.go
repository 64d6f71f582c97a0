package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/wanderlist/wanderlist/internal/config"
)

const s3ObjectKey = "wanderlist-sync-codes.json"

// S3Store keeps sync records in S3-compatible storage via minio-go.
// Records hold only ciphertext and email hashes, so the bucket operator
// learns nothing beyond code names and expiry times.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store creates an S3Store from the sync store config.
func NewS3Store(cfg *config.SyncStoreConfig) (*S3Store, error) {
	endpoint := cfg.Endpoint
	useSSL := true
	if strings.HasPrefix(endpoint, "https://") {
		endpoint = endpoint[8:]
	} else if strings.HasPrefix(endpoint, "http://") {
		endpoint = endpoint[7:]
		useSSL = false
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 init: %w", err)
	}
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) Name() string { return "s3" }

func (s *S3Store) Load(ctx context.Context) ([]RecordPair, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s3ObjectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3 download: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, fmt.Errorf("s3 download: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var pairs []RecordPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: discarding unreadable sync object %s/%s: %v\n", s.bucket, s3ObjectKey, err)
		return nil, nil
	}
	return pairs, nil
}

func (s *S3Store) Save(ctx context.Context, pairs []RecordPair) error {
	if pairs == nil {
		pairs = []RecordPair{}
	}
	data, err := json.MarshalIndent(pairs, "", "  ")
	if err != nil {
		return err
	}
	reader := bytes.NewReader(data)
	_, err = s.client.PutObject(ctx, s.bucket, s3ObjectKey, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}
	return nil
}

func (s *S3Store) Clear(ctx context.Context) error {
	err := s.client.RemoveObject(ctx, s.bucket, s3ObjectKey, minio.RemoveObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("s3 remove: %w", err)
	}
	return nil
}
