// Package s3store keeps one JSON object per trip in an S3-compatible bucket.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/NomadCrew/nomad-crew-planner/internal/store"
	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

const objectSuffix = ".json"

// ObjectAPI is the subset of *s3.Client the store calls.
type ObjectAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type TripStore struct {
	client ObjectAPI
	bucket string
	prefix string
}

func NewTripStore(client ObjectAPI, bucket, prefix string) *TripStore {
	return &TripStore{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *TripStore) key(id string) (string, error) {
	if id == "" || strings.Contains(id, "/") || id == "." || id == ".." {
		return "", fmt.Errorf("invalid trip id %q for object key", id)
	}
	return path.Join(s.prefix, id+objectSuffix), nil
}

func (s *TripStore) listPrefix() string {
	if s.prefix == "" {
		return ""
	}
	return s.prefix + "/"
}

func (s *TripStore) Init(ctx context.Context) error {
	if err := s.Ping(ctx); err != nil {
		return fmt.Errorf("s3 trip store init: %w", err)
	}
	logger.GetLogger().Infow("S3 trip store ready", "bucket", s.bucket, "prefix", s.prefix)
	return nil
}

func (s *TripStore) GetAll(ctx context.Context) ([]*types.Trip, error) {
	var ids []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.listPrefix()),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list trips: %w", err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.listPrefix())
			if strings.Contains(name, "/") || !strings.HasSuffix(name, objectSuffix) {
				continue
			}
			ids = append(ids, strings.TrimSuffix(name, objectSuffix))
		}
	}
	sort.Strings(ids)

	trips := make([]*types.Trip, 0, len(ids))
	for _, id := range ids {
		trip, err := s.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			// deleted between list and get
			continue
		}
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, nil
}

func (s *TripStore) Get(ctx context.Context, id string) (*types.Trip, error) {
	key, err := s.key(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get trip %s: %w", id, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read trip %s: %w", id, err)
	}
	return store.Decode(data)
}

func (s *TripStore) Save(ctx context.Context, trip *types.Trip) (string, error) {
	id := store.EnsureID(trip)
	key, err := s.key(id)
	if err != nil {
		return "", err
	}
	data, err := store.Encode(trip)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put trip %s: %w", id, err)
	}
	return id, nil
}

func (s *TripStore) Delete(ctx context.Context, id string) error {
	key, err := s.key(id)
	if err != nil {
		return nil
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete trip %s: %w", id, err)
	}
	return nil
}

func (s *TripStore) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *TripStore) Close() error {
	return nil
}
