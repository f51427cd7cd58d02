package s3store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomadCrew/nomad-crew-planner/internal/store"
	"github.com/NomadCrew/nomad-crew-planner/internal/store/storetest"
)

// fakeS3 is an in-memory bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	headErr error
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestTripStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	s := NewTripStore(fake, "planner", "/trips/")
	require.NoError(t, s.Init(ctx))

	trip := storetest.SampleTrip("t1")
	id, err := s.Save(ctx, trip)
	require.NoError(t, err)
	assert.Contains(t, fake.objects, "trips/t1.json")

	loaded, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, trip, loaded)
}

func TestTripStore_GetAllSkipsForeignObjects(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	s := NewTripStore(fake, "planner", "trips")

	for _, id := range []string{"b", "a"} {
		_, err := s.Save(ctx, storetest.EmptyTrip(id))
		require.NoError(t, err)
	}
	fake.objects["trips/readme.txt"] = []byte("hello")
	fake.objects["trips/archive/old.json"] = []byte("{}")
	fake.objects["other/c.json"] = []byte("{}")

	trips, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "a", trips[0].ID)
	assert.Equal(t, "b", trips[1].ID)
}

func TestTripStore_NotFoundAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewTripStore(newFakeS3(), "planner", "")

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Save(ctx, storetest.EmptyTrip("x"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "x"))
	_, err = s.Get(ctx, "x")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTripStore_RejectsPathLikeIDs(t *testing.T) {
	ctx := context.Background()
	s := NewTripStore(newFakeS3(), "planner", "trips")

	_, err := s.Save(ctx, storetest.EmptyTrip("../escape"))
	assert.Error(t, err)

	_, err = s.Get(ctx, "a/b")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTripStore_Errors(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	fake.headErr = errors.New("forbidden")
	fake.putErr = errors.New("slow down")
	s := NewTripStore(fake, "planner", "")

	assert.Error(t, s.Init(ctx))
	_, err := s.Save(ctx, storetest.EmptyTrip("t"))
	assert.ErrorContains(t, err, "s3 put trip t")
}
