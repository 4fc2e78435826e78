/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package s3cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gregjones/httpcache/test"
)

// memS3 is an in-memory ObjectAPI.
type memS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemS3() *memS3 {
	return &memS3{objects: make(map[string][]byte)}
}

func (m *memS3) GetObject(ctx context.Context, params *s3.GetObjectInput,
	optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {

	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memS3) PutObject(ctx context.Context, params *s3.PutObjectInput,
	optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {

	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*params.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *memS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput,
	optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *memS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput,
	optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

func (m *memS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return &s3.ListObjectsV2Output{}, nil
}

func (m *memS3) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

func newMemCache(t *testing.T, opts Options) (*Cache, *memS3) {
	t.Helper()
	mem := newMemS3()
	cache := New(context.Background(), opts)
	cache.Client = mem
	if err := cache.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return cache, mem
}

func TestCacheInMemory(t *testing.T) {
	cache, _ := newMemCache(t, Options{Bucket: "test"})
	test.Cache(t, cache)
}

func TestCacheInMemoryWithGzip(t *testing.T) {
	cache, mem := newMemCache(t, Options{Bucket: "test", Gzip: true})
	test.Cache(t, cache)

	cache.Set("https://example.org/a_chart_data.phtml?event=1", []byte("payload"))
	keys := mem.keys()
	if len(keys) != 1 || !strings.HasSuffix(keys[0], ".gz") {
		t.Fatalf("stored keys = %v", keys)
	}
	zr, err := gzip.NewReader(bytes.NewReader(mem.objects[keys[0]]))
	if err != nil {
		t.Fatalf("stored object is not gzipped: %v", err)
	}
	raw, _ := io.ReadAll(zr)
	if string(raw) != "payload" {
		t.Errorf("stored payload = %q", raw)
	}
}

func TestObjectKeyPrefix(t *testing.T) {
	cache := New(context.Background(), Options{Bucket: "test", Prefix: "/custom/"})
	key := cache.objectKey("k")
	if !strings.HasPrefix(key, "custom/") || len(key) != len("custom/")+32 {
		t.Errorf("objectKey = %q", key)
	}
	if got := New(context.Background(), Options{}).objectKey("k"); !strings.HasPrefix(got, DefaultPrefix+"/") {
		t.Errorf("default objectKey = %q", got)
	}
}

func TestCorruptGzipIsMiss(t *testing.T) {
	cache, mem := newMemCache(t, Options{Bucket: "test", Gzip: true})
	mem.objects[cache.objectKey("k")] = []byte("not gzip")
	if _, ok := cache.Get("k"); ok {
		t.Error("corrupt entry should be a miss")
	}
}

func liveBucket(t *testing.T) string {
	bucket := os.Getenv("FIDECOMPARE_CACHE_BUCKET")
	if bucket == "" {
		t.Skip("FIDECOMPARE_CACHE_BUCKET not set")
	}
	return bucket
}

func TestS3Cache(t *testing.T) {
	bucket := liveBucket(t)
	cache := New(context.Background(), Options{Bucket: bucket, Prefix: "fidecompare-test", LogErrors: true})
	if err := cache.Init(); err != nil {
		t.Skipf("Skipping test due to lack of access to %v: %v", bucket, err)
	}

	test.Cache(t, cache)
}

func TestS3CacheWithGzip(t *testing.T) {
	bucket := liveBucket(t)
	cache := New(context.Background(), Options{Bucket: bucket, Prefix: "fidecompare-test",
		Gzip: true, LogErrors: true})
	if err := cache.Init(); err != nil {
		t.Skipf("Skipping test due to lack of access to %v: %v", bucket, err)
	}

	test.Cache(t, cache)
}
