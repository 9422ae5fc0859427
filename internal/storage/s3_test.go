package storage

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
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 はメモリ上のバケット
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	// 1 ページあたりの件数
	pageSize int
	failKey  string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), pageSize: 2}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failKey {
		return nil, errors.New("access denied")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if token := aws.ToString(in.ContinuationToken); token != "" {
		for i, key := range keys {
			if key == token {
				start = i
				break
			}
		}
	}
	end := start + f.pageSize
	out := &s3.ListObjectsV2Output{}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end])
	} else {
		end = len(keys)
		out.IsTruncated = aws.Bool(false)
	}
	for _, key := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	return out, nil
}

func TestReportKey(t *testing.T) {
	if got := ReportKey("E00001", "S100A001", "csv"); got != "E00001/Metrics/E00001-S100A001-metrics.csv" {
		t.Errorf("ReportKey = %q", got)
	}
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	store := NewWithClient(newFakeS3(), "bucket")
	if err := store.Put(ctx, "E00001/Metrics/a.csv", []byte("売上高,1000"), "text/csv"); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, "E00001/Metrics/a.csv")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "売上高,1000" {
		t.Errorf("Get = %q", got)
	}
	if _, err := store.Get(ctx, "missing"); err == nil {
		t.Error("Get of a missing key succeeded")
	}
}

func TestDeletePrefix(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := NewWithClient(fake, "bucket")
	for _, key := range []string{"E1/Metrics/a", "E1/Metrics/b", "E1/Metrics/c", "E1/Metrics/d", "E1/Metrics/e", "E2/Metrics/a"} {
		if err := store.Put(ctx, key, []byte("x"), "text/plain"); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := store.List(ctx, "E1/")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 5 {
		t.Fatalf("List = %v, want 5 keys over 3 pages", keys)
	}

	n, err := store.DeletePrefix(ctx, "E1/")
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("DeletePrefix = %d, want 5", n)
	}
	if len(fake.objects) != 1 {
		t.Errorf("remaining objects = %v", fake.objects)
	}
}

func TestDeletePrefixError(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	fake.failKey = "E1/b"
	store := NewWithClient(fake, "bucket")
	for _, key := range []string{"E1/a", "E1/b", "E1/c"} {
		store.Put(ctx, key, []byte("x"), "text/plain")
	}
	n, err := store.DeletePrefix(ctx, "E1/")
	if err == nil {
		t.Fatal("DeletePrefix succeeded although a delete failed")
	}
	if n != 2 {
		t.Errorf("DeletePrefix = %d, want 2", n)
	}
}
