package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// API は Store が使う S3 クライアントのメソッド
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Store はレポートファイルを置く S3 バケット
type Store struct {
	client API
	bucket string
}

func New(ctx context.Context, region, bucket string) (*Store, error) {
	if bucket == "" {
		return nil, eris.New("BUCKET_NAME が設定されていません")
	}
	sdkConfig, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, eris.Wrap(err, "AWS の設定を読み込めませんでした")
	}
	return NewWithClient(s3.NewFromConfig(sdkConfig), bucket), nil
}

func NewWithClient(client API, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

func (s *Store) Bucket() string {
	return s.bucket
}

// ReportKey は {EDINETコード}/Metrics/{EDINETコード}-{docID}-metrics.{拡張子}
func ReportKey(edinetCode, docID, extension string) string {
	return fmt.Sprintf("%s/Metrics/%s-%s-metrics.%s", edinetCode, edinetCode, docID, extension)
}

func (s *Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return eris.Wrapf(err, "%s の登録に失敗しました", key)
	}
	zap.L().Info("S3 に登録しました", zap.String("bucket", s.bucket), zap.String("key", key))
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "%s の取得に失敗しました", key)
	}
	defer output.Body.Close()
	body, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "%s を読み込めませんでした", key)
	}
	return body, nil
}

// List は prefix 配下のキーを返す
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, eris.Wrapf(err, "%s の一覧を取得できませんでした", prefix)
		}
		for _, object := range output.Contents {
			keys = append(keys, aws.ToString(object.Key))
		}
	}
	return keys, nil
}

// DeletePrefix は prefix 配下のオブジェクトを並行して削除し、削除した件数を返す
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return 0, err
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		deleted int
		errs    []error
	)
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(key),
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				zap.L().Error("S3 deleteObject error", zap.String("key", key), zap.Error(err))
				errs = append(errs, eris.Wrapf(err, "%s の削除に失敗しました", key))
				return
			}
			deleted++
			zap.L().Debug("削除しました", zap.String("key", key))
		}(key)
	}
	wg.Wait()

	if len(errs) > 0 {
		return deleted, errs[0]
	}
	return deleted, nil
}
