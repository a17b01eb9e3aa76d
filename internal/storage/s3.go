package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"dochub/internal/config"
	"dochub/internal/domain"
	"dochub/internal/logging"
)

const (
	defaultTimeout = 30 * time.Second
	uploadTimeout  = 10 * time.Minute

	// файлы больше порога загружаются по частям
	multipartThreshold = 16 * 1024 * 1024
	partSize           = 5 * 1024 * 1024 // 5MB, минимальный размер части в S3
)

// S3Storage работает с S3-совместимым хранилищем
type S3Storage struct {
	client *s3.Client
	bucket string
	logger logging.Logger
}

// NewS3Storage создает клиента и проверяет доступ к бакету
func NewS3Storage(conf config.StorageConfig) (*S3Storage, error) {
	if conf.AccessKeyID == "" || conf.SecretAccessKey == "" || conf.Bucket == "" {
		return nil, fmt.Errorf("missing required configuration: accessKeyID, secretAccessKey, and bucket are required")
	}

	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		conf.AccessKeyID,
		conf.SecretAccessKey,
		"",
	))

	opts := s3.Options{
		Region:           conf.Region,
		Credentials:      creds,
		RetryMode:        aws.RetryModeAdaptive,
		RetryMaxAttempts: 3,
	}
	// Свой endpoint (minio, yandex cloud) требует path-style адресации
	if conf.Endpoint != "" {
		opts.BaseEndpoint = aws.String(conf.Endpoint)
		opts.UsePathStyle = true
	}

	s := &S3Storage{
		client: s3.New(opts),
		bucket: conf.Bucket,
		logger: logging.New("s3"),
	}

	// Проверяем подключение к бакету
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(conf.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to access bucket %s: %w", conf.Bucket, err)
	}

	return s, nil
}

// Put загружает объект, большие объекты загружаются по частям
func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	if len(data) > multipartThreshold {
		return s.putMultipart(ctx, key, data, contentType)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload data to S3: %w", err)
	}

	return nil
}

func (s *S3Storage) putMultipart(ctx context.Context, key string, data []byte, contentType string) error {
	created, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to create multipart upload: %w", err)
	}
	uploadID := created.UploadId

	var parts []types.CompletedPart
	for start, number := 0, int32(1); start < len(data); start, number = start+partSize, number+1 {
		end := min(start+partSize, len(data))

		result, err := s.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:     aws.String(s.bucket),
			Key:        aws.String(key),
			PartNumber: aws.Int32(number),
			UploadId:   uploadID,
			Body:       bytes.NewReader(data[start:end]),
		})
		if err != nil {
			s.abort(key, uploadID)
			return fmt.Errorf("failed to upload part %d: %w", number, err)
		}

		parts = append(parts, types.CompletedPart{
			ETag:       result.ETag,
			PartNumber: aws.Int32(number),
		})
	}

	_, err = s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		UploadId: uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: parts,
		},
	})
	if err != nil {
		s.abort(key, uploadID)
		return fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	s.logger.Debugf("[S3] Uploaded %s in %d parts", key, len(parts))
	return nil
}

// abort отменяет загрузку по частям, контекст запроса к этому моменту может быть отменен
func (s *S3Storage) abort(key string, uploadID *string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := s.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		UploadId: uploadID,
	})
	if err != nil {
		s.logger.Warnf("[S3] Failed to abort multipart upload for %s: %v", key, err)
	}
}

// Get получает объект из S3
func (s *S3Storage) Get(ctx context.Context, key string) (Object, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, domain.NotFound("object not found: %s", key)
		}
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}

	return &object{
		ReadCloser:    result.Body,
		contentLength: aws.ToInt64(result.ContentLength),
		contentType:   aws.ToString(result.ContentType),
	}, nil
}

// Delete удаляет объект, отсутствие объекта не считается ошибкой
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Проверяем существование объекта перед удалением
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	var nsk *types.NoSuchKey
	var notFound *types.NotFound
	if err != nil && (errors.As(err, &nsk) || errors.As(err, &notFound)) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check object existence: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}

	return nil
}
