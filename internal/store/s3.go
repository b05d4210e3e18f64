package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Config содержит настройки для S3
type S3Config struct {
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	BucketName string
	Prefix     string
}

// s3API - используемая часть клиента S3, выделена для подмены в тестах
type s3API interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// S3KV хранит каждый ключ отдельным объектом в бакете S3
type S3KV struct {
	client s3API
	config *S3Config
}

// NewAWSSession создает сессию AWS по настройкам S3
func NewAWSSession(config *S3Config) (*session.Session, error) {
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}
	if config.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		)
	}

	// Если указан endpoint, используем path-style адресацию (MinIO и совместимые)
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AWS сессии: %w", err)
	}
	return sess, nil
}

// NewS3KV создает клиент S3
func NewS3KV(config *S3Config) (*S3KV, error) {
	sess, err := NewAWSSession(config)
	if err != nil {
		return nil, err
	}

	return &S3KV{
		client: s3.New(sess),
		config: config,
	}, nil
}

// objectKey возвращает ключ объекта с учетом префикса
func (s *S3KV) objectKey(key string) string {
	if s.config.Prefix == "" {
		return key + ".json"
	}
	return path.Join(s.config.Prefix, key+".json")
}

// Get скачивает объект
func (s *S3KV) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка загрузки объекта из S3: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения объекта из S3: %w", err)
	}
	return data, nil
}

// Put загружает объект
func (s *S3KV) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("ошибка загрузки объекта в S3: %w", err)
	}
	return nil
}

// Close ничего не делает
func (s *S3KV) Close() error {
	return nil
}
