package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"returns-desk/config"
	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

// S3Sink складывает файлы выгрузки в S3-совместимое хранилище.
type S3Sink struct {
	client *s3.Client
	cfg    *config.S3Config
	log    *zap.Logger
}

// NewS3Sink создаёт клиент и при необходимости бакет.
func NewS3Sink(ctx context.Context, cfg *config.S3Config, log *zap.Logger) (*S3Sink, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(endpointURL(cfg))
		}
		o.UsePathStyle = true
	})

	sink := &S3Sink{
		client: client,
		cfg:    cfg,
		log:    log,
	}

	if err := sink.ensureBucketExists(ctx); err != nil {
		log.Warn("Failed to ensure bucket exists", zap.Error(err))
	}

	return sink, nil
}

// endpointURL добавляет схему, если в S3_ENDPOINT указан только host:port.
func endpointURL(cfg *config.S3Config) string {
	if strings.Contains(cfg.Endpoint, "://") {
		return cfg.Endpoint
	}
	if cfg.UseSSL {
		return "https://" + cfg.Endpoint
	}
	return "http://" + cfg.Endpoint
}

func (s *S3Sink) ensureBucketExists(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.cfg.BucketName),
	})
	if err == nil {
		return nil
	}

	s.log.Info("Creating bucket", zap.String("bucket", s.cfg.BucketName))

	input := &s3.CreateBucketInput{Bucket: aws.String(s.cfg.BucketName)}
	// us-east-1 не принимает LocationConstraint
	if s.cfg.Region != "" && s.cfg.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.cfg.Region),
		}
	}

	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return err
	}

	// Даем время на создание
	time.Sleep(1 * time.Second)
	return nil
}

// Write загружает файлы и возвращает их ключи.
func (s *S3Sink) Write(ctx context.Context, files []entity.ExportFile) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.cfg.BucketName),
			Key:           aws.String(f.Name),
			Body:          bytes.NewReader(f.Data),
			ContentType:   aws.String(f.ContentType),
			ContentLength: aws.Int64(int64(len(f.Data))),
		})
		if err != nil {
			s.log.Error("Failed to upload export file to S3",
				zap.String("key", f.Name),
				zap.Error(err))
			return keys, fmt.Errorf("uploading %s: %w", f.Name, err)
		}

		s.log.Info("Export file uploaded to S3",
			zap.String("key", f.Name),
			zap.Int("size", len(f.Data)))
		keys = append(keys, f.Name)
	}
	return keys, nil
}

// Проверка реализации интерфейса
var _ port.ExportSink = (*S3Sink)(nil)
