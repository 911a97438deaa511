package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/devanderson/media-gallery/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage MinIO 对象存储实现
type MinioStorage struct {
	client     *minio.Client
	bucketName string
	endpoint   string
	useSSL     bool
}

// NewMinioStorage 创建 MinIO 存储提供者
func NewMinioStorage(cfg *config.Config) (*MinioStorage, error) {
	if cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 10 * time.Second,
		DisableCompression:    true,
	}

	if cfg.MinioUseSSL {
		transport.TLSClientConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure:    cfg.MinioUseSSL,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket '%s' exists: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket '%s': %w", cfg.MinioBucket, err)
		}
		log.Printf("Successfully created bucket: %s", cfg.MinioBucket)
	}

	return &MinioStorage{
		client:     client,
		bucketName: cfg.MinioBucket,
		endpoint:   cfg.MinioEndpoint,
		useSSL:     cfg.MinioUseSSL,
	}, nil
}

// SaveWithContext 将文件上传到 MinIO
func (s *MinioStorage) SaveWithContext(ctx context.Context, identifier string, file io.Reader) error {
	_, err := s.client.PutObject(ctx, s.bucketName, identifier, file, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("failed to upload object '%s' to minio: %w", identifier, err)
	}
	return nil
}

// GetWithContext 从 MinIO 获取文件
func (s *MinioStorage) GetWithContext(ctx context.Context, identifier string) (io.ReadSeeker, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, identifier, minio.GetObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return nil, fmt.Errorf("file not found in minio: %s", identifier)
		}
		return nil, fmt.Errorf("failed to get object stream from minio for '%s': %w", identifier, err)
	}
	return obj, nil
}

// DeleteWithContext 从 MinIO 删除文件
func (s *MinioStorage) DeleteWithContext(ctx context.Context, identifier string) error {
	err := s.client.RemoveObject(ctx, s.bucketName, identifier, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object '%s' from minio: %w", identifier, err)
	}
	return nil
}

// Exists 检查文件是否存在
func (s *MinioStorage) Exists(ctx context.Context, identifier string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucketName, identifier, minio.StatObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// URL 返回文件的公共访问地址
// 桶需要配置为公共读，否则调用方应使用预签名链接
func (s *MinioStorage) URL(identifier string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucketName, identifier)
}

// PresignedURL 生成预签名访问链接
func (s *MinioStorage) PresignedURL(ctx context.Context, identifier string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, identifier, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL for '%s': %w", identifier, err)
	}
	return u.String(), nil
}

// Health 检查存储健康状态
func (s *MinioStorage) Health(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}

// Name 返回存储名称
func (s *MinioStorage) Name() string {
	return "minio"
}
