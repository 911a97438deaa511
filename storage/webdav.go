package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/devanderson/media-gallery/config"
	"github.com/studio-b12/gowebdav"
)

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   *gowebdav.Client
	baseURL  string
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者
func NewWebDAVStorage(cfg *config.Config) (*WebDAVStorage, error) {
	if cfg.WebDAVURL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.WebDAVRootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.WebDAVURL, cfg.WebDAVUsername, cfg.WebDAVPassword)

	// 验证连接
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := testWebDAVConnection(ctx, client, rootPath); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return &WebDAVStorage{
		client:   client,
		baseURL:  strings.TrimRight(cfg.WebDAVURL, "/"),
		rootPath: rootPath,
	}, nil
}

// testWebDAVConnection 测试 WebDAV 连接
func testWebDAVConnection(ctx context.Context, client *gowebdav.Client, rootPath string) error {
	done := make(chan error, 1)
	go func() {
		_, err := client.ReadDir(rootPath)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(identifier string) string {
	identifier = strings.TrimLeft(identifier, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + identifier
	}
	return "/" + identifier
}

// ensureParentDir 递归创建父目录
func (s *WebDAVStorage) ensureParentDir(ctx context.Context, fullPath string) error {
	parentDir := path.Dir(fullPath)
	if parentDir == "/" || parentDir == "." {
		return nil
	}

	parts := strings.Split(strings.Trim(parentDir, "/"), "/")
	currentPath := ""

	for _, part := range parts {
		if part == "" {
			continue
		}
		currentPath = currentPath + "/" + part

		done := make(chan error, 1)
		go func(p string) {
			done <- s.client.Mkdir(p, os.FileMode(0755))
		}(currentPath)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			if err != nil && !isCollectionExistsError(err) {
				return fmt.Errorf("failed to create directory %s: %w", currentPath, err)
			}
		}
	}

	return nil
}

// isCollectionExistsError 判断是否为目录已存在的错误
func isCollectionExistsError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	containsAny := []string{
		"already exists",
		"conflict",
		"Conflict",
		"409",
		"Method Not Allowed",
		"405",
	}
	for _, s := range containsAny {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

// SaveWithContext 保存文件到 WebDAV
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, identifier string, file io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := s.fullPath(identifier)

	if err := s.ensureParentDir(ctx, fullPath); err != nil {
		return fmt.Errorf("failed to ensure parent directory for %s: %w", identifier, err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.client.Write(fullPath, data, 0644)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to write file %s: %w", identifier, err)
		}
		return nil
	}
}

// GetWithContext 从 WebDAV 获取文件
func (s *WebDAVStorage) GetWithContext(ctx context.Context, identifier string) (io.ReadSeeker, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath := s.fullPath(identifier)

	type result struct {
		data []byte
		err  error
	}

	done := make(chan result, 1)
	go func() {
		data, err := s.client.Read(fullPath)
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", identifier, res.err)
		}
		return bytes.NewReader(res.data), nil
	}
}

// DeleteWithContext 从 WebDAV 删除文件
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, identifier string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := s.fullPath(identifier)

	done := make(chan error, 1)
	go func() {
		done <- s.client.Remove(fullPath)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, identifier string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath := s.fullPath(identifier)

	type result struct {
		exists bool
		err    error
	}

	done := make(chan result, 1)
	go func() {
		_, err := s.client.Stat(fullPath)
		if err == nil {
			done <- result{exists: true}
			return
		}
		if gowebdav.IsErrNotFound(err) {
			done <- result{exists: false}
			return
		}
		done <- result{exists: false, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-done:
		return res.exists, res.err
	}
}

// URL 返回文件的公共访问地址
func (s *WebDAVStorage) URL(identifier string) string {
	return s.baseURL + s.fullPath(identifier)
}

// Health 检查存储健康状态
func (s *WebDAVStorage) Health(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if s.client == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.client.ReadDir(s.rootPath)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	if s.baseURL == "" {
		return "webdav"
	}
	return fmt.Sprintf("webdav:%s%s", s.baseURL, s.rootPath)
}
