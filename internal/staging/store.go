package staging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StagedFile 暂存文件描述
type StagedFile struct {
	TempPath     string
	OriginalName string
	MimeType     string
	Size         int64
}

// Store 上传暂存区 - 提交前的文件先落到本地临时目录
type Store struct {
	dir string
}

// NewStore 创建暂存区，目录不存在时自动创建
func NewStore(dir string) (*Store, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve staging directory '%s': %w", dir, err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory '%s': %w", absDir, err)
	}
	return &Store{dir: absDir}, nil
}

// Dir 返回暂存目录
func (s *Store) Dir() string {
	return s.dir
}

// Stage 将上传内容写入暂存区
func (s *Store) Stage(r io.Reader, originalName, mimeType string) (*StagedFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	tempPath := filepath.Join(s.dir, name)

	dst, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create staged file: %w", err)
	}

	size, err := io.Copy(dst, r)
	closeErr := dst.Close()
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("failed to write staged file: %w", err)
	}
	if closeErr != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("failed to close staged file: %w", closeErr)
	}

	return &StagedFile{
		TempPath:     tempPath,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         size,
	}, nil
}

// Open 打开暂存文件
func (s *Store) Open(f *StagedFile) (*os.File, error) {
	if f == nil {
		return nil, fmt.Errorf("staged file is nil")
	}
	return os.Open(f.TempPath)
}

// Discard 删除暂存文件
func (s *Store) Discard(f *StagedFile) {
	if f == nil {
		return
	}
	if err := os.Remove(f.TempPath); err != nil && !os.IsNotExist(err) {
		log.Printf("[Staging] Failed to discard staged file %s: %v", f.TempPath, err)
	}
}

// CleanupOlderThan 清理过期的暂存文件，返回清理数量
func (s *Store) CleanupOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
