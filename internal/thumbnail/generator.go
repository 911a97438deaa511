package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/devanderson/media-gallery/config"
	"github.com/devanderson/media-gallery/storage"
	"github.com/devanderson/media-gallery/utils/generator"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Generator 视频缩略图生成器
// 缩略图生成失败不是致命错误，Generate 对调用方只返回存储键或空串
type Generator struct {
	store       storage.Provider
	keys        *generator.KeyGenerator
	tempDir     string
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	maxWidth    int
	quality     int
	fallback    bool
}

// NewGenerator 创建缩略图生成器
func NewGenerator(cfg *config.Config, store storage.Provider, keys *generator.KeyGenerator) *Generator {
	timeout := cfg.FFmpegTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxWidth := cfg.VideoThumbnailMaxWidth
	if maxWidth <= 0 {
		maxWidth = 640
	}
	quality := cfg.VideoThumbnailQuality
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	return &Generator{
		store:       store,
		keys:        keys,
		tempDir:     cfg.GalleryTempPath,
		ffmpegPath:  cfg.FFmpegPath,
		ffprobePath: cfg.FFprobePath,
		timeout:     timeout,
		maxWidth:    maxWidth,
		quality:     quality,
		fallback:    cfg.VideoThumbnailFallback,
	}
}

// Available 检查转码器是否可用
func (g *Generator) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.ffmpegPath, "-version")
	return cmd.Run() == nil
}

// Generate 为已入库的视频生成缩略图，返回缩略图存储键
// 任何阶段失败都不向调用方返回错误：能降级则返回占位图的键，否则返回空串
func (g *Generator) Generate(ctx context.Context, videoKey, originalName string, offset float64) string {
	localPath, cleanup, err := g.stageLocal(ctx, videoKey)
	if err != nil {
		log.Printf("[Thumbnail] Failed to stage video %s locally: %v", videoKey, err)
		return g.placeholderOrEmpty(ctx, originalName)
	}
	defer cleanup()

	if !g.Available(ctx) {
		log.Printf("[Thumbnail] Transcoder '%s' not available, using placeholder for %s", g.ffmpegPath, videoKey)
		return g.placeholderOrEmpty(ctx, originalName)
	}

	framePath, err := g.extractFrame(ctx, localPath, offset)
	if err != nil {
		log.Printf("[Thumbnail] Frame extraction failed for %s: %v", videoKey, err)
		return g.placeholderOrEmpty(ctx, originalName)
	}
	defer func() { _ = os.Remove(framePath) }()

	key := g.keys.FrameKey()
	if err := g.storeOptimized(ctx, framePath, key); err != nil {
		log.Printf("[Thumbnail] Failed to store thumbnail for %s: %v", videoKey, err)
		return g.placeholderOrEmpty(ctx, originalName)
	}

	return key
}

// Duration 探测视频时长，秒
func (g *Generator) Duration(ctx context.Context, videoKey string) (float64, bool) {
	localPath, cleanup, err := g.stageLocal(ctx, videoKey)
	if err != nil {
		return 0, false
	}
	defer cleanup()

	return g.probeDuration(ctx, localPath)
}

// extractFrame 调用 ffmpeg 在指定偏移抽取单帧
func (g *Generator) extractFrame(ctx context.Context, srcPath string, offset float64) (string, error) {
	if offset < 0 {
		offset = 0
	}
	outPath := filepath.Join(g.tempDir, "frame_"+strings.ReplaceAll(uuid.NewString(), "-", "")+".jpg")

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.ffmpegPath,
		"-i", srcPath,
		"-ss", strconv.FormatFloat(offset, 'f', 2, 64),
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(outPath)
		return "", fmt.Errorf("ffmpeg failed: %w (%s)", err, firstLine(stderr.String()))
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(outPath)
		return "", fmt.Errorf("ffmpeg produced no output frame")
	}

	return outPath, nil
}

// probeDuration 调用 ffprobe 读取容器时长
func (g *Generator) probeDuration(ctx context.Context, srcPath string) (float64, bool) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		srcPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, false
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || duration <= 0 {
		return 0, false
	}
	return duration, true
}

// storeOptimized 压缩后写入存储：限制最大宽度，保持比例，不放大
func (g *Generator) storeOptimized(ctx context.Context, framePath, key string) error {
	img, err := imaging.Open(framePath)
	if err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	if img.Bounds().Dx() > g.maxWidth {
		img = imaging.Resize(img, g.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: g.quality}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	if err := g.store.SaveWithContext(ctx, key, &buf); err != nil {
		return fmt.Errorf("failed to save thumbnail '%s': %w", key, err)
	}
	return nil
}

// placeholderOrEmpty 生成占位缩略图，禁用降级时返回空串
func (g *Generator) placeholderOrEmpty(ctx context.Context, originalName string) string {
	if !g.fallback {
		return ""
	}

	img := ComposePlaceholder(originalName)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: g.quality}); err != nil {
		log.Printf("[Thumbnail] Failed to encode placeholder: %v", err)
		return ""
	}

	key := g.keys.PlaceholderKey()
	if err := g.store.SaveWithContext(ctx, key, &buf); err != nil {
		log.Printf("[Thumbnail] Failed to save placeholder '%s': %v", key, err)
		return ""
	}
	return key
}

// stageLocal 将存储中的视频拉到本地临时文件，供外部命令读取
func (g *Generator) stageLocal(ctx context.Context, videoKey string) (string, func(), error) {
	reader, err := g.store.GetWithContext(ctx, videoKey)
	if err != nil {
		return "", nil, err
	}
	if closer, ok := reader.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	ext := strings.ToLower(filepath.Ext(videoKey))
	localPath := filepath.Join(g.tempDir, "stage_"+strings.ReplaceAll(uuid.NewString(), "-", "")+ext)

	dst, err := os.Create(localPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	_, err = io.Copy(dst, reader)
	closeErr := dst.Close()
	if err != nil {
		_ = os.Remove(localPath)
		return "", nil, fmt.Errorf("failed to copy video to staging file: %w", err)
	}
	if closeErr != nil {
		_ = os.Remove(localPath)
		return "", nil, fmt.Errorf("failed to close staging file: %w", closeErr)
	}

	cleanup := func() { _ = os.Remove(localPath) }
	return localPath, cleanup, nil
}

// firstLine 截取多行输出的首行用于日志
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
