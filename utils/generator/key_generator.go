package generator

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// KeyGenerator 存储键生成器
// 所有键均相对于存储根目录，不含前导斜杠
type KeyGenerator struct {
	imagePath     string
	videoPath     string
	thumbnailPath string
}

// NewKeyGenerator 创建存储键生成器
func NewKeyGenerator(imagePath, videoPath, thumbnailPath string) *KeyGenerator {
	return &KeyGenerator{
		imagePath:     strings.Trim(imagePath, "/"),
		videoPath:     strings.Trim(videoPath, "/"),
		thumbnailPath: strings.Trim(thumbnailPath, "/"),
	}
}

// ImageKey 生成图片存储键，保留原始扩展名
func (g *KeyGenerator) ImageKey(originalName string) string {
	return path.Join(g.imagePath, uniqueName(originalName))
}

// VideoKey 生成视频存储键，保留原始扩展名
func (g *KeyGenerator) VideoKey(originalName string) string {
	return path.Join(g.videoPath, uniqueName(originalName))
}

// FrameKey 生成视频抽帧缩略图的存储键
func (g *KeyGenerator) FrameKey() string {
	return path.Join(g.thumbnailPath, fmt.Sprintf("video_%s.jpg", shortID()))
}

// PlaceholderKey 生成占位缩略图的存储键
func (g *KeyGenerator) PlaceholderKey() string {
	return path.Join(g.thumbnailPath, fmt.Sprintf("placeholder_%s.jpg", shortID()))
}

// SampleFrameKey 生成多点抽帧的存储键，index 从 1 开始
func (g *KeyGenerator) SampleFrameKey(index int) string {
	return path.Join(g.thumbnailPath, fmt.Sprintf("video_%s_%d.jpg", shortID(), index))
}

// uniqueName 生成带唯一前缀的文件名
func uniqueName(originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	return shortID() + sanitizeExt(ext)
}

// sanitizeExt 过滤扩展名中的非法字符
func sanitizeExt(ext string) string {
	if ext == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "." || out == "" {
		return ""
	}
	return out
}

// shortID 生成紧凑的唯一标识
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
