package generator

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestGenerator() *KeyGenerator {
	return NewKeyGenerator("gallery/images", "gallery/videos/", "/gallery/thumbnails")
}

// --- 测试存储键生成 ---

func TestImageKey(t *testing.T) {
	g := newTestGenerator()

	key := g.ImageKey("Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "gallery/images/"), key)
	// 扩展名转小写保留
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
}

func TestVideoKey(t *testing.T) {
	g := newTestGenerator()

	key := g.VideoKey("clip.mp4")
	assert.True(t, strings.HasPrefix(key, "gallery/videos/"), key)
	assert.True(t, strings.HasSuffix(key, ".mp4"), key)
}

func TestImageKey_Unique(t *testing.T) {
	g := newTestGenerator()
	assert.NotEqual(t, g.ImageKey("a.png"), g.ImageKey("a.png"))
}

func TestImageKey_NoExtension(t *testing.T) {
	g := newTestGenerator()

	key := g.ImageKey("noext")
	assert.Regexp(t, regexp.MustCompile(`^gallery/images/[0-9a-f]{16}$`), key)
}

func TestImageKey_SanitizesExtension(t *testing.T) {
	g := newTestGenerator()

	// 扩展名里的非法字符被过滤
	key := g.ImageKey("weird.j%p g")
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)

	// 全非法字符的扩展名整体丢弃
	key = g.ImageKey("weird.%$!")
	assert.Regexp(t, regexp.MustCompile(`^gallery/images/[0-9a-f]{16}$`), key)
}

// --- 测试缩略图键 ---

func TestFrameKey(t *testing.T) {
	g := newTestGenerator()
	assert.Regexp(t, regexp.MustCompile(`^gallery/thumbnails/video_[0-9a-f]{16}\.jpg$`), g.FrameKey())
}

func TestPlaceholderKey(t *testing.T) {
	g := newTestGenerator()
	assert.Regexp(t, regexp.MustCompile(`^gallery/thumbnails/placeholder_[0-9a-f]{16}\.jpg$`), g.PlaceholderKey())
}

func TestSampleFrameKey(t *testing.T) {
	g := newTestGenerator()
	assert.Regexp(t, regexp.MustCompile(`^gallery/thumbnails/video_[0-9a-f]{16}_3\.jpg$`), g.SampleFrameKey(3))
}
