package gallery

import (
	"testing"

	"github.com/devanderson/media-gallery/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panickingSource 总是 panic 的配置来源
type panickingSource struct{}

func (panickingSource) Lookup(key string) (FieldConfig, bool) {
	panic("source exploded")
}

// --- 测试 DataKey ---

func TestDataKey(t *testing.T) {
	assert.Equal(t, "gallery", DataKey("data.gallery"))
	assert.Equal(t, "gallery", DataKey("gallery"))
	assert.Equal(t, "video_gallery", DataKey("data.video_gallery"))
}

// --- 测试 Registry ---

func TestRegistry_LookupWithPrefixedKey(t *testing.T) {
	registry := NewRegistry()
	registry.Register("data.gallery", FieldConfig{MediaType: models.MediaTypeImage, AllowMultiple: true})

	cfg, ok := registry.Lookup("gallery")
	require.True(t, ok)
	assert.Equal(t, models.MediaTypeImage, cfg.MediaType)
}

// --- 测试 Resolver ---

func TestResolver_UsesRegisteredConfig(t *testing.T) {
	registry := NewRegistry()
	registry.Register("gallery", FieldConfig{
		MediaType:     models.MediaTypeVideo,
		AllowMultiple: false,
		AllowUpload:   true,
	})
	resolver := NewResolver(registry)
	session := NewSession(nil, nil)

	cfg, err := resolver.Resolve(session, "data.gallery")
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeVideo, cfg.MediaType)
	assert.False(t, cfg.AllowMultiple)
}

func TestResolver_InfersVideoFromName(t *testing.T) {
	resolver := NewResolver()
	session := NewSession(nil, nil)

	cfg, err := resolver.Resolve(session, "data.video_gallery")
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeVideo, cfg.MediaType)
	assert.True(t, cfg.AllowMultiple)
	assert.True(t, cfg.AllowUpload)
	assert.Nil(t, cfg.MaxItems)
}

func TestResolver_InfersImageByDefault(t *testing.T) {
	resolver := NewResolver()
	session := NewSession(nil, nil)

	cfg, err := resolver.Resolve(session, "data.photos")
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeImage, cfg.MediaType)
}

func TestResolver_SurvivesPanickingSource(t *testing.T) {
	registry := NewRegistry()
	registry.Register("gallery", FieldConfig{MediaType: models.MediaTypeImage})
	resolver := NewResolver(panickingSource{}, registry)
	session := NewSession(nil, nil)

	cfg, err := resolver.Resolve(session, "gallery")
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeImage, cfg.MediaType)
}

func TestResolver_CachesInSession(t *testing.T) {
	registry := NewRegistry()
	registry.Register("gallery", FieldConfig{MediaType: models.MediaTypeVideo})
	resolver := NewResolver(registry)
	session := NewSession(nil, nil)

	first, err := resolver.Resolve(session, "gallery")
	require.NoError(t, err)

	// 来源变更后缓存仍返回首次解析结果
	registry.Register("gallery", FieldConfig{MediaType: models.MediaTypeImage})
	second, err := resolver.Resolve(session, "gallery")
	require.NoError(t, err)
	assert.Equal(t, first.MediaType, second.MediaType)
}

func TestResolver_CacheIsPerSession(t *testing.T) {
	registry := NewRegistry()
	registry.Register("gallery", FieldConfig{MediaType: models.MediaTypeVideo})
	resolver := NewResolver(registry)

	_, err := resolver.Resolve(NewSession(nil, nil), "gallery")
	require.NoError(t, err)

	registry.Register("gallery", FieldConfig{MediaType: models.MediaTypeImage})
	cfg, err := resolver.Resolve(NewSession(nil, nil), "gallery")
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeImage, cfg.MediaType)
}
