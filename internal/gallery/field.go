package gallery

import (
	"log"
	"strings"

	"github.com/devanderson/media-gallery/database/models"
)

// FieldConfig 媒体字段配置
type FieldConfig struct {
	MediaType     models.MediaType `json:"media_type" mapstructure:"media_type"`
	AllowMultiple bool             `json:"allow_multiple" mapstructure:"allow_multiple"`
	AllowUpload   bool             `json:"allow_upload" mapstructure:"allow_upload"`
	MaxItems      *int             `json:"max_items,omitempty" mapstructure:"max_items"`
}

// FieldDescriptor 字段描述符 - 字段自述其状态路径和配置
type FieldDescriptor interface {
	Path() string
	Config() FieldConfig
}

// FieldSource 字段配置来源，按优先级依次探测
type FieldSource interface {
	Lookup(key string) (FieldConfig, bool)
}

// Registry 基于注册表的字段配置来源
type Registry struct {
	fields map[string]FieldConfig
}

// NewRegistry 创建空的字段注册表
func NewRegistry() *Registry {
	return &Registry{fields: make(map[string]FieldConfig)}
}

// Register 注册字段配置
func (r *Registry) Register(key string, cfg FieldConfig) {
	r.fields[DataKey(key)] = cfg
}

// RegisterDescriptor 注册字段描述符
func (r *Registry) RegisterDescriptor(d FieldDescriptor) {
	r.Register(d.Path(), d.Config())
}

// Lookup 查询字段配置
func (r *Registry) Lookup(key string) (FieldConfig, bool) {
	cfg, ok := r.fields[key]
	return cfg, ok
}

// Len 返回已注册字段数量
func (r *Registry) Len() int {
	return len(r.fields)
}

// DataKey 将状态路径归一化为字段键，去掉 "data." 前缀
func DataKey(statePath string) string {
	return strings.TrimPrefix(statePath, "data.")
}

// Resolver 字段配置解析器
// 依次探测配置来源，全部未命中时按字段名推断；结果缓存在会话内
type Resolver struct {
	sources  []FieldSource
	inferrer bool
}

// NewResolver 创建解析器，sources 按优先级排列
func NewResolver(sources ...FieldSource) *Resolver {
	return &Resolver{
		sources:  sources,
		inferrer: true,
	}
}

// Resolve 解析状态路径对应的字段配置
func (r *Resolver) Resolve(session *Session, statePath string) (FieldConfig, error) {
	key := DataKey(statePath)

	if cfg, ok := session.cachedConfig(key); ok {
		return cfg, nil
	}

	for _, source := range r.sources {
		if cfg, ok := r.probe(source, key); ok {
			session.cacheConfig(key, cfg)
			return cfg, nil
		}
	}

	if !r.inferrer {
		return FieldConfig{}, ErrFieldConfigNotFound
	}

	cfg := inferFieldConfig(key)
	session.cacheConfig(key, cfg)
	return cfg, nil
}

// probe 探测单个来源，来源内部的 panic 只记录不向外传播
func (r *Resolver) probe(source FieldSource, key string) (cfg FieldConfig, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Gallery] Field source panicked while resolving '%s': %v", key, rec)
			ok = false
		}
	}()
	return source.Lookup(key)
}

// inferFieldConfig 按字段名推断配置：名称含 "video" 视为视频字段，其余为图片
func inferFieldConfig(key string) FieldConfig {
	mediaType := models.MediaTypeImage
	if strings.Contains(strings.ToLower(key), "video") {
		mediaType = models.MediaTypeVideo
	}
	return FieldConfig{
		MediaType:     mediaType,
		AllowMultiple: true,
		AllowUpload:   true,
		MaxItems:      nil,
	}
}
