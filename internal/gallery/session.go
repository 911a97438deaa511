package gallery

import (
	"github.com/devanderson/media-gallery/internal/staging"
)

// Session 单次请求的会话上下文
// 字段配置缓存、表单状态与暂存槽位都挂在会话上，不引入任何全局状态
type Session struct {
	notifier Notifier
	events   Events

	fieldConfigs map[string]FieldConfig
	state        map[string]interface{}
	staged       map[string]*staging.StagedFile
}

// NewSession 创建新会话，notifier/events 为 nil 时使用空实现
func NewSession(notifier Notifier, events Events) *Session {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if events == nil {
		events = NopEvents{}
	}
	return &Session{
		notifier:     notifier,
		events:       events,
		fieldConfigs: make(map[string]FieldConfig),
		state:        make(map[string]interface{}),
		staged:       make(map[string]*staging.StagedFile),
	}
}

// Notifier 返回会话的通知出口
func (s *Session) Notifier() Notifier {
	return s.notifier
}

// Events 返回会话的事件出口
func (s *Session) Events() Events {
	return s.events
}

// cachedConfig 读取会话内缓存的字段配置
func (s *Session) cachedConfig(key string) (FieldConfig, bool) {
	cfg, ok := s.fieldConfigs[key]
	return cfg, ok
}

// cacheConfig 在会话内缓存字段配置
func (s *Session) cacheConfig(key string, cfg FieldConfig) {
	s.fieldConfigs[key] = cfg
}

// SetState 写入字段的表单状态值
func (s *Session) SetState(key string, value interface{}) {
	s.state[key] = value
}

// State 读取字段的表单状态值
func (s *Session) State(key string) interface{} {
	return s.state[key]
}

// Stage 将暂存文件放入槽位，已有文件被替换时由调用方负责清理
func (s *Session) Stage(slot string, f *staging.StagedFile) {
	s.staged[slot] = f
}

// Staged 查看槽位中的暂存文件，不移除
func (s *Session) Staged(slot string) *staging.StagedFile {
	return s.staged[slot]
}

// TakeStaged 取出并清空槽位
func (s *Session) TakeStaged(slot string) *staging.StagedFile {
	f := s.staged[slot]
	delete(s.staged, slot)
	return f
}
