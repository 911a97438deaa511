package gallery

import (
	"encoding/json"
	"strconv"
	"strings"
)

// IDSet 有序去重的媒体ID集合
// 表单状态中的选择值经由 ParseIDSet 进入类型化边界，之后只以 IDSet 流转
type IDSet struct {
	ids  []uint
	seen map[uint]struct{}
}

// NewIDSet 创建ID集合
func NewIDSet(ids ...uint) *IDSet {
	set := &IDSet{seen: make(map[uint]struct{})}
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

// ParseIDSet 从任意表单状态值解析ID集合
// 接受 JSON 字符串、数组、单个标量；非数字与空值被丢弃；保序去重
func ParseIDSet(raw interface{}) *IDSet {
	set := NewIDSet()
	if raw == nil {
		return set
	}

	switch v := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return set
		}
		// 先尝试按 JSON 数组解析
		var arr []interface{}
		if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
			for _, item := range arr {
				set.addValue(item)
			}
			return set
		}
		set.addValue(trimmed)

	case []interface{}:
		for _, item := range v {
			set.addValue(item)
		}

	case []uint:
		for _, id := range v {
			set.Add(id)
		}

	case []int:
		for _, id := range v {
			if id > 0 {
				set.Add(uint(id))
			}
		}

	default:
		set.addValue(v)
	}

	return set
}

// addValue 尝试把单个标量并入集合
func (s *IDSet) addValue(value interface{}) {
	switch v := value.(type) {
	case nil:
		return
	case float64:
		if v > 0 && v == float64(uint(v)) {
			s.Add(uint(v))
		}
	case int:
		if v > 0 {
			s.Add(uint(v))
		}
	case int64:
		if v > 0 {
			s.Add(uint(v))
		}
	case uint:
		if v > 0 {
			s.Add(v)
		}
	case json.Number:
		if id, err := strconv.ParseUint(v.String(), 10, 64); err == nil && id > 0 {
			s.Add(uint(id))
		}
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return
		}
		if id, err := strconv.ParseUint(trimmed, 10, 64); err == nil && id > 0 {
			s.Add(uint(id))
		}
	}
}

// Add 追加ID，已存在时忽略
func (s *IDSet) Add(id uint) {
	if id == 0 {
		return
	}
	if s.seen == nil {
		s.seen = make(map[uint]struct{})
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// Contains 检查ID是否在集合中
func (s *IDSet) Contains(id uint) bool {
	_, ok := s.seen[id]
	return ok
}

// IDs 返回保持插入顺序的ID切片
func (s *IDSet) IDs() []uint {
	out := make([]uint, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len 返回集合大小
func (s *IDSet) Len() int {
	return len(s.ids)
}

// Empty 集合是否为空
func (s *IDSet) Empty() bool {
	return len(s.ids) == 0
}
