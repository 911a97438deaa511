package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/devanderson/media-gallery/config"
	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"
)

// MediaType 媒体类型
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// IsVideo 是否为视频类型
func (t MediaType) IsVideo() bool {
	return t == MediaTypeVideo
}

// Valid 检查类型是否合法
func (t MediaType) Valid() bool {
	return t == MediaTypeImage || t == MediaTypeVideo
}

// JSONMap 以 JSON 文本持久化的键值映射
type JSONMap map[string]interface{}

// Value 实现 driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan 实现 sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}
}

// Media 媒体封套 - 所有上传资产共享的通用记录
// path 在未删除记录中唯一；删除记录时必须恰好删除一次底层文件
type Media struct {
	gorm.Model
	Type         MediaType `gorm:"type:varchar(16);not null;index"`
	Path         string    `gorm:"uniqueIndex:idx_media_path;not null"`
	OriginalName string    `gorm:"not null"`
	MimeType     string    `gorm:"not null"`
	Size         int64     `gorm:"not null"`
	Metadata     JSONMap   `gorm:"type:text"`
}

// TableName 表名可通过配置覆盖
func (Media) TableName() string {
	if name := config.Get().TableMedia; name != "" {
		return name
	}
	return "media"
}

// FormattedSize 格式化文件大小
func (m *Media) FormattedSize() string {
	bytes := m.Size

	switch {
	case bytes >= 1073741824:
		return fmt.Sprintf("%.2f GB", float64(bytes)/1073741824)
	case bytes >= 1048576:
		return fmt.Sprintf("%.2f MB", float64(bytes)/1048576)
	case bytes >= 1024:
		return fmt.Sprintf("%.2f KB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%d bytes", bytes)
}

// DecodeMetadata 将 metadata 解码为类型化结构
func (m *Media) DecodeMetadata(dest interface{}) error {
	if m.Metadata == nil {
		return nil
	}
	return mapstructure.Decode(map[string]interface{}(m.Metadata), dest)
}
