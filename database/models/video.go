package models

import (
	"github.com/devanderson/media-gallery/config"
	"gorm.io/gorm"
)

// Video 视频明细记录 - 与 Media 封套一对一
// ThumbnailPath 为空表示缩略图尚未生成或生成失败
type Video struct {
	gorm.Model
	MediaID       uint    `gorm:"not null;uniqueIndex"`
	Media         Media   `gorm:"constraint:OnDelete:CASCADE"`
	ThumbnailPath string  `gorm:"type:text"`
	Duration      float64 `gorm:"not null;default:0"`
	Codec         string  `gorm:"type:varchar(32)"`
	Width         int     `gorm:"not null;default:0"`
	Height        int     `gorm:"not null;default:0"`
}

// TableName 表名可通过配置覆盖
func (Video) TableName() string {
	if name := config.Get().TableVideos; name != "" {
		return name
	}
	return "videos"
}

// HasThumbnail 是否已有可用缩略图
func (v *Video) HasThumbnail() bool {
	return v.ThumbnailPath != ""
}

// VideoMetadata 视频元数据的类型化视图
type VideoMetadata struct {
	Duration float64 `mapstructure:"duration"`
	Codec    string  `mapstructure:"codec"`
	Width    int     `mapstructure:"width"`
	Height   int     `mapstructure:"height"`
}
