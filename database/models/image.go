package models

import (
	"github.com/devanderson/media-gallery/config"
	"gorm.io/gorm"
)

// Image 图片明细记录 - 与 Media 封套一对一
type Image struct {
	gorm.Model
	MediaID uint   `gorm:"not null;uniqueIndex"`
	Media   Media  `gorm:"constraint:OnDelete:CASCADE"`
	Width   int    `gorm:"not null;default:0"`
	Height  int    `gorm:"not null;default:0"`
	AltText string `gorm:"type:text"`
}

// TableName 表名可通过配置覆盖
func (Image) TableName() string {
	if name := config.Get().TableImages; name != "" {
		return name
	}
	return "images"
}

// ImageMetadata 图片元数据的类型化视图
type ImageMetadata struct {
	Width   int    `mapstructure:"width"`
	Height  int    `mapstructure:"height"`
	AltText string `mapstructure:"alt_text"`
}
