package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/devanderson/media-gallery/database"
	"github.com/devanderson/media-gallery/database/models"
	"gorm.io/gorm"
)

// ErrMediaNotFound 媒体记录不存在
var ErrMediaNotFound = errors.New("media not found")

// Repository 媒体仓库 - 封装所有媒体相关的数据库操作
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的媒体仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// CreateImage 创建图片记录 - 封套与明细在同一事务中写入
func (r *Repository) CreateImage(media *models.Media, image *models.Image) error {
	media.Type = models.MediaTypeImage
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(media).Error; err != nil {
			return fmt.Errorf("failed to create media record: %w", err)
		}
		image.MediaID = media.ID
		if err := tx.Create(image).Error; err != nil {
			return fmt.Errorf("failed to create image record: %w", err)
		}
		image.Media = *media
		return nil
	})
}

// CreateVideo 创建视频记录 - 封套与明细在同一事务中写入
func (r *Repository) CreateVideo(media *models.Media, video *models.Video) error {
	media.Type = models.MediaTypeVideo
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(media).Error; err != nil {
			return fmt.Errorf("failed to create media record: %w", err)
		}
		video.MediaID = media.ID
		if err := tx.Create(video).Error; err != nil {
			return fmt.Errorf("failed to create video record: %w", err)
		}
		video.Media = *media
		return nil
	})
}

// GetMediaByID 通过ID获取媒体封套
func (r *Repository) GetMediaByID(id uint) (*models.Media, error) {
	var media models.Media
	err := r.db.DB().First(&media, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &media, nil
}

// GetImageByID 通过ID获取图片及其封套
func (r *Repository) GetImageByID(id uint) (*models.Image, error) {
	var image models.Image
	err := r.db.DB().Preload("Media").First(&image, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &image, nil
}

// GetVideoByID 通过ID获取视频及其封套
func (r *Repository) GetVideoByID(id uint) (*models.Video, error) {
	var video models.Video
	err := r.db.DB().Preload("Media").First(&video, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &video, nil
}

// PageImages 分页获取图片列表，按创建时间倒序
func (r *Repository) PageImages(page, pageSize int) ([]*models.Image, int64, error) {
	var images []*models.Image
	var total int64
	db := r.db.DB().Model(&models.Image{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Preload("Media").Order("created_at desc").Offset(offset).Limit(pageSize).Find(&images).Error
	return images, total, err
}

// PageVideos 分页获取视频列表，按创建时间倒序
func (r *Repository) PageVideos(page, pageSize int) ([]*models.Video, int64, error) {
	var videos []*models.Video
	var total int64
	db := r.db.DB().Model(&models.Video{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Preload("Media").Order("created_at desc").Offset(offset).Limit(pageSize).Find(&videos).Error
	return videos, total, err
}

// LiveImagesByIDs 按给定顺序返回仍然存活的图片，已删除的ID被静默丢弃
func (r *Repository) LiveImagesByIDs(ids []uint) ([]*models.Image, error) {
	if len(ids) == 0 {
		return []*models.Image{}, nil
	}

	var images []*models.Image
	if err := r.db.DB().Preload("Media").Where("id IN ?", ids).Find(&images).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.Image, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}

	ordered := make([]*models.Image, 0, len(images))
	for _, id := range ids {
		if img, ok := byID[id]; ok {
			ordered = append(ordered, img)
		}
	}
	return ordered, nil
}

// LiveVideosByIDs 按给定顺序返回仍然存活的视频，已删除的ID被静默丢弃
func (r *Repository) LiveVideosByIDs(ids []uint) ([]*models.Video, error) {
	if len(ids) == 0 {
		return []*models.Video{}, nil
	}

	var videos []*models.Video
	if err := r.db.DB().Preload("Media").Where("id IN ?", ids).Find(&videos).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	ordered := make([]*models.Video, 0, len(videos))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered, nil
}

// UpdateVideoThumbnail 更新视频缩略图路径
func (r *Repository) UpdateVideoThumbnail(videoID uint, thumbnailPath string, duration float64) error {
	updates := map[string]interface{}{
		"thumbnail_path": thumbnailPath,
	}
	if duration > 0 {
		updates["duration"] = duration
	}
	result := r.db.DB().Model(&models.Video{}).Where("id = ?", videoID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update video thumbnail: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMediaNotFound
	}
	return nil
}

// UpdateImage 更新图片明细及其封套
func (r *Repository) UpdateImage(image *models.Image) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&image.Media).Error; err != nil {
			return fmt.Errorf("failed to update media record: %w", err)
		}
		if err := tx.Save(image).Error; err != nil {
			return fmt.Errorf("failed to update image record: %w", err)
		}
		return nil
	})
}

// UpdateVideo 更新视频明细及其封套
func (r *Repository) UpdateVideo(video *models.Video) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&video.Media).Error; err != nil {
			return fmt.Errorf("failed to update media record: %w", err)
		}
		if err := tx.Save(video).Error; err != nil {
			return fmt.Errorf("failed to update video record: %w", err)
		}
		return nil
	})
}

// DeleteImage 软删除图片及其封套，返回封套用于清理存储
func (r *Repository) DeleteImage(id uint) (*models.Media, error) {
	var image models.Image
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Media").First(&image, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMediaNotFound
			}
			return err
		}
		if err := tx.Delete(&image).Error; err != nil {
			return fmt.Errorf("failed to delete image record: %w", err)
		}
		if err := tx.Delete(&models.Media{}, image.MediaID).Error; err != nil {
			return fmt.Errorf("failed to delete media record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &image.Media, nil
}

// DeleteVideo 软删除视频及其封套，返回明细用于清理存储与缩略图
func (r *Repository) DeleteVideo(id uint) (*models.Video, error) {
	var video models.Video
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Media").First(&video, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMediaNotFound
			}
			return err
		}
		if err := tx.Delete(&video).Error; err != nil {
			return fmt.Errorf("failed to delete video record: %w", err)
		}
		if err := tx.Delete(&models.Media{}, video.MediaID).Error; err != nil {
			return fmt.Errorf("failed to delete media record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// CountByType 统计指定类型的媒体数量
func (r *Repository) CountByType(mediaType models.MediaType) (int64, error) {
	var count int64
	err := r.db.DB().Model(&models.Media{}).Where("type = ?", mediaType).Count(&count).Error
	return count, err
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: &contextProvider{Provider: r.db, ctx: ctx}}
}

// contextProvider 包装 Provider 添加上下文
type contextProvider struct {
	database.Provider
	ctx context.Context
}

func (c *contextProvider) DB() *gorm.DB {
	return c.Provider.WithContext(c.ctx)
}

func (c *contextProvider) Transaction(fn database.TxFunc) error {
	return c.Provider.TransactionWithContext(c.ctx, fn)
}
