package gallery

import (
	"context"
	"fmt"
	"log"

	"github.com/devanderson/media-gallery/cache"
	"github.com/devanderson/media-gallery/database/models"
	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
	"github.com/devanderson/media-gallery/storage"
)

// DeleteService 媒体删除服务
// 记录软删除在事务中完成，底层文件恰好删除一次（存在性检查兜底）
type DeleteService struct {
	repo  *mediarepo.Repository
	store storage.Provider
	cache cache.Provider
}

// NewDeleteService 创建媒体删除服务
func NewDeleteService(repo *mediarepo.Repository, store storage.Provider, cacheProvider cache.Provider) *DeleteService {
	return &DeleteService{
		repo:  repo,
		store: store,
		cache: cacheProvider,
	}
}

// Delete 删除指定类型的媒体记录及其文件
func (s *DeleteService) Delete(ctx context.Context, mediaType models.MediaType, id uint) error {
	switch {
	case mediaType.IsVideo():
		return s.deleteVideo(ctx, id)
	default:
		return s.deleteImage(ctx, id)
	}
}

// deleteImage 软删除图片记录并清理文件
func (s *DeleteService) deleteImage(ctx context.Context, id uint) error {
	media, err := s.repo.WithContext(ctx).DeleteImage(id)
	if err != nil {
		return fmt.Errorf("failed to delete image %d: %w", id, err)
	}

	s.deleteBlobOnce(ctx, media.Path)
	s.invalidate(ctx, models.MediaTypeImage, id)
	return nil
}

// deleteVideo 软删除视频记录并清理视频文件和缩略图
func (s *DeleteService) deleteVideo(ctx context.Context, id uint) error {
	video, err := s.repo.WithContext(ctx).DeleteVideo(id)
	if err != nil {
		return fmt.Errorf("failed to delete video %d: %w", id, err)
	}

	s.deleteBlobOnce(ctx, video.Media.Path)
	if video.ThumbnailPath != "" {
		s.deleteBlobOnce(ctx, video.ThumbnailPath)
	}
	s.invalidate(ctx, models.MediaTypeVideo, id)
	return nil
}

// deleteBlobOnce 删除存储中的文件，已不存在时静默跳过
func (s *DeleteService) deleteBlobOnce(ctx context.Context, key string) {
	if key == "" {
		return
	}
	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		log.Printf("[Gallery] Existence check failed for '%s': %v", key, err)
		return
	}
	if !exists {
		return
	}
	if err := s.store.DeleteWithContext(ctx, key); err != nil {
		log.Printf("[Gallery] Failed to delete blob '%s': %v", key, err)
	}
}

// invalidate 清除投影缓存
func (s *DeleteService) invalidate(ctx context.Context, mediaType models.MediaType, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, projectionCacheKey(mediaType, id)); err != nil {
		log.Printf("[Gallery] Failed to invalidate projection cache for %s %d: %v", mediaType, id, err)
	}
}
