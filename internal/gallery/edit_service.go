package gallery

import (
	"context"
	"fmt"
	"log"

	"github.com/devanderson/media-gallery/cache"
	"github.com/devanderson/media-gallery/config"
	"github.com/devanderson/media-gallery/database/models"
	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
	"github.com/devanderson/media-gallery/internal/staging"
	"github.com/devanderson/media-gallery/storage"
	"github.com/devanderson/media-gallery/utils/generator"
	"github.com/devanderson/media-gallery/utils/validator"
)

// EditedSlotSuffix 编辑替换暂存槽位后缀
const EditedSlotSuffix = "_edited_media"

// EditService 媒体编辑服务 - 就地替换已入库图片的内容
// Media ID 保持不变，已有的父记录关联不受影响
type EditService struct {
	staging *staging.Store
	repo    *mediarepo.Repository
	store   storage.Provider
	keys    *generator.KeyGenerator
	cache   cache.Provider
	cfg     *config.Config
}

// NewEditService 创建媒体编辑服务
func NewEditService(
	stagingStore *staging.Store,
	repo *mediarepo.Repository,
	store storage.Provider,
	keys *generator.KeyGenerator,
	cacheProvider cache.Provider,
	cfg *config.Config,
) *EditService {
	return &EditService{
		staging: stagingStore,
		repo:    repo,
		store:   store,
		keys:    keys,
		cache:   cacheProvider,
		cfg:     cfg,
	}
}

// ApplyEdit 用暂存文件替换指定图片的内容
func (s *EditService) ApplyEdit(ctx context.Context, session *Session, imageID uint, fileName, statePath string) error {
	key := DataKey(statePath)
	slot := key + EditedSlotSuffix

	staged := session.Staged(slot)
	if staged == nil {
		log.Printf("[Gallery] No staged file in slot '%s' for edit of image %d", slot, imageID)
		session.Notifier().Danger("Update failed", "The edited file is no longer available.")
		return ErrStagedFileMissing
	}

	img, err := s.repo.GetImageByID(imageID)
	if err != nil {
		log.Printf("[Gallery] Image %d not found for edit: %v", imageID, err)
		session.Notifier().Danger("Update failed", "The image could not be found.")
		return err
	}

	detected, err := s.validateStaged(staged)
	if err != nil {
		session.Notifier().Danger("Update failed", userMessageFor(err))
		return err
	}

	originalName := fileName
	if originalName == "" {
		originalName = staged.OriginalName
	}

	newKey := s.keys.ImageKey(originalName)
	file, err := s.staging.Open(staged)
	if err != nil {
		session.Notifier().Danger("Update failed", "The edited file could not be read.")
		return fmt.Errorf("failed to open staged file: %w", err)
	}
	saveErr := s.store.SaveWithContext(ctx, newKey, file)
	_ = file.Close()
	if saveErr != nil {
		session.Notifier().Danger("Update failed", "The edited file could not be stored.")
		return fmt.Errorf("failed to store blob '%s': %w", newKey, saveErr)
	}

	oldKey := img.Media.Path

	img.Media.Path = newKey
	img.Media.OriginalName = originalName
	img.Media.MimeType = detected
	img.Media.Size = staged.Size
	width, height := s.decodeDimensions(staged)
	img.Width = width
	img.Height = height
	img.Media.Metadata = models.JSONMap{"width": width, "height": height}

	if err := s.repo.UpdateImage(img); err != nil {
		// 更新失败时删掉刚写入的新文件，旧文件保持可用
		if delErr := s.store.DeleteWithContext(ctx, newKey); delErr != nil {
			log.Printf("[Gallery] Compensation delete failed for '%s': %v", newKey, delErr)
		}
		session.Notifier().Danger("Update failed", "The image record could not be updated.")
		return fmt.Errorf("failed to update image %d: %w", imageID, err)
	}

	s.deleteOldBlob(ctx, oldKey)
	s.invalidateProjection(ctx, img.ID)

	s.staging.Discard(session.TakeStaged(slot))
	session.Notifier().Success("Media updated", originalName)
	return nil
}

// validateStaged 校验暂存文件为允许的图片类型，返回嗅探到的 MIME
func (s *EditService) validateStaged(staged *staging.StagedFile) (string, error) {
	if max := s.cfg.ImageMaxSizeMB; max > 0 && staged.Size > int64(max)*1024*1024 {
		return "", fmt.Errorf("%w: %d bytes exceeds %d MB", ErrFileTooLarge, staged.Size, max)
	}

	file, err := s.staging.Open(staged)
	if err != nil {
		return "", fmt.Errorf("failed to open staged file: %w", err)
	}
	defer func() { _ = file.Close() }()

	ok, detected, err := validator.ValidateFile(file, s.cfg.ImageAllowedMimeList())
	if err != nil {
		return "", fmt.Errorf("failed to sniff staged file: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, detected)
	}
	return detected, nil
}

// decodeDimensions 读取图片尺寸，失败时记为零值
func (s *EditService) decodeDimensions(staged *staging.StagedFile) (int, int) {
	file, err := s.staging.Open(staged)
	if err != nil {
		return 0, 0
	}
	defer func() { _ = file.Close() }()

	cfg, err := decodeImageConfig(file)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// invalidateProjection 清除被替换图片的投影缓存，旧投影的地址已随旧文件失效
func (s *EditService) invalidateProjection(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, projectionCacheKey(models.MediaTypeImage, id)); err != nil {
		log.Printf("[Gallery] Failed to invalidate projection cache for image %d: %v", id, err)
	}
}

// deleteOldBlob 删除被替换的旧文件，先检查存在避免重复删除报错
func (s *EditService) deleteOldBlob(ctx context.Context, oldKey string) {
	if oldKey == "" {
		return
	}
	exists, err := s.store.Exists(ctx, oldKey)
	if err != nil || !exists {
		return
	}
	if err := s.store.DeleteWithContext(ctx, oldKey); err != nil {
		log.Printf("[Gallery] Failed to delete replaced blob '%s': %v", oldKey, err)
	}
}
