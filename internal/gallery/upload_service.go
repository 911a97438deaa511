package gallery

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/devanderson/media-gallery/config"
	"github.com/devanderson/media-gallery/database/models"
	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
	"github.com/devanderson/media-gallery/internal/staging"
	"github.com/devanderson/media-gallery/internal/thumbnail"
	"github.com/devanderson/media-gallery/storage"
	"github.com/devanderson/media-gallery/utils/generator"
	"github.com/devanderson/media-gallery/utils/validator"
)

// NewUploadSlotSuffix 新上传暂存槽位后缀
const NewUploadSlotSuffix = "_new_media"

// UploadService 上传编排服务
// 负责新媒体从暂存到入库的完整提交流程
type UploadService struct {
	resolver *Resolver
	staging  *staging.Store
	repo     *mediarepo.Repository
	store    storage.Provider
	keys     *generator.KeyGenerator
	thumbs   *thumbnail.Generator
	cfg      *config.Config
}

// NewUploadService 创建上传编排服务
func NewUploadService(
	resolver *Resolver,
	stagingStore *staging.Store,
	repo *mediarepo.Repository,
	store storage.Provider,
	keys *generator.KeyGenerator,
	thumbs *thumbnail.Generator,
	cfg *config.Config,
) *UploadService {
	return &UploadService{
		resolver: resolver,
		staging:  stagingStore,
		repo:     repo,
		store:    store,
		keys:     keys,
		thumbs:   thumbs,
		cfg:      cfg,
	}
}

// CommitNewUpload 提交字段的新上传
// 入库在单个事务中完成；事务失败时已写入的文件会被补偿删除
func (s *UploadService) CommitNewUpload(ctx context.Context, session *Session, statePath string) (*Projection, error) {
	fieldCfg, err := s.resolver.Resolve(session, statePath)
	if err != nil {
		session.Notifier().Danger("Upload failed", "Field configuration could not be resolved.")
		return nil, err
	}

	// 禁用上传的字段只读，拒绝且不做任何变更
	if !fieldCfg.AllowUpload {
		session.Notifier().Warning("Upload disabled", "This field does not accept uploads.")
		return nil, ErrUploadNotAllowed
	}

	key := DataKey(statePath)
	selection := ParseIDSet(session.State(key))

	// 单选字段已有选中项时拒绝，不做任何变更
	if !fieldCfg.AllowMultiple && !selection.Empty() {
		session.Notifier().Warning("Limit reached", "This field only accepts a single item.")
		return nil, ErrLimitReached
	}
	if fieldCfg.MaxItems != nil && selection.Len() >= *fieldCfg.MaxItems {
		session.Notifier().Warning("Limit reached", fmt.Sprintf("This field accepts at most %d items.", *fieldCfg.MaxItems))
		return nil, ErrLimitReached
	}

	slot := key + NewUploadSlotSuffix
	staged := session.Staged(slot)
	if staged == nil {
		log.Printf("[Gallery] No staged file in slot '%s'", slot)
		session.Notifier().Danger("Upload failed", "The uploaded file is no longer available.")
		return nil, ErrStagedFileMissing
	}

	if err := s.validateStaged(staged, fieldCfg.MediaType); err != nil {
		session.Notifier().Danger("Upload failed", userMessageFor(err))
		return nil, err
	}

	projection, err := s.commit(ctx, staged, fieldCfg.MediaType)
	if err != nil {
		log.Printf("[Gallery] Commit failed for field '%s': %v", key, err)
		session.Notifier().Danger("Upload failed", "The file could not be stored.")
		return nil, err
	}

	// 追加选中项并清空暂存槽位
	selection.Add(projection.ID)
	session.SetState(key, selection.IDs())
	s.staging.Discard(session.TakeStaged(slot))

	session.Notifier().Success("Upload complete", staged.OriginalName)
	session.Events().MediaAdded(*projection)

	return projection, nil
}

// validateStaged 校验暂存文件的大小和实际内容类型
func (s *UploadService) validateStaged(staged *staging.StagedFile, mediaType models.MediaType) error {
	var maxSizeMB int
	var allowed []string
	if mediaType.IsVideo() {
		maxSizeMB = s.cfg.VideoMaxSizeMB
		allowed = s.cfg.VideoAllowedMimeList()
	} else {
		maxSizeMB = s.cfg.ImageMaxSizeMB
		allowed = s.cfg.ImageAllowedMimeList()
	}

	if maxSizeMB > 0 && staged.Size > int64(maxSizeMB)*1024*1024 {
		return fmt.Errorf("%w: %d bytes exceeds %d MB", ErrFileTooLarge, staged.Size, maxSizeMB)
	}

	file, err := s.staging.Open(staged)
	if err != nil {
		return fmt.Errorf("failed to open staged file: %w", err)
	}
	defer func() { _ = file.Close() }()

	ok, detected, err := validator.ValidateFile(file, allowed)
	if err != nil {
		return fmt.Errorf("failed to sniff staged file: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, detected)
	}

	// 以嗅探结果为准，不信任客户端声明的类型
	staged.MimeType = detected
	return nil
}

// commit 将暂存文件写入存储并入库
func (s *UploadService) commit(ctx context.Context, staged *staging.StagedFile, mediaType models.MediaType) (*Projection, error) {
	var storageKey string
	if mediaType.IsVideo() {
		storageKey = s.keys.VideoKey(staged.OriginalName)
	} else {
		storageKey = s.keys.ImageKey(staged.OriginalName)
	}

	file, err := s.staging.Open(staged)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged file: %w", err)
	}

	saveErr := s.store.SaveWithContext(ctx, storageKey, file)
	_ = file.Close()
	if saveErr != nil {
		return nil, fmt.Errorf("failed to store blob '%s': %w", storageKey, saveErr)
	}

	media := &models.Media{
		Path:         storageKey,
		OriginalName: staged.OriginalName,
		MimeType:     staged.MimeType,
		Size:         staged.Size,
	}

	if mediaType.IsVideo() {
		return s.commitVideo(ctx, media, staged, storageKey)
	}
	return s.commitImage(media, staged, storageKey)
}

// commitImage 入库图片记录，事务失败时删除已写入的文件
func (s *UploadService) commitImage(media *models.Media, staged *staging.StagedFile, storageKey string) (*Projection, error) {
	width, height := s.decodeDimensions(staged)
	media.Metadata = models.JSONMap{"width": width, "height": height}

	img := &models.Image{Width: width, Height: height}
	if err := s.repo.CreateImage(media, img); err != nil {
		s.compensateBlob(storageKey)
		return nil, err
	}

	return &Projection{
		ID:           img.ID,
		URL:          s.store.URL(storageKey),
		OriginalName: media.OriginalName,
		IsVideo:      false,
	}, nil
}

// commitVideo 入库视频记录并生成缩略图
// 缩略图在事务提交后生成，失败只降级不回滚
func (s *UploadService) commitVideo(ctx context.Context, media *models.Media, staged *staging.StagedFile, storageKey string) (*Projection, error) {
	video := &models.Video{}
	if err := s.repo.CreateVideo(media, video); err != nil {
		s.compensateBlob(storageKey)
		return nil, err
	}

	projection := &Projection{
		ID:           video.ID,
		URL:          s.store.URL(storageKey),
		OriginalName: media.OriginalName,
		IsVideo:      true,
	}

	thumbKey := s.thumbs.Generate(ctx, storageKey, staged.OriginalName, s.cfg.VideoThumbnailOffset)
	if thumbKey == "" {
		return projection, nil
	}

	duration, _ := s.thumbs.Duration(ctx, storageKey)
	if err := s.repo.UpdateVideoThumbnail(video.ID, thumbKey, duration); err != nil {
		log.Printf("[Gallery] Failed to persist thumbnail for video %d: %v", video.ID, err)
		return projection, nil
	}

	projection.ThumbnailURL = s.store.URL(thumbKey)
	return projection, nil
}

// decodeDimensions 读取图片尺寸，失败时记为零值
func (s *UploadService) decodeDimensions(staged *staging.StagedFile) (int, int) {
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

// compensateBlob 入库失败后的补偿删除
func (s *UploadService) compensateBlob(storageKey string) {
	if err := s.store.DeleteWithContext(context.Background(), storageKey); err != nil {
		log.Printf("[Gallery] Compensation delete failed for '%s': %v", storageKey, err)
	}
}

// userMessageFor 把内部错误映射为用户可见文案
func userMessageFor(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedMediaType):
		return "This file type is not allowed."
	case errors.Is(err, ErrFileTooLarge):
		return "The file exceeds the allowed size."
	default:
		return "The uploaded file could not be processed."
	}
}
