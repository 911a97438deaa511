package gallery

import (
	"context"
	"fmt"
	"log"

	"github.com/devanderson/media-gallery/database"
	"github.com/devanderson/media-gallery/database/models"
	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
)

// Owner 拥有媒体多对多关联的父记录
// 实现方必须同时是 gorm 模型，MediaRelation 返回对应类型的关联名
type Owner interface {
	MediaRelation(mediaType models.MediaType) string
}

// SyncService 父记录与媒体的关联同步服务
// 用表单状态中的ID集合做全量对账，等价于保存表单字段；幂等
type SyncService struct {
	db     database.Provider
	repo   *mediarepo.Repository
	events Events
	strict bool
}

// NewSyncService 创建关联同步服务
// strict 为 true 时同步失败向调用方传播，否则只记录日志
func NewSyncService(db database.Provider, repo *mediarepo.Repository, events Events, strict bool) *SyncService {
	if events == nil {
		events = NopEvents{}
	}
	return &SyncService{
		db:     db,
		repo:   repo,
		events: events,
		strict: strict,
	}
}

// Sync 将父记录的媒体关联替换为表单状态中的选择
// 已删除的ID在对账时被静默丢弃；重复保存产生相同的最终状态
func (s *SyncService) Sync(ctx context.Context, owner Owner, mediaType models.MediaType, rawValue interface{}) error {
	set := ParseIDSet(rawValue)

	err := s.replace(ctx, owner, mediaType, set)
	if err != nil {
		log.Printf("[Gallery] Relation sync failed for %s: %v", mediaType, err)
		if s.strict {
			return fmt.Errorf("relation sync failed: %w", err)
		}
		return nil
	}

	return nil
}

// replace 执行全量关联替换并发出同步事件
func (s *SyncService) replace(ctx context.Context, owner Owner, mediaType models.MediaType, set *IDSet) error {
	relation := owner.MediaRelation(mediaType)
	if relation == "" {
		return fmt.Errorf("owner has no relation for media type '%s'", mediaType)
	}

	assoc := s.db.WithContext(ctx).Model(owner).Association(relation)

	if mediaType.IsVideo() {
		videos, err := s.repo.WithContext(ctx).LiveVideosByIDs(set.IDs())
		if err != nil {
			return err
		}
		if err := assoc.Replace(videos); err != nil {
			return err
		}
		s.events.MediaSynced(string(mediaType), collectVideoIDs(videos))
		return nil
	}

	images, err := s.repo.WithContext(ctx).LiveImagesByIDs(set.IDs())
	if err != nil {
		return err
	}
	if err := assoc.Replace(images); err != nil {
		return err
	}
	s.events.MediaSynced(string(mediaType), collectImageIDs(images))
	return nil
}

func collectImageIDs(images []*models.Image) []uint {
	ids := make([]uint, len(images))
	for i, img := range images {
		ids[i] = img.ID
	}
	return ids
}

func collectVideoIDs(videos []*models.Video) []uint {
	ids := make([]uint, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return ids
}
