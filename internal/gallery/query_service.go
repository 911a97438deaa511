package gallery

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/devanderson/media-gallery/cache"
	"github.com/devanderson/media-gallery/database/models"
	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
	"github.com/devanderson/media-gallery/storage"
)

// QueryService 选中项解析服务
// 将表单状态里的ID集合映射为投影，失效的ID被静默丢弃；单条投影走缓存
type QueryService struct {
	repo  *mediarepo.Repository
	store storage.Provider
	cache cache.Provider
	ttl   time.Duration
}

// NewQueryService 创建选中项解析服务
func NewQueryService(repo *mediarepo.Repository, store storage.Provider, cacheProvider cache.Provider, ttl time.Duration) *QueryService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &QueryService{
		repo:  repo,
		store: store,
		cache: cacheProvider,
		ttl:   ttl,
	}
}

// projectionCacheKey 投影缓存键
func projectionCacheKey(mediaType models.MediaType, id uint) string {
	return fmt.Sprintf("gallery:projection:%s:%d", mediaType, id)
}

// ResolveSelection 按给定顺序解析ID集合为投影列表
func (q *QueryService) ResolveSelection(ctx context.Context, mediaType models.MediaType, set *IDSet) ([]Projection, error) {
	ids := set.IDs()
	if len(ids) == 0 {
		return []Projection{}, nil
	}

	cached := make(map[uint]Projection, len(ids))
	misses := make([]uint, 0, len(ids))
	for _, id := range ids {
		var p Projection
		if q.cache != nil && q.cache.Get(ctx, projectionCacheKey(mediaType, id), &p) == nil {
			cached[id] = p
			continue
		}
		misses = append(misses, id)
	}

	if len(misses) > 0 {
		fetched, err := q.fetch(ctx, mediaType, misses)
		if err != nil {
			return nil, err
		}
		for id, p := range fetched {
			cached[id] = p
			if q.cache != nil {
				if err := q.cache.Set(ctx, projectionCacheKey(mediaType, id), p, q.ttl); err != nil {
					log.Printf("[Gallery] Failed to cache projection for %s %d: %v", mediaType, id, err)
				}
			}
		}
	}

	// 按原始顺序输出，数据库中已不存在的ID直接跳过
	out := make([]Projection, 0, len(ids))
	for _, id := range ids {
		if p, ok := cached[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// fetch 从数据库批量加载存活记录的投影
func (q *QueryService) fetch(ctx context.Context, mediaType models.MediaType, ids []uint) (map[uint]Projection, error) {
	repo := q.repo.WithContext(ctx)
	out := make(map[uint]Projection, len(ids))

	if mediaType.IsVideo() {
		videos, err := repo.LiveVideosByIDs(ids)
		if err != nil {
			return nil, err
		}
		for _, v := range videos {
			out[v.ID] = projectVideo(q.store, v)
		}
		return out, nil
	}

	images, err := repo.LiveImagesByIDs(ids)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		out[img.ID] = projectImage(q.store, img)
	}
	return out, nil
}
