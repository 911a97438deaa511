package gallery

import (
	"context"

	"github.com/devanderson/media-gallery/database/models"
	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
	"github.com/devanderson/media-gallery/storage"
)

// Pager 媒体库分页器 - 无状态，按创建时间倒序翻页
type Pager struct {
	repo    *mediarepo.Repository
	store   storage.Provider
	perPage int
}

// NewPager 创建分页器，perPage 非法时取 24
func NewPager(repo *mediarepo.Repository, store storage.Provider, perPage int) *Pager {
	if perPage <= 0 {
		perPage = 24
	}
	return &Pager{
		repo:    repo,
		store:   store,
		perPage: perPage,
	}
}

// Page 返回指定类型的一页媒体投影及是否还有后续页
// 每页只包含请求的类型，图片页不会混入视频
func (p *Pager) Page(ctx context.Context, mediaType models.MediaType, page, perPage int) ([]Projection, bool, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = p.perPage
	}

	repo := p.repo.WithContext(ctx)

	if mediaType.IsVideo() {
		videos, total, err := repo.PageVideos(page, perPage)
		if err != nil {
			return nil, false, err
		}
		items := make([]Projection, 0, len(videos))
		for _, v := range videos {
			items = append(items, projectVideo(p.store, v))
		}
		return items, hasMore(page, perPage, len(videos), total), nil
	}

	images, total, err := repo.PageImages(page, perPage)
	if err != nil {
		return nil, false, err
	}
	items := make([]Projection, 0, len(images))
	for _, img := range images {
		items = append(items, projectImage(p.store, img))
	}
	return items, hasMore(page, perPage, len(images), total), nil
}

// hasMore 判断是否还有后续页
func hasMore(page, perPage, fetched int, total int64) bool {
	return int64((page-1)*perPage+fetched) < total
}

// projectImage 构建图片投影
func projectImage(store storage.Provider, img *models.Image) Projection {
	return Projection{
		ID:           img.ID,
		URL:          store.URL(img.Media.Path),
		OriginalName: img.Media.OriginalName,
		IsVideo:      false,
	}
}

// projectVideo 构建视频投影，无缩略图时 thumbnail_url 留空由前端降级
func projectVideo(store storage.Provider, v *models.Video) Projection {
	p := Projection{
		ID:           v.ID,
		URL:          store.URL(v.Media.Path),
		OriginalName: v.Media.OriginalName,
		IsVideo:      true,
	}
	if v.ThumbnailPath != "" {
		p.ThumbnailURL = store.URL(v.ThumbnailPath)
	}
	return p
}
