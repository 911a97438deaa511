package gallery

import (
	"context"
	"fmt"
	"testing"

	"github.com/devanderson/media-gallery/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// galleryPost 带媒体多对多关联的测试父记录
type galleryPost struct {
	gorm.Model
	Title  string
	Images []*models.Image `gorm:"many2many:gallery_post_images"`
	Videos []*models.Video `gorm:"many2many:gallery_post_videos"`
}

func (galleryPost) TableName() string {
	return "gallery_posts"
}

func (galleryPost) MediaRelation(mediaType models.MediaType) string {
	if mediaType.IsVideo() {
		return "Videos"
	}
	return "Images"
}

// relationlessOwner 没有媒体关联的父记录
type relationlessOwner struct{}

func (relationlessOwner) MediaRelation(mediaType models.MediaType) string {
	return ""
}

func newSyncEnv(t *testing.T) (*testEnv, *galleryPost) {
	env := newTestEnv(t)
	require.NoError(t, env.db.AutoMigrate(&galleryPost{}))

	post := &galleryPost{Title: "post"}
	require.NoError(t, env.db.Create(post).Error)
	return env, post
}

func postImageIDs(t *testing.T, env *testEnv, post *galleryPost) []uint {
	var loaded galleryPost
	require.NoError(t, env.db.Preload("Images").First(&loaded, post.ID).Error)

	ids := make([]uint, 0, len(loaded.Images))
	for _, img := range loaded.Images {
		ids = append(ids, img.ID)
	}
	return ids
}

// --- 测试全量关联替换 ---

func TestSync_ReplacesImageRelations(t *testing.T) {
	env, post := newSyncEnv(t)
	rec := &recorder{}
	svc := NewSyncService(env.provider, env.repo, rec, false)

	a := env.seedImage(t, "a.png", pngBytes(t, 1, 1))
	b := env.seedImage(t, "b.png", pngBytes(t, 1, 1))
	c := env.seedImage(t, "c.png", pngBytes(t, 1, 1))

	require.NoError(t, svc.Sync(context.Background(), post, models.MediaTypeImage, []uint{a.ID, c.ID}))
	assert.ElementsMatch(t, []uint{a.ID, c.ID}, postImageIDs(t, env, post))

	// 重新同步为另一组
	require.NoError(t, svc.Sync(context.Background(), post, models.MediaTypeImage, []uint{b.ID}))
	assert.Equal(t, []uint{b.ID}, postImageIDs(t, env, post))

	require.Len(t, rec.events, 2)
	assert.Equal(t, "gallery:media-synced", rec.events[0].Name)
	assert.Equal(t, "image", rec.events[0].MediaType)
	assert.ElementsMatch(t, []uint{a.ID, c.ID}, rec.events[0].IDs)
}

func TestSync_Idempotent(t *testing.T) {
	env, post := newSyncEnv(t)
	svc := NewSyncService(env.provider, env.repo, nil, false)

	a := env.seedImage(t, "a.png", pngBytes(t, 1, 1))
	b := env.seedImage(t, "b.png", pngBytes(t, 1, 1))

	require.NoError(t, svc.Sync(context.Background(), post, models.MediaTypeImage, []uint{a.ID, b.ID}))
	require.NoError(t, svc.Sync(context.Background(), post, models.MediaTypeImage, []uint{a.ID, b.ID}))

	assert.ElementsMatch(t, []uint{a.ID, b.ID}, postImageIDs(t, env, post))
}

func TestSync_DropsStaleIDs(t *testing.T) {
	env, post := newSyncEnv(t)
	rec := &recorder{}
	svc := NewSyncService(env.provider, env.repo, rec, false)

	a := env.seedImage(t, "a.png", pngBytes(t, 1, 1))
	b := env.seedImage(t, "b.png", pngBytes(t, 1, 1))
	_, err := env.repo.DeleteImage(b.ID)
	require.NoError(t, err)

	// 表单里残留的已删除ID被静默丢弃
	require.NoError(t, svc.Sync(context.Background(), post, models.MediaTypeImage, []uint{a.ID, b.ID}))
	assert.Equal(t, []uint{a.ID}, postImageIDs(t, env, post))
	require.Len(t, rec.events, 1)
	assert.Equal(t, []uint{a.ID}, rec.events[0].IDs)
}

func TestSync_AcceptsRawStateValue(t *testing.T) {
	env, post := newSyncEnv(t)
	svc := NewSyncService(env.provider, env.repo, nil, false)

	a := env.seedImage(t, "a.png", pngBytes(t, 1, 1))

	// 表单状态原样传入：JSON 数组字符串
	require.NoError(t, svc.Sync(context.Background(), post, models.MediaTypeImage,
		fmt.Sprintf("[%d]", a.ID)))
	assert.Equal(t, []uint{a.ID}, postImageIDs(t, env, post))
}

func TestSync_EmptySelectionClearsRelations(t *testing.T) {
	env, post := newSyncEnv(t)
	svc := NewSyncService(env.provider, env.repo, nil, false)

	a := env.seedImage(t, "a.png", pngBytes(t, 1, 1))
	require.NoError(t, svc.Sync(context.Background(), post, models.MediaTypeImage, []uint{a.ID}))
	require.NoError(t, svc.Sync(context.Background(), post, models.MediaTypeImage, nil))

	assert.Empty(t, postImageIDs(t, env, post))
}

// --- 测试失败语义 ---

func TestSync_SwallowsErrorsByDefault(t *testing.T) {
	env, _ := newSyncEnv(t)
	svc := NewSyncService(env.provider, env.repo, nil, false)

	err := svc.Sync(context.Background(), relationlessOwner{}, models.MediaTypeImage, nil)
	assert.NoError(t, err)
}

func TestSync_StrictPropagatesErrors(t *testing.T) {
	env, _ := newSyncEnv(t)
	svc := NewSyncService(env.provider, env.repo, nil, true)

	err := svc.Sync(context.Background(), relationlessOwner{}, models.MediaTypeImage, nil)
	assert.Error(t, err)
}
