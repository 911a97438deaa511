package media

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/devanderson/media-gallery/database"
	"github.com/devanderson/media-gallery/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// 自动迁移
	err = db.AutoMigrate(&models.Media{}, &models.Image{}, &models.Video{})
	require.NoError(t, err)

	return db
}

// testProvider 测试数据库提供者
type testProvider struct {
	db *gorm.DB
}

func (p *testProvider) DB() *gorm.DB {
	return p.db
}

func (p *testProvider) WithContext(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

func (p *testProvider) Transaction(fn database.TxFunc) error {
	return p.db.Transaction(fn)
}

func (p *testProvider) TransactionWithContext(ctx context.Context, fn database.TxFunc) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

func (p *testProvider) AutoMigrate(models ...interface{}) error {
	return p.db.AutoMigrate(models...)
}

func (p *testProvider) SQLDB() (*sql.DB, error) {
	return p.db.DB()
}

func (p *testProvider) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (p *testProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *testProvider) Name() string {
	return "sqlite"
}

func newTestRepository(t *testing.T) *Repository {
	return NewRepository(&testProvider{db: setupTestDB(t)})
}

func makeImage(t *testing.T, repo *Repository, name string) *models.Image {
	media := &models.Media{
		Path:         "gallery/images/" + name,
		OriginalName: name,
		MimeType:     "image/jpeg",
		Size:         1024,
	}
	img := &models.Image{Width: 800, Height: 600}
	require.NoError(t, repo.CreateImage(media, img))
	return img
}

func makeVideo(t *testing.T, repo *Repository, name string) *models.Video {
	media := &models.Media{
		Path:         "gallery/videos/" + name,
		OriginalName: name,
		MimeType:     "video/mp4",
		Size:         2048,
	}
	video := &models.Video{}
	require.NoError(t, repo.CreateVideo(media, video))
	return video
}

// --- 测试记录创建 ---

func TestCreateImage(t *testing.T) {
	repo := newTestRepository(t)

	img := makeImage(t, repo, "photo.jpg")
	assert.NotZero(t, img.ID)
	assert.NotZero(t, img.MediaID)
	assert.Equal(t, models.MediaTypeImage, img.Media.Type)

	loaded, err := repo.GetImageByID(img.ID)
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", loaded.Media.OriginalName)
	assert.Equal(t, 800, loaded.Width)
}

func TestCreateVideo(t *testing.T) {
	repo := newTestRepository(t)

	video := makeVideo(t, repo, "clip.mp4")
	assert.NotZero(t, video.ID)
	assert.Equal(t, models.MediaTypeVideo, video.Media.Type)
	assert.False(t, video.HasThumbnail())

	loaded, err := repo.GetVideoByID(video.ID)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", loaded.Media.OriginalName)
}

func TestGetImageByID_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetImageByID(9999)
	assert.ErrorIs(t, err, ErrMediaNotFound)
}

// --- 测试分页 ---

func TestPageImages(t *testing.T) {
	repo := newTestRepository(t)

	for i := 0; i < 5; i++ {
		makeImage(t, repo, fmt.Sprintf("photo-%d.jpg", i))
	}
	// 视频不应出现在图片分页中
	makeVideo(t, repo, "clip.mp4")

	images, total, err := repo.PageImages(1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, images, 3)
	for _, img := range images {
		assert.Equal(t, models.MediaTypeImage, img.Media.Type)
	}

	images, total, err = repo.PageImages(2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, images, 2)
}

// --- 测试按ID批量加载 ---

func TestLiveImagesByIDs_PreservesOrderAndDropsStale(t *testing.T) {
	repo := newTestRepository(t)

	a := makeImage(t, repo, "a.jpg")
	b := makeImage(t, repo, "b.jpg")
	c := makeImage(t, repo, "c.jpg")

	// 删除 b 后按 c, b, a 的顺序请求
	_, err := repo.DeleteImage(b.ID)
	require.NoError(t, err)

	images, err := repo.LiveImagesByIDs([]uint{c.ID, b.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, c.ID, images[0].ID)
	assert.Equal(t, a.ID, images[1].ID)
}

func TestLiveImagesByIDs_Empty(t *testing.T) {
	repo := newTestRepository(t)

	images, err := repo.LiveImagesByIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, images)
}

// --- 测试缩略图更新 ---

func TestUpdateVideoThumbnail(t *testing.T) {
	repo := newTestRepository(t)

	video := makeVideo(t, repo, "clip.mp4")
	err := repo.UpdateVideoThumbnail(video.ID, "gallery/thumbnails/video_abc.jpg", 12.5)
	require.NoError(t, err)

	loaded, err := repo.GetVideoByID(video.ID)
	require.NoError(t, err)
	assert.Equal(t, "gallery/thumbnails/video_abc.jpg", loaded.ThumbnailPath)
	assert.InDelta(t, 12.5, loaded.Duration, 0.001)
}

func TestUpdateVideoThumbnail_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.UpdateVideoThumbnail(9999, "gallery/thumbnails/video_abc.jpg", 1)
	assert.ErrorIs(t, err, ErrMediaNotFound)
}

// --- 测试删除 ---

func TestDeleteImage_SoftDeletesBothRecords(t *testing.T) {
	repo := newTestRepository(t)

	img := makeImage(t, repo, "photo.jpg")
	media, err := repo.DeleteImage(img.ID)
	require.NoError(t, err)
	assert.Equal(t, "gallery/images/photo.jpg", media.Path)

	_, err = repo.GetImageByID(img.ID)
	assert.ErrorIs(t, err, ErrMediaNotFound)
	_, err = repo.GetMediaByID(img.MediaID)
	assert.ErrorIs(t, err, ErrMediaNotFound)
}

func TestDeleteVideo_ReturnsThumbnailPath(t *testing.T) {
	repo := newTestRepository(t)

	video := makeVideo(t, repo, "clip.mp4")
	require.NoError(t, repo.UpdateVideoThumbnail(video.ID, "gallery/thumbnails/video_x.jpg", 3))

	deleted, err := repo.DeleteVideo(video.ID)
	require.NoError(t, err)
	assert.Equal(t, "gallery/videos/clip.mp4", deleted.Media.Path)
	assert.Equal(t, "gallery/thumbnails/video_x.jpg", deleted.ThumbnailPath)
}

// --- 测试编辑更新 ---

func TestUpdateImage(t *testing.T) {
	repo := newTestRepository(t)

	img := makeImage(t, repo, "old.jpg")
	img.Media.Path = "gallery/images/new.jpg"
	img.Media.OriginalName = "new.jpg"
	img.Media.Size = 4096
	img.Width = 1024

	require.NoError(t, repo.UpdateImage(img))

	loaded, err := repo.GetImageByID(img.ID)
	require.NoError(t, err)
	assert.Equal(t, "gallery/images/new.jpg", loaded.Media.Path)
	assert.Equal(t, int64(4096), loaded.Media.Size)
	assert.Equal(t, 1024, loaded.Width)
}
