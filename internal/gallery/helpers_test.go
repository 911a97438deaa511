package gallery

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devanderson/media-gallery/config"
	"github.com/devanderson/media-gallery/database"
	"github.com/devanderson/media-gallery/database/models"
	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
	"github.com/devanderson/media-gallery/internal/staging"
	"github.com/devanderson/media-gallery/internal/thumbnail"
	"github.com/devanderson/media-gallery/storage"
	"github.com/devanderson/media-gallery/utils/generator"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

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

// recordedNote 记录的通知
type recordedNote struct {
	Level string
	Title string
	Body  string
}

// recordedEvent 记录的事件
type recordedEvent struct {
	Name       string
	Projection Projection
	MediaType  string
	IDs        []uint
}

// recorder 记录通知和事件的测试实现
type recorder struct {
	notes  []recordedNote
	events []recordedEvent
}

func (r *recorder) Success(title, body string) {
	r.notes = append(r.notes, recordedNote{Level: "success", Title: title, Body: body})
}

func (r *recorder) Warning(title, body string) {
	r.notes = append(r.notes, recordedNote{Level: "warning", Title: title, Body: body})
}

func (r *recorder) Danger(title, body string) {
	r.notes = append(r.notes, recordedNote{Level: "danger", Title: title, Body: body})
}

func (r *recorder) MediaAdded(p Projection) {
	r.events = append(r.events, recordedEvent{Name: "gallery:media-added", Projection: p})
}

func (r *recorder) MediaSynced(mediaType string, ids []uint) {
	r.events = append(r.events, recordedEvent{Name: "gallery:media-synced", MediaType: mediaType, IDs: ids})
}

// hasNote 是否记录了指定级别的通知
func (r *recorder) hasNote(level string) bool {
	for _, n := range r.notes {
		if n.Level == level {
			return true
		}
	}
	return false
}

// testEnv 服务测试环境：内存数据库、本地存储和暂存区都落在测试临时目录
type testEnv struct {
	cfg      *config.Config
	db       *gorm.DB
	provider *testProvider
	repo     *mediarepo.Repository
	store    *storage.LocalStorage
	staging  *staging.Store
	keys     *generator.KeyGenerator
	thumbs   *thumbnail.Generator
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)
	provider := &testProvider{db: db}

	store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
	require.NoError(t, err)

	stagingStore, err := staging.NewStore(filepath.Join(t.TempDir(), "staging"))
	require.NoError(t, err)

	cfg := &config.Config{
		GalleryImagePath:     "gallery/images",
		GalleryVideoPath:     "gallery/videos",
		GalleryThumbnailPath: "gallery/thumbnails",
		GalleryTempPath:      t.TempDir(),
		GalleryPerPage:       24,
		ImageMaxSizeMB:       10,
		ImageAllowedMimes:    "image/jpeg,image/png,image/webp,image/gif",
		VideoMaxSizeMB:       250,
		VideoAllowedMimes:    "video/mp4,video/webm,video/quicktime",
		VideoThumbnailOffset: 1.0,
		// 测试环境没有转码器，走占位图降级
		VideoThumbnailFallback: true,
		VideoThumbnailMaxWidth: 640,
		VideoThumbnailQuality:  85,
		FFmpegPath:             "/nonexistent/ffmpeg",
		FFprobePath:            "/nonexistent/ffprobe",
		FFmpegTimeout:          2 * time.Second,
		CacheTTL:               time.Hour,
	}

	keys := generator.NewKeyGenerator(cfg.GalleryImagePath, cfg.GalleryVideoPath, cfg.GalleryThumbnailPath)

	return &testEnv{
		cfg:      cfg,
		db:       db,
		provider: provider,
		repo:     mediarepo.NewRepository(provider),
		store:    store,
		staging:  stagingStore,
		keys:     keys,
		thumbs:   thumbnail.NewGenerator(cfg, store, keys),
	}
}

// uploadService 构建上传服务，sources 为空时走字段名推断
func (e *testEnv) uploadService(sources ...FieldSource) *UploadService {
	return NewUploadService(NewResolver(sources...), e.staging, e.repo, e.store, e.keys, e.thumbs, e.cfg)
}

// editService 构建编辑服务，不挂缓存
func (e *testEnv) editService() *EditService {
	return NewEditService(e.staging, e.repo, e.store, e.keys, nil, e.cfg)
}

// stage 将内容写入暂存区并放入会话槽位
func (e *testEnv) stage(t *testing.T, session *Session, slot, name string, content []byte, declaredMime string) *staging.StagedFile {
	staged, err := e.staging.Stage(bytes.NewReader(content), name, declaredMime)
	require.NoError(t, err)
	session.Stage(slot, staged)
	return staged
}

// mediaCount 统计媒体记录数
func (e *testEnv) mediaCount(t *testing.T) int64 {
	var count int64
	require.NoError(t, e.db.Model(&models.Media{}).Count(&count).Error)
	return count
}

// seedImage 直接写入存储并入库一张图片
func (e *testEnv) seedImage(t *testing.T, name string, content []byte) *models.Image {
	key := e.keys.ImageKey(name)
	require.NoError(t, e.store.SaveWithContext(context.Background(), key, bytes.NewReader(content)))

	media := &models.Media{
		Path:         key,
		OriginalName: name,
		MimeType:     "image/png",
		Size:         int64(len(content)),
	}
	img := &models.Image{Width: 1, Height: 1}
	require.NoError(t, e.repo.CreateImage(media, img))
	return img
}

// seedVideo 直接写入存储并入库一个视频
func (e *testEnv) seedVideo(t *testing.T, name string, content []byte) *models.Video {
	key := e.keys.VideoKey(name)
	require.NoError(t, e.store.SaveWithContext(context.Background(), key, bytes.NewReader(content)))

	media := &models.Media{
		Path:         key,
		OriginalName: name,
		MimeType:     "video/mp4",
		Size:         int64(len(content)),
	}
	video := &models.Video{}
	require.NoError(t, e.repo.CreateVideo(media, video))
	return video
}

// pngBytes 生成可解码的 PNG 内容
func pngBytes(t *testing.T, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// mp4Bytes 生成能被内容嗅探识别为 video/mp4 的最小字节序列
func mp4Bytes() []byte {
	header := []byte{
		0x00, 0x00, 0x00, 0x14,
		'f', 't', 'y', 'p',
		'm', 'p', '4', '2',
		0x00, 0x00, 0x00, 0x00,
		'm', 'p', '4', '2',
	}
	return append(header, bytes.Repeat([]byte{0x00}, 64)...)
}
