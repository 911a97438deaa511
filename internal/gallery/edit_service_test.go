package gallery

import (
	"context"
	"testing"
	"time"

	"github.com/devanderson/media-gallery/cache"
	"github.com/devanderson/media-gallery/database/models"
	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- 测试就地替换 ---

func TestApplyEdit_ReplacesContent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.editService()
	rec := &recorder{}
	session := NewSession(rec, rec)

	img := env.seedImage(t, "old.png", pngBytes(t, 1, 1))
	oldKey := img.Media.Path
	oldMediaID := img.MediaID

	env.stage(t, session, "photos"+EditedSlotSuffix, "edited.png", pngBytes(t, 4, 5), "image/png")

	err := svc.ApplyEdit(context.Background(), session, img.ID, "updated.png", "data.photos")
	require.NoError(t, err)

	loaded, err := env.repo.GetImageByID(img.ID)
	require.NoError(t, err)

	// ID 不变，内容与元数据全部更新
	assert.Equal(t, img.ID, loaded.ID)
	assert.Equal(t, oldMediaID, loaded.MediaID)
	assert.Equal(t, "updated.png", loaded.Media.OriginalName)
	assert.NotEqual(t, oldKey, loaded.Media.Path)
	assert.Equal(t, 4, loaded.Width)
	assert.Equal(t, 5, loaded.Height)

	// 新文件可用，旧文件已删除
	exists, err := env.store.Exists(context.Background(), loaded.Media.Path)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = env.store.Exists(context.Background(), oldKey)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.True(t, rec.hasNote("success"))
	assert.Nil(t, session.Staged("photos"+EditedSlotSuffix))
}

func TestApplyEdit_FallsBackToStagedName(t *testing.T) {
	env := newTestEnv(t)
	svc := env.editService()
	session := NewSession(nil, nil)

	img := env.seedImage(t, "old.png", pngBytes(t, 1, 1))
	env.stage(t, session, "photos"+EditedSlotSuffix, "edited.png", pngBytes(t, 2, 2), "image/png")

	err := svc.ApplyEdit(context.Background(), session, img.ID, "", "data.photos")
	require.NoError(t, err)

	loaded, err := env.repo.GetImageByID(img.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited.png", loaded.Media.OriginalName)
}

func TestApplyEdit_InvalidatesProjectionCache(t *testing.T) {
	env := newTestEnv(t)
	memory, err := cache.NewMemory(cache.DefaultMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = memory.Close() })

	queries := NewQueryService(env.repo, env.store, memory, time.Hour)
	edits := NewEditService(env.staging, env.repo, env.store, env.keys, memory, env.cfg)

	img := env.seedImage(t, "old.png", pngBytes(t, 1, 1))

	// 先解析一次，让投影进入缓存
	out, err := queries.ResolveSelection(context.Background(), models.MediaTypeImage, NewIDSet(img.ID))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "old.png", out[0].OriginalName)
	staleURL := out[0].URL

	session := NewSession(nil, nil)
	env.stage(t, session, "photos"+EditedSlotSuffix, "new.png", pngBytes(t, 2, 2), "image/png")
	require.NoError(t, edits.ApplyEdit(context.Background(), session, img.ID, "new.png", "data.photos"))

	// 编辑使缓存失效，再次解析拿到替换后的投影
	out, err = queries.ResolveSelection(context.Background(), models.MediaTypeImage, NewIDSet(img.ID))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "new.png", out[0].OriginalName)
	assert.NotEqual(t, staleURL, out[0].URL)
}

// --- 测试失败路径 ---

func TestApplyEdit_MissingStagedFile(t *testing.T) {
	env := newTestEnv(t)
	svc := env.editService()
	rec := &recorder{}
	session := NewSession(rec, rec)

	img := env.seedImage(t, "old.png", pngBytes(t, 1, 1))

	err := svc.ApplyEdit(context.Background(), session, img.ID, "updated.png", "data.photos")
	assert.ErrorIs(t, err, ErrStagedFileMissing)
	assert.True(t, rec.hasNote("danger"))
}

func TestApplyEdit_ImageNotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := env.editService()
	session := NewSession(nil, nil)

	env.stage(t, session, "photos"+EditedSlotSuffix, "edited.png", pngBytes(t, 2, 2), "image/png")

	err := svc.ApplyEdit(context.Background(), session, 9999, "updated.png", "data.photos")
	assert.ErrorIs(t, err, mediarepo.ErrMediaNotFound)
}

func TestApplyEdit_UnsupportedType(t *testing.T) {
	env := newTestEnv(t)
	svc := env.editService()
	session := NewSession(nil, nil)

	img := env.seedImage(t, "old.png", pngBytes(t, 1, 1))
	oldKey := img.Media.Path
	env.stage(t, session, "photos"+EditedSlotSuffix, "fake.png", []byte("definitely not an image"), "image/png")

	err := svc.ApplyEdit(context.Background(), session, img.ID, "fake.png", "data.photos")
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)

	// 原记录和原文件不受影响
	loaded, err := env.repo.GetImageByID(img.ID)
	require.NoError(t, err)
	assert.Equal(t, oldKey, loaded.Media.Path)
	exists, err := env.store.Exists(context.Background(), oldKey)
	require.NoError(t, err)
	assert.True(t, exists)
}
