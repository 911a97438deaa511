package di

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/devanderson/media-gallery/cache"
	"github.com/devanderson/media-gallery/config"
	"github.com/devanderson/media-gallery/database"
	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
	"github.com/devanderson/media-gallery/internal/gallery"
	"github.com/devanderson/media-gallery/internal/staging"
	"github.com/devanderson/media-gallery/internal/thumbnail"
	"github.com/devanderson/media-gallery/storage"
	"github.com/devanderson/media-gallery/utils/generator"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory
	storageFactory  *storage.Factory
	cacheProvider   cache.Provider
	stagingStore    *staging.Store

	mediaRepo     *mediarepo.Repository
	keyGenerator  *generator.KeyGenerator
	thumbnails    *thumbnail.Generator
	fieldResolver *gallery.Resolver
	uploadService *gallery.UploadService
	editService   *gallery.EditService
	deleteService *gallery.DeleteService
	pager         *gallery.Pager
	queryService  *gallery.QueryService
	syncService   *gallery.SyncService
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// Init 初始化所有服务
func (c *Container) Init() error {
	log.Println("Initializing DI container...")

	if err := c.initDatabaseFactory(); err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}

	if err := c.initStorageFactory(); err != nil {
		return fmt.Errorf("failed to initialize storage factory: %w", err)
	}

	if err := c.initCacheProvider(); err != nil {
		return fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	if err := c.initStagingStore(); err != nil {
		return fmt.Errorf("failed to initialize staging store: %w", err)
	}

	if err := c.initGallery(); err != nil {
		return fmt.Errorf("failed to initialize gallery services: %w", err)
	}

	log.Println("DI container initialized successfully")
	return nil
}

// initDatabaseFactory 初始化数据库工厂
func (c *Container) initDatabaseFactory() error {
	factory, err := database.NewFactory(c.config)
	if err != nil {
		return err
	}
	c.databaseFactory = factory
	log.Println("Database factory initialized")
	return nil
}

// initStorageFactory 初始化存储工厂
func (c *Container) initStorageFactory() error {
	factory, err := storage.NewFactory(c.config)
	if err != nil {
		return err
	}
	c.storageFactory = factory
	log.Println("Storage factory initialized")
	return nil
}

// initCacheProvider 初始化缓存提供者
func (c *Container) initCacheProvider() error {
	provider, err := cache.NewFromConfig(c.config)
	if err != nil {
		return err
	}
	c.cacheProvider = provider
	log.Printf("Cache provider '%s' initialized", provider.Name())
	return nil
}

// initStagingStore 初始化上传暂存区
func (c *Container) initStagingStore() error {
	store, err := staging.NewStore(c.config.GalleryTempPath)
	if err != nil {
		return err
	}
	c.stagingStore = store
	log.Printf("Staging store initialized at %s", store.Dir())
	return nil
}

// initGallery 初始化媒体库服务
func (c *Container) initGallery() error {
	dbProvider := c.databaseFactory.GetProvider()
	store := c.storageFactory.GetDefault()

	c.mediaRepo = mediarepo.NewRepository(dbProvider)
	c.keyGenerator = generator.NewKeyGenerator(
		c.config.GalleryImagePath,
		c.config.GalleryVideoPath,
		c.config.GalleryThumbnailPath,
	)
	c.thumbnails = thumbnail.NewGenerator(c.config, store, c.keyGenerator)

	registry, err := c.buildFieldRegistry()
	if err != nil {
		return err
	}
	c.fieldResolver = gallery.NewResolver(registry)

	c.uploadService = gallery.NewUploadService(
		c.fieldResolver, c.stagingStore, c.mediaRepo, store, c.keyGenerator, c.thumbnails, c.config,
	)
	c.editService = gallery.NewEditService(
		c.stagingStore, c.mediaRepo, store, c.keyGenerator, c.cacheProvider, c.config,
	)
	c.deleteService = gallery.NewDeleteService(c.mediaRepo, store, c.cacheProvider)
	c.pager = gallery.NewPager(c.mediaRepo, store, c.config.GalleryPerPage)
	c.queryService = gallery.NewQueryService(c.mediaRepo, store, c.cacheProvider, c.config.CacheTTL)
	c.syncService = gallery.NewSyncService(dbProvider, c.mediaRepo, gallery.NopEvents{}, c.config.RelationSyncStrict)

	log.Println("Gallery services initialized")
	return nil
}

// buildFieldRegistry 从配置加载字段注册表
// gallery_fields 形如 {"gallery":{"media_type":"image","allow_multiple":true,"allow_upload":true}}
func (c *Container) buildFieldRegistry() (*gallery.Registry, error) {
	registry := gallery.NewRegistry()
	if c.config.GalleryFields == "" {
		return registry, nil
	}

	var fields map[string]gallery.FieldConfig
	if err := json.Unmarshal([]byte(c.config.GalleryFields), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse gallery_fields: %w", err)
	}
	for key, fieldCfg := range fields {
		registry.Register(key, fieldCfg)
	}
	log.Printf("Registered %d gallery fields from config", registry.Len())
	return registry, nil
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetDatabaseFactory 获取数据库工厂
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetDatabaseProvider 获取数据库提供者
func (c *Container) GetDatabaseProvider() database.Provider {
	if c.databaseFactory == nil {
		return nil
	}
	return c.databaseFactory.GetProvider()
}

// GetStorageFactory 获取存储工厂
func (c *Container) GetStorageFactory() *storage.Factory {
	return c.storageFactory
}

// GetCacheProvider 获取缓存提供者
func (c *Container) GetCacheProvider() cache.Provider {
	return c.cacheProvider
}

// GetStagingStore 获取上传暂存区
func (c *Container) GetStagingStore() *staging.Store {
	return c.stagingStore
}

// GetMediaRepository 获取媒体仓库
func (c *Container) GetMediaRepository() *mediarepo.Repository {
	return c.mediaRepo
}

// GetThumbnailGenerator 获取缩略图生成器
func (c *Container) GetThumbnailGenerator() *thumbnail.Generator {
	return c.thumbnails
}

// GetFieldResolver 获取字段配置解析器
func (c *Container) GetFieldResolver() *gallery.Resolver {
	return c.fieldResolver
}

// GetUploadService 获取上传编排服务
func (c *Container) GetUploadService() *gallery.UploadService {
	return c.uploadService
}

// GetEditService 获取媒体编辑服务
func (c *Container) GetEditService() *gallery.EditService {
	return c.editService
}

// GetDeleteService 获取媒体删除服务
func (c *Container) GetDeleteService() *gallery.DeleteService {
	return c.deleteService
}

// GetPager 获取媒体库分页器
func (c *Container) GetPager() *gallery.Pager {
	return c.pager
}

// GetQueryService 获取选中项解析服务
func (c *Container) GetQueryService() *gallery.QueryService {
	return c.queryService
}

// GetSyncService 获取关联同步服务
func (c *Container) GetSyncService() *gallery.SyncService {
	return c.syncService
}

// Close 关闭所有服务
func (c *Container) Close() error {
	log.Println("Closing DI container...")

	if c.cacheProvider != nil {
		if err := c.cacheProvider.Close(); err != nil {
			log.Printf("Error closing cache provider: %v", err)
		}
	}

	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			log.Printf("Error closing database factory: %v", err)
		}
	}

	log.Println("DI container closed")
	return nil
}
