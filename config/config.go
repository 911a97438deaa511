package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// 表名配置
	TableMedia  string `mapstructure:"table_media"`
	TableImages string `mapstructure:"table_images"`
	TableVideos string `mapstructure:"table_videos"`

	// 存储配置
	StorageType          string `mapstructure:"storage_type"`
	StorageLocalPath     string `mapstructure:"storage_local_path"`
	StoragePublicBaseURL string `mapstructure:"storage_public_base_url"`

	// MinIO 配置
	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`

	// WebDAV 配置
	WebDAVURL      string `mapstructure:"webdav_url"`
	WebDAVUsername string `mapstructure:"webdav_username"`
	WebDAVPassword string `mapstructure:"webdav_password"`
	WebDAVRootPath string `mapstructure:"webdav_root_path"`

	// 媒体库配置
	GalleryImagePath     string `mapstructure:"gallery_image_path"`
	GalleryVideoPath     string `mapstructure:"gallery_video_path"`
	GalleryThumbnailPath string `mapstructure:"gallery_thumbnail_path"`
	GalleryTempPath      string `mapstructure:"gallery_temp_path"`
	GalleryPerPage       int    `mapstructure:"gallery_per_page"`
	GalleryFields        string `mapstructure:"gallery_fields"`

	// 图片配置
	ImageMaxSizeMB       int    `mapstructure:"image_max_size_mb"`
	ImageAllowedMimes    string `mapstructure:"image_allowed_mimes"`
	ImageOptimizeQuality int    `mapstructure:"image_optimize_quality"`
	ImageMaxWidth        int    `mapstructure:"image_max_width"`
	ImageMaxHeight       int    `mapstructure:"image_max_height"`

	// 视频配置
	VideoMaxSizeMB         int     `mapstructure:"video_max_size_mb"`
	VideoAllowedMimes      string  `mapstructure:"video_allowed_mimes"`
	VideoThumbnailOffset   float64 `mapstructure:"video_thumbnail_offset"`
	VideoThumbnailFallback bool    `mapstructure:"video_thumbnail_fallback"`
	VideoThumbnailMaxWidth int     `mapstructure:"video_thumbnail_max_width"`
	VideoThumbnailQuality  int     `mapstructure:"video_thumbnail_quality"`

	// 转码器配置
	FFmpegPath    string        `mapstructure:"ffmpeg_path"`
	FFprobePath   string        `mapstructure:"ffprobe_path"`
	FFmpegTimeout time.Duration `mapstructure:"ffmpeg_timeout"`

	// 关联同步配置
	RelationSyncStrict bool `mapstructure:"relation_sync_strict"`

	// 缓存配置
	CacheType          string        `mapstructure:"cache_type"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	CacheRedisAddr     string        `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string        `mapstructure:"cache_redis_password"`
	CacheRedisDB       int           `mapstructure:"cache_redis_db"`

	// 限流配置
	RateLimitUploadRPS   float64       `mapstructure:"rate_limit_upload_rps"`
	RateLimitUploadBurst int           `mapstructure:"rate_limit_upload_burst"`
	RateLimitAPIRPS      float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitAPIBurst    int           `mapstructure:"rate_limit_api_burst"`
	RateLimitExpireTime  time.Duration `mapstructure:"rate_limit_expire_time"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Info: .env file not found, using defaults and environment variables")
	} else {
		fmt.Fprintln(os.Stderr, "Info: Loaded configuration from .env file")
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}
}

// setDefaults 设置默认值
func setDefaults() {
	// 服务器配置默认值
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_domain", "")
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "30s")
	viper.SetDefault("server_idle_timeout", "120s")

	// 数据库配置默认值
	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "media-gallery")
	viper.SetDefault("db_file_path", "")
	viper.SetDefault("db_max_open_conns", 100)
	viper.SetDefault("db_max_idle_conns", 25)
	viper.SetDefault("db_conn_max_lifetime", 3600)

	// 表名默认值
	viper.SetDefault("table_media", "media")
	viper.SetDefault("table_images", "images")
	viper.SetDefault("table_videos", "videos")

	// 存储配置默认值
	viper.SetDefault("storage_type", "local")
	viper.SetDefault("storage_local_path", "./data/storage")
	viper.SetDefault("storage_public_base_url", "")

	// MinIO 配置默认值
	viper.SetDefault("minio_endpoint", "")
	viper.SetDefault("minio_access_key", "")
	viper.SetDefault("minio_secret_key", "")
	viper.SetDefault("minio_bucket", "media-gallery")
	viper.SetDefault("minio_use_ssl", false)

	// WebDAV 配置默认值
	viper.SetDefault("webdav_url", "")
	viper.SetDefault("webdav_username", "")
	viper.SetDefault("webdav_password", "")
	viper.SetDefault("webdav_root_path", "")

	// 媒体库配置默认值
	viper.SetDefault("gallery_image_path", "gallery/images")
	viper.SetDefault("gallery_video_path", "gallery/videos")
	viper.SetDefault("gallery_thumbnail_path", "gallery/thumbnails")
	viper.SetDefault("gallery_temp_path", "./data/temp")
	viper.SetDefault("gallery_per_page", 24)
	viper.SetDefault("gallery_fields", "")

	// 图片配置默认值
	viper.SetDefault("image_max_size_mb", 10)
	viper.SetDefault("image_allowed_mimes", "image/jpeg,image/png,image/webp,image/gif")
	viper.SetDefault("image_optimize_quality", 85)
	viper.SetDefault("image_max_width", 1920)
	viper.SetDefault("image_max_height", 1080)

	// 视频配置默认值
	viper.SetDefault("video_max_size_mb", 250)
	viper.SetDefault("video_allowed_mimes", "video/mp4,video/webm,video/quicktime")
	viper.SetDefault("video_thumbnail_offset", 1.0)
	viper.SetDefault("video_thumbnail_fallback", true)
	viper.SetDefault("video_thumbnail_max_width", 640)
	viper.SetDefault("video_thumbnail_quality", 85)

	// 转码器配置默认值
	viper.SetDefault("ffmpeg_path", "ffmpeg")
	viper.SetDefault("ffprobe_path", "ffprobe")
	viper.SetDefault("ffmpeg_timeout", "30s")

	// 关联同步默认值
	viper.SetDefault("relation_sync_strict", false)

	// 缓存配置默认值
	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_ttl", "1h")
	viper.SetDefault("cache_redis_addr", "localhost:6379")
	viper.SetDefault("cache_redis_password", "")
	viper.SetDefault("cache_redis_db", 0)

	// 限流配置默认值
	viper.SetDefault("rate_limit_upload_rps", 5.0)
	viper.SetDefault("rate_limit_upload_burst", 10)
	viper.SetDefault("rate_limit_api_rps", 30.0)
	viper.SetDefault("rate_limit_api_burst", 60)
	viper.SetDefault("rate_limit_expire_time", "10m")
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// BaseURL 返回基础 URL，用于生成媒体链接
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return c.ServerDomain
	}
	host := c.ServerHost
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}

// PublicBaseURL 返回本地存储的公共访问前缀
func (c *Config) PublicBaseURL() string {
	if c.StoragePublicBaseURL != "" {
		return strings.TrimRight(c.StoragePublicBaseURL, "/")
	}
	return c.BaseURL() + "/storage"
}

// ImageAllowedMimeList 返回允许的图片 MIME 类型列表
func (c *Config) ImageAllowedMimeList() []string {
	return splitMimeList(c.ImageAllowedMimes)
}

// VideoAllowedMimeList 返回允许的视频 MIME 类型列表
func (c *Config) VideoAllowedMimeList() []string {
	return splitMimeList(c.VideoAllowedMimes)
}

func splitMimeList(raw string) []string {
	parts := strings.Split(raw, ",")
	mimes := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			mimes = append(mimes, p)
		}
	}
	return mimes
}
