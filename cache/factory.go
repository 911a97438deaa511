package cache

import (
	"fmt"
	"log"

	"github.com/devanderson/media-gallery/config"
)

// NewFromConfig 根据配置创建缓存提供者
// redis 不可用时不中断启动，回退到内存缓存
func NewFromConfig(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "redis":
		provider, err := NewRedis(cfg.CacheRedisAddr, cfg.CacheRedisPassword, cfg.CacheRedisDB)
		if err != nil {
			log.Printf("Failed to connect to redis cache at %s, falling back to memory: %v", cfg.CacheRedisAddr, err)
			memory, memErr := NewMemory(DefaultMemoryConfig())
			if memErr != nil {
				return nil, memErr
			}
			return memory, nil
		}
		log.Printf("Using redis cache at %s", cfg.CacheRedisAddr)
		return provider, nil

	case "memory", "":
		memory, err := NewMemory(DefaultMemoryConfig())
		if err != nil {
			return nil, err
		}
		return memory, nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
