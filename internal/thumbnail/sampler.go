package thumbnail

import (
	"context"
	"log"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

// GenerateSamples 在视频时间轴上等距抽取多张缩略图
// 时长为 duration/(n+1) 的整数倍处各取一帧；时长未知时退化为单张 Generate
func (g *Generator) GenerateSamples(ctx context.Context, videoKey, originalName string, n int) []string {
	if n <= 1 {
		if key := g.Generate(ctx, videoKey, originalName, 0); key != "" {
			return []string{key}
		}
		return nil
	}

	duration, ok := g.Duration(ctx, videoKey)
	if !ok {
		log.Printf("[Thumbnail] Unknown duration for %s, sampling single frame", videoKey)
		if key := g.Generate(ctx, videoKey, originalName, 0); key != "" {
			return []string{key}
		}
		return nil
	}

	localPath, cleanup, err := g.stageLocal(ctx, videoKey)
	if err != nil {
		log.Printf("[Thumbnail] Failed to stage video %s for sampling: %v", videoKey, err)
		return nil
	}
	defer cleanup()

	if !g.Available(ctx) {
		return nil
	}

	step := duration / float64(n+1)
	keys := make([]string, n)
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	for i := 1; i <= n; i++ {
		idx := i
		eg.Go(func() error {
			framePath, err := g.extractFrame(egCtx, localPath, step*float64(idx))
			if err != nil {
				log.Printf("[Thumbnail] Sample %d failed for %s: %v", idx, videoKey, err)
				return nil
			}
			defer func() { _ = os.Remove(framePath) }()

			key := g.keys.SampleFrameKey(idx)
			if err := g.storeOptimized(egCtx, framePath, key); err != nil {
				log.Printf("[Thumbnail] Failed to store sample %d for %s: %v", idx, videoKey, err)
				return nil
			}

			mu.Lock()
			keys[idx-1] = key
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	out := make([]string, 0, n)
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
