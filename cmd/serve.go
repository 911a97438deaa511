package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devanderson/media-gallery/api/core"
	"github.com/devanderson/media-gallery/config"
	"github.com/devanderson/media-gallery/internal/di"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	container := di.NewContainer(cfg)
	if err := container.Init(); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if err := container.GetDatabaseFactory().AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 启动gin
	server, cleanup := core.StartServer(container)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 启动暂存区清理任务
	stopCleanup := make(chan struct{})
	go runStagingCleanup(container, stopCleanup)

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	close(stopCleanup)
	cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := container.Close(); err != nil {
		log.Printf("Error closing container: %v", err)
	}

	log.Println("Server exited")
}

// runStagingCleanup 周期清理超过一小时未提交的暂存文件
func runStagingCleanup(container *di.Container, stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := container.GetStagingStore().CleanupOlderThan(time.Hour)
			if err != nil {
				log.Printf("[Staging] Cleanup failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("[Staging] Cleaned up %d stale staged files", removed)
			}
		case <-stop:
			return
		}
	}
}
