package cmd

import (
	"log"
	"time"

	"github.com/devanderson/media-gallery/config"
	"github.com/devanderson/media-gallery/internal/staging"
	"github.com/spf13/cobra"
)

// cleanCmd 清理暂存区的过期文件
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove stale staged upload files",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		maxAge, _ := cmd.Flags().GetDuration("max-age")

		store, err := staging.NewStore(config.Get().GalleryTempPath)
		if err != nil {
			log.Fatalf("Failed to open staging directory: %v", err)
		}

		removed, err := store.CleanupOlderThan(maxAge)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		log.Printf("Removed %d staged files older than %s", removed, maxAge)
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Duration("max-age", time.Hour, "Remove staged files older than this duration")
}
