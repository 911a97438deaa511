package cmd

import (
	"log"

	"github.com/devanderson/media-gallery/config"
	"github.com/devanderson/media-gallery/database"
	"github.com/spf13/cobra"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migration",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()

		factory, err := database.NewFactory(config.Get())
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer func() { _ = factory.Close() }()

		if err := factory.AutoMigrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration completed successfully")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
