package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Flapjacck/moxbox/pkg/configs"
	"github.com/Flapjacck/moxbox/pkg/internal/storage/db"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:   "ls",
		Short: "list all registered database types",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered database types:")
			for _, dbType := range db.GetRegisteredDBTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), " - "+dbType)
			}
		},
	}

	// 建连即迁移 catalog 表，适合容器启动前初始化 schema.
	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "connect to the configured database and migrate the catalog schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			client, err := db.New(cmd.Context())
			if err != nil {
				return fmt.Errorf("migrate catalog schema: %w", err)
			}
			defer func() { _ = client.Close() }()

			cfg := configs.GetConfig().DB
			fmt.Fprintf(cmd.OutOrStdout(), "catalog schema up to date (%s/%s)\n", cfg.GetDBType(), cfg.Database)

			return nil
		},
	}
)

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	rootCmd.AddCommand(dbCmd)

	dbCmd.AddCommand(dbListCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}
