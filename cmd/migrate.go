package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the collections and entries tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg := loadConfig()
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		target := cfg.SQLitePath
		if cfg.DatabaseDriver != "sqlite" && cfg.DatabaseDriver != "sqlite3" {
			target = maskPassword(cfg.DatabaseURL)
		}
		fmt.Printf("🔗 Connecting to %s database: %s\n", cfg.DatabaseDriver, target)

		db, err := openDatabase(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		defer db.Close()

		// 验证表是否创建成功
		fmt.Println("🔍 Verifying tables...")
		for _, table := range []string{"collections", "entries"} {
			n, err := db.Count(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
			if err != nil {
				return fmt.Errorf("table %s: %w", table, err)
			}
			fmt.Printf("✅ Table %s: %d records\n", table, n)
		}

		color.Green("🎉 Database schema is ready")
		return nil
	},
}

// maskPassword 隐藏连接字符串中的密码
func maskPassword(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		creds = creds[:colon] + ":***"
	}
	return dsn[:scheme+3] + creds + dsn[at:]
}
