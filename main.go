// Package main はweekwideサーバーのエントリーポイントを提供します。
package main

import (
	"log"
	"os"

	"github.com/stsysd/weekwide/api"
	"github.com/stsysd/weekwide/config"
	"github.com/stsysd/weekwide/db"
	"github.com/stsysd/weekwide/store"
)

func main() {
	// サブコマンド: weekwide migrate up|down|version
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrateCommand(os.Args[2:]); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		return
	}

	// 設定の読み込み
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// SQLiteストアの初期化（マイグレーション関数を渡す）
	sqliteStore, err := store.NewSQLiteStore(cfg.DataDir, db.Migrate)
	if err != nil {
		log.Fatalf("Failed to initialize SQLite store: %v", err)
	}
	defer sqliteStore.Close()

	// サーバーインスタンスの作成
	server := api.NewServer(sqliteStore, cfg)

	// サーバーの起動
	log.Fatal(server.Run(":" + cfg.Port))
}
