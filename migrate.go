package main

import (
	"fmt"
	"log"
	"os"

	"github.com/stsysd/weekwide/config"
	"github.com/stsysd/weekwide/db"
	"github.com/stsysd/weekwide/store"
)

// runMigrateCommand はデータベースのマイグレーションを手動で操作します。
func runMigrateCommand(args []string) error {
	action := "up"
	if len(args) > 0 {
		action = args[0]
	}

	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := store.Open(dataDir)
	if err != nil {
		return err
	}
	defer conn.Close()

	switch action {
	case "up":
		if err := db.Migrate(conn); err != nil {
			return err
		}
	case "down":
		if err := db.Rollback(conn); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q (want up, down or version)", action)
	}

	// 適用後のバージョンを表示
	version, err := db.Version(conn)
	if err != nil {
		return err
	}
	log.Printf("Schema version: %d (%s)", version, dataDir)
	return nil
}
