// Package db は、スキーマのマイグレーションとSQLクエリを提供します。
package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed schema/*.sql
var embedMigrations embed.FS

const migrationDir = "schema"

// setup は goose を SQLite 用に設定します。
func setup(conn *sql.DB) error {
	// 外部キー制約を有効化
	if _, err := conn.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// Migrate はデータベースに対してマイグレーションを実行します。
func Migrate(conn *sql.DB) error {
	if err := setup(conn); err != nil {
		return err
	}

	// マイグレーションを実行
	if err := goose.Up(conn, migrationDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Rollback は直近のマイグレーションを1つ戻します。
func Rollback(conn *sql.DB) error {
	if err := setup(conn); err != nil {
		return err
	}
	if err := goose.Down(conn, migrationDir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Version は適用済みの最新マイグレーションのバージョンを返します。
func Version(conn *sql.DB) (int64, error) {
	if err := setup(conn); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersion(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return v, nil
}
