// Package config はアプリケーション設定を管理します。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stsysd/weekwide/timeline"
)

// 共有トークンのデフォルト有効期間
const defaultShareTTL = 30 * 24 * time.Hour

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	// データディレクトリのパス
	DataDir string

	// HTTPサーバーのポート
	Port string

	// API認証キー（平文）
	APIKey string

	// API認証キーのbcryptハッシュ。APIKeyより優先される
	APIKeyHash string

	// 共有トークンの署名鍵。空の場合は共有機能を無効化する
	ShareSecret string

	// 共有トークンの有効期間
	ShareTTL time.Duration

	// 「今日」を決めるタイムゾーン
	Location *time.Location

	// 新規タイムラインの表示設定
	Defaults timeline.Config
}

// NewConfig は環境変数から設定を読み込み、Configインスタンスを生成します。
func NewConfig() (*Config, error) {
	// データディレクトリの設定
	dataDir := DataDir()

	// ポートの設定
	port := os.Getenv("WEEKWIDE_SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	// API認証キーの設定（デフォルトキーは設定しない）
	apiKey := os.Getenv("WEEKWIDE_API_KEY")
	apiKeyHash := os.Getenv("WEEKWIDE_API_KEY_HASH")
	if apiKey == "" && apiKeyHash == "" {
		return nil, errors.New("WEEKWIDE_API_KEY or WEEKWIDE_API_KEY_HASH must be set")
	}

	// 共有トークンの有効期間
	shareTTL := defaultShareTTL
	if v := os.Getenv("WEEKWIDE_SHARE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid WEEKWIDE_SHARE_TTL %q", v)
		}
		shareTTL = d
	}

	// タイムゾーン
	loc := time.Local
	if v := os.Getenv("WEEKWIDE_TZ"); v != "" {
		l, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("invalid WEEKWIDE_TZ: %w", err)
		}
		loc = l
	}

	// 表示設定のデフォルト値
	defaults := timeline.DefaultConfig()
	if path := os.Getenv("WEEKWIDE_CONFIG"); path != "" {
		d, err := LoadDefaults(path)
		if err != nil {
			return nil, err
		}
		defaults = d
	}

	return &Config{
		DataDir:     dataDir,
		Port:        port,
		APIKey:      apiKey,
		APIKeyHash:  apiKeyHash,
		ShareSecret: os.Getenv("WEEKWIDE_SHARE_SECRET"),
		ShareTTL:    shareTTL,
		Location:    loc,
		Defaults:    defaults,
	}, nil
}

// DataDir はデータディレクトリのパスを返します。
// マイグレーションコマンドのようにAPIキーを必要としない処理からも使われます。
func DataDir() string {
	if dir := os.Getenv("WEEKWIDE_DATA_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(".", "data")
}

// LoadDefaults はYAMLファイルから表示設定を読み込みます。
// ファイルに書かれていない項目はデフォルト値のままです。
func LoadDefaults(path string) (timeline.Config, error) {
	cfg := timeline.DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var file struct {
		Display timeline.Config `yaml:"display"`
	}
	file.Display = cfg
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return timeline.Normalize(file.Display), nil
}
