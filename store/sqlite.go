// Package store は、データの永続化機能を提供します。
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/db"
	"github.com/stsysd/weekwide/model"
	"github.com/stsysd/weekwide/timeline"
)

// 日付範囲を指定しない場合の番兵値
const (
	minDateKey = "0000-01-01"
	maxDateKey = "9999-12-31"
)

// TimelineStore はタイムラインの保存と取得を行うインターフェースです。
type TimelineStore interface {
	// CreateTimeline は新しいタイムラインを作成します。
	CreateTimeline(ctx context.Context, tl *model.Timeline) error
	// GetTimeline は指定されたIDのタイムラインを取得します。
	GetTimeline(ctx context.Context, id uuid.UUID) (*model.Timeline, error)
	// UpdateTimeline は指定されたタイムラインを更新します。
	UpdateTimeline(ctx context.Context, tl *model.Timeline) error
	// DeleteTimeline はタイムラインとそのすべてのポイントを削除します。
	DeleteTimeline(ctx context.Context, id uuid.UUID) error
	// ListTimelines は更新日時の新しい順にタイムラインを取得します。
	ListTimelines(ctx context.Context, limit, offset int) ([]*model.Timeline, error)
}

// PointStore はタイムラインのポイントの保存と取得を行うインターフェースです。
type PointStore interface {
	// ReplacePoints はタイムラインのポイントをすべて置き換えます。
	ReplacePoints(ctx context.Context, id uuid.UUID, points []model.Point) error
	// UpsertPoint は1日分のポイントを追加または上書きします。
	UpsertPoint(ctx context.Context, id uuid.UUID, p model.Point) error
	// IncrementPoint は1日分の値を1増やします。ポイントがなければ1で作成します。
	IncrementPoint(ctx context.Context, id uuid.UUID, date calendar.DateKey) error
	// DeletePoint は1日分のポイントを削除します。
	DeletePoint(ctx context.Context, id uuid.UUID, date calendar.DateKey) error
	// ClearPoints はタイムラインのポイントをすべて削除し、削除件数を返します。
	ClearPoints(ctx context.Context, id uuid.UUID) (int, error)
	// ListPoints は指定期間のポイントを日付順に取得します。空の境界は無制限です。
	ListPoints(ctx context.Context, id uuid.UUID, from, to calendar.DateKey) ([]model.Point, error)
}

// Store はAPIサーバーが利用するストアです。
type Store interface {
	TimelineStore
	PointStore
	// Close はストアの接続を閉じます。
	Close() error
}

// SQLiteStore はSQLiteを使用したStoreの実装です。
type SQLiteStore struct {
	conn    *sql.DB
	queries *db.Queries
	clock   func() time.Time
}

// NewSQLiteStore は新しいSQLiteStoreを作成します。
func NewSQLiteStore(dataDir string, migrate func(*sql.DB) error) (*SQLiteStore, error) {
	// データディレクトリの作成（存在しない場合）
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := Open(dataDir)
	if err != nil {
		return nil, err
	}

	// マイグレーションの実行
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{
		conn:    conn,
		queries: db.New(conn),
		clock:   time.Now,
	}, nil
}

// Open はデータディレクトリ内のSQLiteデータベースに接続します。
func Open(dataDir string) (*sql.DB, error) {
	// 外部キー制約はコネクションごとに有効化が必要なためDSNで指定する
	dsn := "file:" + filepath.Join(dataDir, "weekwide.db") + "?_foreign_keys=on&_busy_timeout=5000"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}
	return conn, nil
}

// Close はデータベース接続を閉じます。
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// CreateTimeline は新しいタイムラインをデータベースに保存します。
func (s *SQLiteStore) CreateTimeline(ctx context.Context, tl *model.Timeline) error {
	if err := tl.Validate(); err != nil {
		return err
	}

	settings, err := json.Marshal(tl.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	return s.queries.CreateTimeline(ctx, db.CreateTimelineParams{
		ID:          tl.ID.String(),
		Name:        tl.Name,
		Description: tl.Description,
		Settings:    string(settings),
		CreatedAt:   tl.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   tl.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// GetTimeline は指定されたIDのタイムラインを取得します。
func (s *SQLiteStore) GetTimeline(ctx context.Context, id uuid.UUID) (*model.Timeline, error) {
	row, err := s.queries.GetTimeline(ctx, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrTimelineNotFound
	}
	if err != nil {
		return nil, err
	}
	return loadTimeline(row)
}

// UpdateTimeline は指定されたタイムラインを更新します。
func (s *SQLiteStore) UpdateTimeline(ctx context.Context, tl *model.Timeline) error {
	if err := tl.Validate(); err != nil {
		return err
	}

	settings, err := json.Marshal(tl.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	result, err := s.queries.UpdateTimeline(ctx, db.UpdateTimelineParams{
		Name:        tl.Name,
		Description: tl.Description,
		Settings:    string(settings),
		UpdatedAt:   tl.UpdatedAt.UTC().Format(time.RFC3339Nano),
		ID:          tl.ID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to update timeline: %w", err)
	}
	return requireAffected(result, model.ErrTimelineNotFound)
}

// DeleteTimeline はタイムラインとそのすべてのポイントを削除します。
func (s *SQLiteStore) DeleteTimeline(ctx context.Context, id uuid.UUID) error {
	return s.withTx(ctx, func(q *db.Queries) error {
		if _, err := q.DeletePoints(ctx, id.String()); err != nil {
			return fmt.Errorf("failed to delete points: %w", err)
		}
		result, err := q.DeleteTimeline(ctx, id.String())
		if err != nil {
			return fmt.Errorf("failed to delete timeline: %w", err)
		}
		return requireAffected(result, model.ErrTimelineNotFound)
	})
}

// ListTimelines は更新日時の新しい順にタイムラインを取得します。
func (s *SQLiteStore) ListTimelines(ctx context.Context, limit, offset int) ([]*model.Timeline, error) {
	rows, err := s.queries.ListTimelines(ctx, db.ListTimelinesParams{
		Limit:  int64(limit),
		Offset: int64(offset),
	})
	if err != nil {
		return nil, err
	}

	timelines := make([]*model.Timeline, 0, len(rows))
	for _, row := range rows {
		tl, err := loadTimeline(row)
		if err != nil {
			return nil, err
		}
		timelines = append(timelines, tl)
	}
	return timelines, nil
}

// ReplacePoints はタイムラインのポイントをすべて置き換えます。
// 同じ日付が複数ある場合は後のものが優先されます。
func (s *SQLiteStore) ReplacePoints(ctx context.Context, id uuid.UUID, points []model.Point) error {
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	return s.withTimeline(ctx, id, func(q *db.Queries) error {
		if _, err := q.DeletePoints(ctx, id.String()); err != nil {
			return fmt.Errorf("failed to delete points: %w", err)
		}
		for _, p := range points {
			err := q.UpsertPoint(ctx, db.UpsertPointParams{
				TimelineID: id.String(),
				Date:       p.Date.String(),
				Value:      p.Value,
			})
			if err != nil {
				return fmt.Errorf("failed to insert point %s: %w", p.Date, err)
			}
		}
		return nil
	})
}

// UpsertPoint は1日分のポイントを追加または上書きします。
func (s *SQLiteStore) UpsertPoint(ctx context.Context, id uuid.UUID, p model.Point) error {
	if err := p.Validate(); err != nil {
		return err
	}

	return s.withTimeline(ctx, id, func(q *db.Queries) error {
		return q.UpsertPoint(ctx, db.UpsertPointParams{
			TimelineID: id.String(),
			Date:       p.Date.String(),
			Value:      p.Value,
		})
	})
}

// IncrementPoint は1日分の値を1増やします。
// 読み出しと書き込みを1つのSQL文で行うため、同時に呼び出されても加算は失われません。
func (s *SQLiteStore) IncrementPoint(ctx context.Context, id uuid.UUID, date calendar.DateKey) error {
	if !date.Valid() {
		return model.NewValidationError("date must be YYYY-MM-DD")
	}

	return s.withTimeline(ctx, id, func(q *db.Queries) error {
		return q.IncrementPoint(ctx, db.IncrementPointParams{
			TimelineID: id.String(),
			Date:       date.String(),
		})
	})
}

// DeletePoint は1日分のポイントを削除します。
func (s *SQLiteStore) DeletePoint(ctx context.Context, id uuid.UUID, date calendar.DateKey) error {
	return s.withTimeline(ctx, id, func(q *db.Queries) error {
		result, err := q.DeletePoint(ctx, db.DeletePointParams{
			TimelineID: id.String(),
			Date:       date.String(),
		})
		if err != nil {
			return fmt.Errorf("failed to delete point: %w", err)
		}
		return requireAffected(result, model.ErrPointNotFound)
	})
}

// ClearPoints はタイムラインのポイントをすべて削除し、削除件数を返します。
func (s *SQLiteStore) ClearPoints(ctx context.Context, id uuid.UUID) (int, error) {
	var deleted int64
	err := s.withTimeline(ctx, id, func(q *db.Queries) error {
		result, err := q.DeletePoints(ctx, id.String())
		if err != nil {
			return fmt.Errorf("failed to delete points: %w", err)
		}
		deleted, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

// ListPoints は指定期間のポイントを日付順に取得します。
func (s *SQLiteStore) ListPoints(ctx context.Context, id uuid.UUID, from, to calendar.DateKey) ([]model.Point, error) {
	// タイムラインの存在確認
	if _, err := s.queries.GetTimeline(ctx, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTimelineNotFound
		}
		return nil, err
	}

	params := db.ListPointsParams{
		TimelineID: id.String(),
		FromDate:   minDateKey,
		ToDate:     maxDateKey,
	}
	if from != "" {
		params.FromDate = from.String()
	}
	if to != "" {
		params.ToDate = to.String()
	}

	rows, err := s.queries.ListPoints(ctx, params)
	if err != nil {
		return nil, err
	}

	points := make([]model.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, model.Point{Date: calendar.DateKey(row.Date), Value: row.Value})
	}
	return points, nil
}

// withTimeline はタイムラインの存在を確認したうえでトランザクション内でfnを実行し、
// 成功した場合はタイムラインの更新日時を進めます。
func (s *SQLiteStore) withTimeline(ctx context.Context, id uuid.UUID, fn func(q *db.Queries) error) error {
	return s.withTx(ctx, func(q *db.Queries) error {
		result, err := q.TouchTimeline(ctx, db.TouchTimelineParams{
			UpdatedAt: s.clock().UTC().Format(time.RFC3339Nano),
			ID:        id.String(),
		})
		if err != nil {
			return fmt.Errorf("failed to touch timeline: %w", err)
		}
		if err := requireAffected(result, model.ErrTimelineNotFound); err != nil {
			return err
		}
		return fn(q)
	})
}

// withTx はトランザクション内でfnを実行します。
func (s *SQLiteStore) withTx(ctx context.Context, fn func(q *db.Queries) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// トランザクションをロールバックするための遅延関数
	defer func() {
		if tx != nil {
			tx.Rollback() // 成功した場合は既にnilになっているためエラーは無視
		}
	}()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil // コミットが成功したのでnilにして遅延関数でのロールバックを防ぐ

	return nil
}

// requireAffected は1行も更新されなかった場合にnotFoundを返します。
func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

// loadTimeline はDBの行をモデルに変換します。
func loadTimeline(row db.Timeline) (*model.Timeline, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in database: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	// 保存済みの設定に存在しない項目はデフォルト値を使う
	settings := timeline.DefaultConfig()
	if err := json.Unmarshal([]byte(row.Settings), &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return model.LoadTimeline(id, row.Name, row.Description, settings, createdAt, updatedAt)
}
