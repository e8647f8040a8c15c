package db

import (
	"context"
	"database/sql"
)

// DBTX は *sql.DB と *sql.Tx の共通インターフェースです。
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New はQueriesを生成します。
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries はテーブルごとのSQLをまとめたものです。
type Queries struct {
	db DBTX
}

// WithTx はトランザクション内で実行するQueriesを返します。
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Timeline は timelines テーブルの1行です。
type Timeline struct {
	ID          string
	Name        string
	Description string
	Settings    string
	CreatedAt   string
	UpdatedAt   string
}

// Point は points テーブルの1行です。
type Point struct {
	TimelineID string
	Date       string
	Value      float64
}

const createTimeline = `
INSERT INTO timelines (id, name, description, settings, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateTimelineParams struct {
	ID          string
	Name        string
	Description string
	Settings    string
	CreatedAt   string
	UpdatedAt   string
}

func (q *Queries) CreateTimeline(ctx context.Context, arg CreateTimelineParams) error {
	_, err := q.db.ExecContext(ctx, createTimeline,
		arg.ID, arg.Name, arg.Description, arg.Settings, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const getTimeline = `
SELECT id, name, description, settings, created_at, updated_at
FROM timelines
WHERE id = ?
`

func (q *Queries) GetTimeline(ctx context.Context, id string) (Timeline, error) {
	row := q.db.QueryRowContext(ctx, getTimeline, id)
	var i Timeline
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Settings, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const updateTimeline = `
UPDATE timelines
SET name = ?, description = ?, settings = ?, updated_at = ?
WHERE id = ?
`

type UpdateTimelineParams struct {
	Name        string
	Description string
	Settings    string
	UpdatedAt   string
	ID          string
}

func (q *Queries) UpdateTimeline(ctx context.Context, arg UpdateTimelineParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, updateTimeline,
		arg.Name, arg.Description, arg.Settings, arg.UpdatedAt, arg.ID)
}

const touchTimeline = `
UPDATE timelines SET updated_at = ? WHERE id = ?
`

type TouchTimelineParams struct {
	UpdatedAt string
	ID        string
}

func (q *Queries) TouchTimeline(ctx context.Context, arg TouchTimelineParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, touchTimeline, arg.UpdatedAt, arg.ID)
}

const deleteTimeline = `
DELETE FROM timelines WHERE id = ?
`

func (q *Queries) DeleteTimeline(ctx context.Context, id string) (sql.Result, error) {
	return q.db.ExecContext(ctx, deleteTimeline, id)
}

const listTimelines = `
SELECT id, name, description, settings, created_at, updated_at
FROM timelines
ORDER BY updated_at DESC, id
LIMIT ? OFFSET ?
`

type ListTimelinesParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListTimelines(ctx context.Context, arg ListTimelinesParams) ([]Timeline, error) {
	rows, err := q.db.QueryContext(ctx, listTimelines, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Timeline
	for rows.Next() {
		var i Timeline
		if err := rows.Scan(&i.ID, &i.Name, &i.Description, &i.Settings, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertPoint = `
INSERT INTO points (timeline_id, date, value)
VALUES (?, ?, ?)
ON CONFLICT (timeline_id, date) DO UPDATE SET value = excluded.value
`

type UpsertPointParams struct {
	TimelineID string
	Date       string
	Value      float64
}

func (q *Queries) UpsertPoint(ctx context.Context, arg UpsertPointParams) error {
	_, err := q.db.ExecContext(ctx, upsertPoint, arg.TimelineID, arg.Date, arg.Value)
	return err
}

const incrementPoint = `
INSERT INTO points (timeline_id, date, value)
VALUES (?, ?, 1)
ON CONFLICT (timeline_id, date) DO UPDATE SET value = points.value + 1
`

type IncrementPointParams struct {
	TimelineID string
	Date       string
}

func (q *Queries) IncrementPoint(ctx context.Context, arg IncrementPointParams) error {
	_, err := q.db.ExecContext(ctx, incrementPoint, arg.TimelineID, arg.Date)
	return err
}

const deletePoint = `
DELETE FROM points WHERE timeline_id = ? AND date = ?
`

type DeletePointParams struct {
	TimelineID string
	Date       string
}

func (q *Queries) DeletePoint(ctx context.Context, arg DeletePointParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, deletePoint, arg.TimelineID, arg.Date)
}

const deletePoints = `
DELETE FROM points WHERE timeline_id = ?
`

func (q *Queries) DeletePoints(ctx context.Context, timelineID string) (sql.Result, error) {
	return q.db.ExecContext(ctx, deletePoints, timelineID)
}

const listPoints = `
SELECT timeline_id, date, value
FROM points
WHERE timeline_id = ? AND date >= ? AND date <= ?
ORDER BY date
`

type ListPointsParams struct {
	TimelineID string
	FromDate   string
	ToDate     string
}

func (q *Queries) ListPoints(ctx context.Context, arg ListPointsParams) ([]Point, error) {
	rows, err := q.db.QueryContext(ctx, listPoints, arg.TimelineID, arg.FromDate, arg.ToDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Point
	for rows.Next() {
		var i Point
		if err := rows.Scan(&i.TimelineID, &i.Date, &i.Value); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
