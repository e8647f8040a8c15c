// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
	"github.com/stsysd/weekwide/timeline"
)

// Timeline は永続化されたタイムラインエンティティを表すモデルです。
type Timeline struct {
	ID          uuid.UUID       `json:"id"`          // タイムラインID
	Name        string          `json:"name"`        // タイムライン名
	Description string          `json:"description"` // タイムラインの説明
	Settings    timeline.Config `json:"settings"`    // 表示設定
	CreatedAt   time.Time       `json:"created_at"`  // 作成日時
	UpdatedAt   time.Time       `json:"updated_at"`  // 更新日時
}

// NewTimeline は新しいTimelineインスタンスを作成します。
// 表示設定は正規化されてから保持されます。
func NewTimeline(name, description string, settings timeline.Config) (*Timeline, error) {
	now := time.Now()
	tl := &Timeline{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Settings:    timeline.Normalize(settings),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	return tl, nil
}

// LoadTimeline は既存のTimelineインスタンスを作成します。
func LoadTimeline(id uuid.UUID, name, description string, settings timeline.Config, createdAt, updatedAt time.Time) (*Timeline, error) {
	tl := &Timeline{
		ID:          id,
		Name:        name,
		Description: description,
		Settings:    timeline.Normalize(settings),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	return tl, nil
}

// Validate はタイムラインのデータバリデーションを行います。
func (t *Timeline) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id is required")
	}
	if t.Name == "" {
		return NewValidationError("name is required")
	}
	if t.CreatedAt.IsZero() {
		return NewValidationError("created_at is required")
	}
	if t.UpdatedAt.IsZero() {
		return NewValidationError("updated_at is required")
	}
	return nil
}

// Point はタイムライン上の1日分の値を表すモデルです。
type Point struct {
	Date  calendar.DateKey `json:"date"`  // 日付キー
	Value float64          `json:"value"` // 記録値
}

// NewPoint はPointの新しいインスタンスを作成します。
func NewPoint(date calendar.DateKey, value float64) (*Point, error) {
	p := &Point{Date: date, Value: value}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate はポイントのデータバリデーションを行います。
func (p *Point) Validate() error {
	if !p.Date.Valid() {
		return NewValidationError("date must be YYYY-MM-DD")
	}
	return nil
}

// Data はグリッド構築用のデータに変換します。
func (p Point) Data() heatmap.Data {
	return heatmap.Data{Key: p.Date, Value: p.Value}
}

// PointsFromData は取り込み結果をPointのスライスに変換します。
func PointsFromData(data []heatmap.Data) []Point {
	points := make([]Point, len(data))
	for i, d := range data {
		points[i] = Point{Date: d.Key, Value: d.Value}
	}
	return points
}
