// Package api はweekwideのAPIサーバー実装を提供します。
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/config"
	"github.com/stsysd/weekwide/heatmap"
	"github.com/stsysd/weekwide/ingest"
	"github.com/stsysd/weekwide/model"
	"github.com/stsysd/weekwide/store"
	"github.com/stsysd/weekwide/timeline"
)

// リクエストボディの上限（取り込みデータを含む）
const maxBodySize = 8 << 20

// Server はAPIサーバーの構造体です。
type Server struct {
	router *http.ServeMux
	store  store.Store
	config *config.Config
	clock  func() time.Time
}

// ErrorResponse はエラーレスポンスの構造体です。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// writeJSONError はJSON形式でエラーレスポンスを返却します。
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := ErrorResponse{
		Error: message,
		Code:  statusCode,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding error response: %v", err)
	}
}

// writeJSON はJSON形式でレスポンスを返却します。
func writeJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeStoreError はストアのエラーを適切なステータスコードに変換します。
func writeStoreError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, model.ErrTimelineNotFound):
		writeJSONError(w, "Timeline not found", http.StatusNotFound)
	case errors.Is(err, model.ErrPointNotFound):
		writeJSONError(w, "Point not found", http.StatusNotFound)
	default:
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeJSONError(w, verr.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Error %s: %v", action, err)
		writeJSONError(w, fmt.Sprintf("Failed %s", action), http.StatusInternalServerError)
	}
}

// NewServer は新しいAPIサーバーインスタンスを生成します。
func NewServer(store store.Store, config *config.Config) *Server {
	s := &Server{
		router: http.NewServeMux(),
		store:  store,
		config: config,
		clock:  time.Now,
	}
	s.routes()
	return s
}

// routes はAPIエンドポイントのルーティングを設定します。
func (s *Server) routes() {
	// ヘルスチェックエンドポイントは認証不要
	s.router.HandleFunc("GET /healthz", s.handleHealthCheck)

	// すべての保護されたエンドポイントをまずセキュアなルータに登録
	securedHandler := http.NewServeMux()

	// Timeline endpoints
	securedHandler.HandleFunc("GET /api/v0/t", s.handleListTimelines)
	securedHandler.HandleFunc("POST /api/v0/t", s.handleCreateTimeline)
	securedHandler.HandleFunc("GET /api/v0/t/{timeline_id}", s.handleGetTimeline)
	securedHandler.HandleFunc("PUT /api/v0/t/{timeline_id}", s.handleUpdateTimeline)
	securedHandler.HandleFunc("DELETE /api/v0/t/{timeline_id}", s.handleDeleteTimeline)

	// Data endpoints
	securedHandler.HandleFunc("PUT /api/v0/t/{timeline_id}/data", s.handleReplaceData)
	securedHandler.HandleFunc("POST /api/v0/t/{timeline_id}/data", s.handleUpsertPoint)
	securedHandler.HandleFunc("DELETE /api/v0/t/{timeline_id}/data", s.handleClearData)
	securedHandler.HandleFunc("DELETE /api/v0/t/{timeline_id}/data/{date}", s.handleDeletePoint)

	// View endpoints
	securedHandler.HandleFunc("GET /api/v0/t/{timeline_id}/grid", s.handleGetGrid)
	securedHandler.HandleFunc("POST /api/v0/t/{timeline_id}/select", s.handleSelect)
	securedHandler.HandleFunc("GET /api/v0/t/{timeline_id}/tooltip", s.handleGetTooltip)
	securedHandler.HandleFunc("POST /api/v0/t/{timeline_id}/share", s.handleShare)

	// 認証ミドルウェアを適用し、メインルータにマウント
	s.router.Handle("/api/", s.authMiddleware(securedHandler))

	// Graph endpoints - support both with and without .svg extension
	s.router.HandleFunc("GET /t/{timeline_id}/graph.svg", s.handleGetGraph)
	s.router.HandleFunc("GET /t/{timeline_id}/graph", s.handleGetGraph)
}

// ServeHTTP はServer構造体をhttp.Handlerとして実装します。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// now は設定されたタイムゾーンでの現在時刻を返します。
func (s *Server) now() time.Time {
	t := s.clock()
	if s.config.Location != nil {
		t = t.In(s.config.Location)
	}
	return t
}

// location は取り込みや日付計算に使うタイムゾーンを返します。
func (s *Server) location() *time.Location {
	return s.now().Location()
}

// handleHealthCheck はヘルスチェックエンドポイントのハンドラーです。
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// buildTimeline は保存されたポイントから1リクエスト用のTimelineを組み立てます。
// patch はタイムラインの表示設定に重ねて適用されます。
func (s *Server) buildTimeline(ctx context.Context, tl *model.Timeline, patch timeline.Patch) (*timeline.Timeline, error) {
	points, err := s.store.ListPoints(ctx, tl.ID, "", "")
	if err != nil {
		return nil, err
	}

	data := make([]heatmap.Data, len(points))
	for i, p := range points {
		data[i] = p.Data()
	}

	core := timeline.New(timeline.Configure(tl.Settings, patch), timeline.WithClock(s.now))
	core.SetData(data)
	return core, nil
}

// parseTimelineID はパスパラメータからタイムラインIDを取り出します。
func parseTimelineID(r *http.Request) (uuid.UUID, error) {
	id, err := model.NewTimelineID(r.PathValue("timeline_id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid timeline_id: %w", err)
	}
	return id.UUID(), nil
}

// ListTimelinesResponse はタイムライン一覧のレスポンスです。
type ListTimelinesResponse struct {
	Items  []*model.Timeline `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// handleListTimelines はタイムライン一覧をハンドリングします。
func (s *Server) handleListTimelines(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pagination, err := model.NewPagination(query.Get("limit"), query.Get("offset"))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	timelines, err := s.store.ListTimelines(r.Context(), pagination.Limit(), pagination.Offset())
	if err != nil {
		writeStoreError(w, "listing timelines", err)
		return
	}

	response := ListTimelinesResponse{
		Items:  timelines,
		Limit:  pagination.Limit(),
		Offset: pagination.Offset(),
	}
	if response.Items == nil {
		response.Items = []*model.Timeline{}
	}
	writeJSON(w, response, http.StatusOK)
}

// CreateTimelineParams represents parameters for creating a timeline.
type CreateTimelineParams struct {
	Name        *model.TimelineName
	Description string
	Settings    timeline.Patch
}

// NewCreateTimelineParams creates parameters for timeline creation from HTTP request.
func NewCreateTimelineParams(r *http.Request) (*CreateTimelineParams, error) {
	var requestBody struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Settings    *timeline.Patch `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	name, err := model.NewTimelineName(requestBody.Name)
	if err != nil {
		return nil, err
	}

	params := &CreateTimelineParams{
		Name:        name,
		Description: requestBody.Description,
	}
	if requestBody.Settings != nil {
		params.Settings = *requestBody.Settings
	}
	return params, nil
}

// handleCreateTimeline はタイムライン作成をハンドリングします。
func (s *Server) handleCreateTimeline(w http.ResponseWriter, r *http.Request) {
	params, err := NewCreateTimelineParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// サーバーのデフォルト表示設定にリクエストの設定を重ねる
	settings := timeline.Configure(s.config.Defaults, params.Settings)

	tl, err := model.NewTimeline(params.Name.String(), params.Description, settings)
	if err != nil {
		writeJSONError(w, fmt.Sprintf("Invalid timeline data: %v", err), http.StatusBadRequest)
		return
	}

	if err := s.store.CreateTimeline(r.Context(), tl); err != nil {
		writeStoreError(w, "creating timeline", err)
		return
	}

	writeJSON(w, tl, http.StatusCreated)
}

// handleGetTimeline はタイムライン取得をハンドリングします。
func (s *Server) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := parseTimelineID(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tl, err := s.store.GetTimeline(r.Context(), id)
	if err != nil {
		writeStoreError(w, "retrieving timeline", err)
		return
	}

	writeJSON(w, tl, http.StatusOK)
}

// handleUpdateTimeline はタイムライン更新をハンドリングします。
func (s *Server) handleUpdateTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := parseTimelineID(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := s.store.GetTimeline(r.Context(), id)
	if err != nil {
		writeStoreError(w, "retrieving timeline", err)
		return
	}

	// JSONのパース（部分更新をサポートするためポインタ型を使用）
	var updateData struct {
		Name        *string         `json:"name"`
		Description *string         `json:"description"`
		Settings    *timeline.Patch `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		writeJSONError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if updateData.Name != nil {
		name, err := model.NewTimelineName(*updateData.Name)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		existing.Name = name.String()
	}
	if updateData.Description != nil {
		existing.Description = *updateData.Description
	}
	if updateData.Settings != nil {
		existing.Settings = timeline.Configure(existing.Settings, *updateData.Settings)
	}
	existing.UpdatedAt = s.now()

	if err := s.store.UpdateTimeline(r.Context(), existing); err != nil {
		writeStoreError(w, "updating timeline", err)
		return
	}

	writeJSON(w, existing, http.StatusOK)
}

// handleDeleteTimeline はタイムライン削除をハンドリングします。
func (s *Server) handleDeleteTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := parseTimelineID(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 既に存在しない場合もエラーにしない（べき等性）
	err = s.store.DeleteTimeline(r.Context(), id)
	if err != nil && !errors.Is(err, model.ErrTimelineNotFound) {
		writeStoreError(w, "deleting timeline", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReplaceDataResponse はデータ置き換えのレスポンスです。
type ReplaceDataResponse struct {
	Accepted int           `json:"accepted"`
	Skipped  []ingest.Skip `json:"skipped"`
	Max      float64       `json:"max"`
}

// handleReplaceData はタイムラインのポイントをすべて置き換えます。
// ボディの形式はContent-Typeで判定します（JSON / YAML / iCalendar）。
func (s *Server) handleReplaceData(w http.ResponseWriter, r *http.Request) {
	id, err := parseTimelineID(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	format, err := ingest.FormatOfContentType(r.Header.Get("Content-Type"))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}

	data, report, err := ingest.Parse(http.MaxBytesReader(w, r.Body, maxBodySize), format, s.location())
	if err != nil {
		writeJSONError(w, fmt.Sprintf("Invalid %s document: %v", format, err), http.StatusBadRequest)
		return
	}

	if err := s.store.ReplacePoints(r.Context(), id, model.PointsFromData(data)); err != nil {
		writeStoreError(w, "replacing points", err)
		return
	}

	// 置き換え後の最大値をレスポンスに含める
	values := heatmap.NewStore()
	values.ReplaceAll(data)

	response := ReplaceDataResponse{
		Accepted: report.Accepted,
		Skipped:  report.Skipped,
		Max:      values.Max(),
	}
	if response.Skipped == nil {
		response.Skipped = []ingest.Skip{}
	}
	writeJSON(w, response, http.StatusOK)
}

// UpsertPointParams represents parameters for upserting a single point.
type UpsertPointParams struct {
	TimelineID uuid.UUID
	Point      *model.Point
}

// NewUpsertPointParams creates parameters for a single point update from HTTP request.
func NewUpsertPointParams(r *http.Request) (*UpsertPointParams, error) {
	id, err := parseTimelineID(r)
	if err != nil {
		return nil, err
	}

	var requestBody struct {
		Date  string   `json:"date"`
		Value *float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	if requestBody.Date == "" {
		return nil, fmt.Errorf("date is required")
	}
	date, err := calendar.ParseKey(requestBody.Date)
	if err != nil {
		return nil, err
	}

	value, err := model.NewPointValue(requestBody.Value)
	if err != nil {
		return nil, err
	}

	point, err := model.NewPoint(date, value.Float())
	if err != nil {
		return nil, err
	}

	return &UpsertPointParams{TimelineID: id, Point: point}, nil
}

// handleUpsertPoint は1日分のポイントを追加または上書きします。
func (s *Server) handleUpsertPoint(w http.ResponseWriter, r *http.Request) {
	params, err := NewUpsertPointParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.UpsertPoint(r.Context(), params.TimelineID, *params.Point); err != nil {
		writeStoreError(w, "upserting point", err)
		return
	}

	writeJSON(w, params.Point, http.StatusOK)
}

// handleClearData はタイムラインのポイントをすべて削除します。
func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	id, err := parseTimelineID(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	n, err := s.store.ClearPoints(r.Context(), id)
	if err != nil {
		writeStoreError(w, "clearing points", err)
		return
	}

	writeJSON(w, map[string]int{"deleted": n}, http.StatusOK)
}

// handleDeletePoint は1日分のポイントを削除します。
func (s *Server) handleDeletePoint(w http.ResponseWriter, r *http.Request) {
	id, err := parseTimelineID(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, err := calendar.ParseKey(r.PathValue("date"))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.DeletePoint(r.Context(), id, date); err != nil {
		writeStoreError(w, "deleting point", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ViewParams represents parameters shared by the grid and graph endpoints.
type ViewParams struct {
	TimelineID uuid.UUID
	Patch      timeline.Patch
}

// NewViewParams creates view parameters from the path and query overrides.
func NewViewParams(r *http.Request) (*ViewParams, error) {
	id, err := parseTimelineID(r)
	if err != nil {
		return nil, err
	}

	query := r.URL.Query()

	dateRange, err := model.NewDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		return nil, err
	}

	overrides, err := model.NewDisplayOverrides(query.Get("orientation"), query.Get("scheme"), query.Get("week_start"))
	if err != nil {
		return nil, err
	}

	params := &ViewParams{TimelineID: id}
	dateRange.Apply(&params.Patch)
	overrides.Apply(&params.Patch)
	return params, nil
}

// loadView はタイムラインを取得し、クエリの上書きを適用したTimelineを返します。
func (s *Server) loadView(w http.ResponseWriter, r *http.Request) (*model.Timeline, *timeline.Timeline, bool) {
	params, err := NewViewParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}

	tl, err := s.store.GetTimeline(r.Context(), params.TimelineID)
	if err != nil {
		writeStoreError(w, "retrieving timeline", err)
		return nil, nil, false
	}

	core, err := s.buildTimeline(r.Context(), tl, params.Patch)
	if err != nil {
		writeStoreError(w, "retrieving points", err)
		return nil, nil, false
	}

	return tl, core, true
}

// handleGetGrid は派生ビュー（週・月ラベル・色）をJSONで返します。
func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	_, core, ok := s.loadView(w, r)
	if !ok {
		return
	}

	writeJSON(w, core.View(), http.StatusOK)
}

// handleSelect は指定日のセルを選択し、選択イベントを返します。
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	_, core, ok := s.loadView(w, r)
	if !ok {
		return
	}

	var requestBody struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		writeJSONError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	date, err := calendar.ParseKey(requestBody.Date)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	core.OnDaySelected(func(ev timeline.SelectionEvent) {
		log.Printf("Day selected: timeline=%s date=%s value=%g", r.PathValue("timeline_id"), ev.Date, ev.Value)
	})

	ev, ok := core.Select(date)
	if !ok {
		writeJSONError(w, fmt.Sprintf("Date %s is not in the displayed range", date), http.StatusNotFound)
		return
	}

	writeJSON(w, ev, http.StatusOK)
}

// TooltipResponse はツールチップのレスポンスです。
type TooltipResponse struct {
	Date    calendar.DateKey `json:"date"`
	Value   float64          `json:"value"`
	Tooltip string           `json:"tooltip"`
}

// handleGetTooltip は指定日のツールチップを返します。
func (s *Server) handleGetTooltip(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeJSONError(w, "date parameter is required", http.StatusBadRequest)
		return
	}
	date, err := calendar.ParseKey(dateStr)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, core, ok := s.loadView(w, r)
	if !ok {
		return
	}

	text, value, ok := core.View().Tooltip(date)
	if !ok {
		writeJSONError(w, fmt.Sprintf("Date %s is not in the displayed range", date), http.StatusNotFound)
		return
	}

	writeJSON(w, TooltipResponse{Date: date, Value: value, Tooltip: text}, http.StatusOK)
}

// handleGetGraph は指定タイムラインのヒートマップグラフを生成・返却するハンドラーです。
// 共有トークンまたはAPIキーが必要です。
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	id, err := parseTimelineID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.authorizeGraph(r, id) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params, err := NewViewParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tl, err := s.store.GetTimeline(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrTimelineNotFound) {
			http.Error(w, "Timeline not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting timeline: %v", err)
		http.Error(w, "Failed to retrieve timeline", http.StatusInternalServerError)
		return
	}

	// アクセスカウンター機能: trackパラメータがある場合、今日の値を1増やす
	// 加算はストア側で行い、その後に読み込んだポイントでグラフを描画する
	if r.URL.Query().Has("track") {
		if err := s.store.IncrementPoint(r.Context(), id, calendar.KeyOf(s.now())); err != nil {
			// エラーが発生してもグラフ表示は続行
			log.Printf("Error incrementing access counter: %v", err)
		}
	}

	core, err := s.buildTimeline(r.Context(), tl, params.Patch)
	if err != nil {
		log.Printf("Error retrieving points: %v", err)
		http.Error(w, "Failed to retrieve points", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := io.WriteString(w, core.View().SVG(tl.Name)); err != nil {
		log.Printf("Error writing SVG: %v", err)
	}
}

// Run はサーバーを指定されたアドレスで起動します。
func (s *Server) Run(addr string) error {
	log.Printf("Server starting on %s", addr)
	return http.ListenAndServe(addr, s)
}
