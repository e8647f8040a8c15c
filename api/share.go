package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 共有トークンの発行者
const shareIssuer = "weekwide"

// ErrSharingDisabled は共有用の署名鍵が設定されていない場合のエラーです。
var ErrSharingDisabled = errors.New("sharing is disabled")

// ShareResponse は共有トークン発行のレスポンスです。
type ShareResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	URL       string    `json:"url"`
}

// issueShareToken はタイムラインのグラフを閲覧するための署名付きトークンを発行します。
func (s *Server) issueShareToken(id uuid.UUID) (string, time.Time, error) {
	if s.config.ShareSecret == "" {
		return "", time.Time{}, ErrSharingDisabled
	}

	now := s.now()
	expiresAt := now.Add(s.config.ShareTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    shareIssuer,
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.ShareSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign share token: %w", err)
	}
	return token, expiresAt, nil
}

// verifyShareToken はトークンを検証し、対象のタイムラインIDを返します。
func (s *Server) verifyShareToken(raw string) (uuid.UUID, error) {
	if s.config.ShareSecret == "" {
		return uuid.Nil, ErrSharingDisabled
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.config.ShareSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(shareIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid share token: %w", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid share token subject: %w", err)
	}
	return id, nil
}

// authorizeGraph はグラフの閲覧権限を確認します。
// 対象タイムラインの共有トークンか、有効なAPIキーのどちらかが必要です。
func (s *Server) authorizeGraph(r *http.Request, id uuid.UUID) bool {
	if token := r.URL.Query().Get("token"); token != "" {
		shared, err := s.verifyShareToken(token)
		if err != nil {
			log.Printf("Rejected share token: %v", err)
			return false
		}
		return shared == id
	}
	return s.validAPIKey(r.Header.Get("X-API-Key"))
}

// handleShare は共有トークンを発行します。
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	id, err := parseTimelineID(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if s.config.ShareSecret == "" {
		writeJSONError(w, "Sharing is not configured on server", http.StatusNotImplemented)
		return
	}

	// タイムラインの存在確認
	if _, err := s.store.GetTimeline(r.Context(), id); err != nil {
		writeStoreError(w, "retrieving timeline", err)
		return
	}

	token, expiresAt, err := s.issueShareToken(id)
	if err != nil {
		log.Printf("Error issuing share token: %v", err)
		writeJSONError(w, "Failed to issue share token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, ShareResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		URL:       fmt.Sprintf("/t/%s/graph.svg?token=%s", id, token),
	}, http.StatusCreated)
}
