package api

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// authMiddleware はAPIリクエストの認証を行うミドルウェアです。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// APIキーがサーバー側で設定されていない場合はエラー
		if s.config.APIKey == "" && s.config.APIKeyHash == "" {
			writeJSONError(w, "API authentication is not configured on server", http.StatusInternalServerError)
			return
		}

		// APIキーが一致するか確認
		if !s.validAPIKey(r.Header.Get("X-API-Key")) {
			writeJSONError(w, "Unauthorized: Invalid API key", http.StatusUnauthorized)
			return
		}

		// 認証成功：次のハンドラーを呼び出し
		next.ServeHTTP(w, r)
	})
}

// validAPIKey はAPIキーを検証します。
// ハッシュが設定されている場合はbcryptで照合し、平文キーより優先します。
func (s *Server) validAPIKey(key string) bool {
	if key == "" {
		return false
	}
	if s.config.APIKeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.config.APIKeyHash), []byte(key)) == nil
	}
	if s.config.APIKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.config.APIKey)) == 1
}
