package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

const ClaimsKey contextKey = "auth_claims"

const accessTokenCookie = "accessToken"

func ClaimsFromContext(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(ClaimsKey).(*jwt.Claims)
	return claims
}

// ExtractToken looks for the bearer credential in the Authorization
// header, then the accessToken cookie, then (fallback) an accessToken
// field in a JSON body. The body is restored for the handler.
func ExtractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
		return auth
	}

	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if r.Body == nil || r.ContentLength == 0 {
		return ""
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.AccessToken
}

// RequireRoles authenticates the request and rejects callers whose role is
// not in the allowed set. Claims land in the request context.
func RequireRoles(jwtService *jwt.Service, log *logger.Logger, roles ...model.Role) func(httprouter.Handle) httprouter.Handle {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			token := ExtractToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				log.Warn("Invalid access token", "error", err, "path", r.URL.Path)
				writeAuthError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if len(allowed) > 0 {
				if _, ok := allowed[model.Role(claims.Role)]; !ok {
					writeAuthError(w, http.StatusForbidden, "You are not permitted to perform this action")
					return
				}
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
