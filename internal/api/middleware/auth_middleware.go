package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/bookstore/internal/api/response"
	"github.com/RoyceAzure/lab/bookstore/internal/constants"
	"github.com/RoyceAzure/lab/bookstore/internal/util"
)

// 驗證ctx是否有token payload
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if util.GetTokenPayloadFromContext(r.Context()) == nil {
			response.ErrorJSON(w, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole 需放在 AuthMiddleware 之後
func RequireRole(roles ...constants.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := util.GetTokenPayloadFromContext(r.Context())
			if payload == nil {
				response.ErrorJSON(w, http.StatusUnauthorized, "Unauthenticated")
				return
			}
			for _, role := range roles {
				if payload.Role == string(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.ErrorJSON(w, http.StatusForbidden, "Forbidden")
		})
	}
}
