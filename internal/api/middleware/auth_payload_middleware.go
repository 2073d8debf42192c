package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/bookstore/internal/constants"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/auth/token"
	"github.com/RoyceAzure/lab/bookstore/internal/util"
)

// Authenticator 驗證token並確認session仍有效
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*token.Payload, error)
}

// 驗證token 但若token有任何錯誤都不會中斷，這裡僅做解析token payload，若payload有錯誤則不會設置context
func AuthPayloadMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, ok := checkAuthPayload(auth, r)
			if ok {
				next.ServeHTTP(w, r.WithContext(util.WithTokenPayload(r.Context(), payload)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkAuthPayload(auth Authenticator, r *http.Request) (*token.Payload, bool) {
	authorizationHeader := r.Header.Get(string(constants.AuthorizationHeaderKey))
	if len(authorizationHeader) == 0 {
		return nil, false
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) != 2 {
		return nil, false
	}

	if strings.ToLower(fields[0]) != string(constants.AuthorizationTypeBearer) {
		return nil, false
	}

	payload, err := auth.Authenticate(r.Context(), fields[1])
	if err != nil {
		return nil, false
	}
	return payload, true
}
