package middleware

import (
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/bookstore/internal/api/response"
	"github.com/RoyceAzure/lab/bookstore/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/bookstore/internal/util"
)

type KeyFunc func(r *http.Request) string

// KeyByUserOrIP 已登入用 user id，否則用 RemoteAddr (需搭配 RealIP)
func KeyByUserOrIP(r *http.Request) string {
	if payload := util.GetTokenPayloadFromContext(r.Context()); payload != nil {
		return "user:" + strconv.FormatUint(uint64(payload.UserID), 10)
	}
	return "ip:" + r.RemoteAddr
}

func RateLimitMiddleware(limiter ratelimit.Limiter, keyFn KeyFunc) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = KeyByUserOrIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(keyFn(r)) {
				response.ErrorJSON(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
