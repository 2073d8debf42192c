package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/api/response"
)

// Pinger 例如 *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

// db 為 nil 時只回報服務存活
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			writeError(w, r, err)
			return
		}
	}
	response.SuccessJSON(w, http.StatusOK, "ok", map[string]string{"status": "up"})
}
