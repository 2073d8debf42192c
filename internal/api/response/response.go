package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Response 所有 API 回應共用的格式
type Response struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
}

func SuccessJSON(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{IsSuccess: true, Message: message, Data: data})
}

func ErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{IsSuccess: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}
