package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/RoyceAzure/lab/bookstore/internal/api/response"
	"github.com/RoyceAzure/lab/bookstore/internal/service"
	"github.com/RoyceAzure/lab/bookstore/internal/util"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const internalErrorMessage = "Internal server error"

var errMalformedID = errors.New("malformed id")

var validate = newValidator()

// 錯誤訊息使用json欄位名稱
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate 失敗時已寫入回應，呼叫端直接 return
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.ErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		response.ErrorJSON(w, http.StatusUnprocessableEntity, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Validation failed"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	return "Validation failed: " + strings.Join(msgs, "; ")
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, errMalformedID
	}
	return uint(id), nil
}

// writeError 統一把 service 錯誤轉成 http status，5xx 不回傳內部錯誤內容
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusOf(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("url", r.URL.String()).Msg("request failed")
	}
	response.ErrorJSON(w, status, message)
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, errMalformedID):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest, "Your cart is empty"
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict, "Not enough stock available"
	case errors.Is(err, service.ErrBookNotFound):
		return http.StatusNotFound, "Book not found"
	case errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, service.ErrCartLineNotFound):
		return http.StatusNotFound, "Cart item not found"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "The email has already been taken"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthenticated"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// currentUserID 路由已經過 AuthMiddleware，這裡仍保守檢查
func currentUserID(r *http.Request) (uint, error) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil {
		return 0, service.ErrUnauthenticated
	}
	return payload.UserID, nil
}
