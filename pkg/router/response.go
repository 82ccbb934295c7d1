package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/xcontext"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func writeData(ctx context.Context, w http.ResponseWriter, data any) {
	if err := WriteJson(w, http.StatusOK, response{Code: 0, Data: data}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	resp := response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}

	errx := errorx.Error{}
	if errors.As(err, &errx) {
		resp = response{Code: int64(errx.Code), Error: errx.Message}
	}

	if err := WriteJson(w, statusOf(errx.Code), resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func statusOf(code errorx.Code) int {
	switch code {
	case errorx.BadRequest:
		return http.StatusBadRequest
	case errorx.Unauthenticated, errorx.TokenExpired:
		return http.StatusUnauthorized
	case errorx.PermissionDenied:
		return http.StatusForbidden
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.Conflict, errorx.AlreadyExists:
		return http.StatusConflict
	case errorx.TooManyRequests:
		return http.StatusTooManyRequests
	case errorx.Unavailable:
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

func WriteJson(w http.ResponseWriter, status int, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}
