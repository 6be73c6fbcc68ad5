package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ogurasousui/orbite-rh-api/internal/platform/logging"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromContext(r.Context()).WithError(err).Warn("failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Message: message})
}

// decodeBody は JSON 本文を dst に読み込み、validate タグを検証します。
// どちらかに失敗した場合は invalid を返します。
func decodeBody(r *http.Request, dst any, invalid error) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if isBodyTooLarge(err) {
			return errBodyTooLarge
		}
		return invalid
	}
	if err := validate.Struct(dst); err != nil {
		return invalid
	}
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if isBodyTooLarge(err) {
			return nil, errBodyTooLarge
		}
		return nil, err
	}
	return body, nil
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
