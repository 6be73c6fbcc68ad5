package handler

import (
	"errors"
	"net/http"

	"github.com/ogurasousui/orbite-rh-api/internal/core/apperr"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/logging"
)

const internalErrorMessage = "Erro interno ao processar a requisição"

var (
	errInvalidRecord = apperr.New(apperr.KindValidation, "Registro inválido")
	errBodyTooLarge  = apperr.New(apperr.KindValidation, "Payload muito grande")
	errMissingAPIKey = apperr.New(apperr.KindUnauthorized, "X-API-KEY não informado")
	errInvalidAPIKey = apperr.New(apperr.KindUnauthorized, "X-API-KEY inválido")
)

// errorMapper は業務エラーの分類を HTTP ステータスへ変換します。
type errorMapper struct {
	notFoundStatus int
}

func newErrorMapper(notFoundStatus int) errorMapper {
	if notFoundStatus == 0 {
		notFoundStatus = http.StatusNotFound
	}
	return errorMapper{notFoundStatus: notFoundStatus}
}

func (m errorMapper) status(err error) int {
	if errors.Is(err, errBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation,
		apperr.KindEmptyPayload,
		apperr.KindMalformedPayload,
		apperr.KindInvalidList,
		apperr.KindMissingKey:
		return http.StatusBadRequest
	case apperr.KindDuplicateKey:
		return http.StatusConflict
	case apperr.KindNotFound:
		return m.notFoundStatus
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// write は err を応答に書き込みます。業務エラー以外は原因をログに残し、汎用メッセージだけを返します。
func (m errorMapper) write(w http.ResponseWriter, r *http.Request, err error) {
	status := m.status(err)
	appErr, ok := apperr.As(err)
	if !ok || status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).WithError(err).Error("request failed")
		writeMessage(w, r, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	writeMessage(w, r, status, appErr.Message)
}
