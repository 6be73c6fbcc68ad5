package batch

import (
	"github.com/ogurasousui/orbite-rh-api/internal/core/apperr"
)

// 取り込み処理で利用者へ返すエラーです。
var (
	ErrEmptyPayload     = apperr.New(apperr.KindEmptyPayload, "CSV vazio")
	ErrMalformedPayload = apperr.New(apperr.KindMalformedPayload, "CSV inválido")
	ErrMissingKey       = apperr.New(apperr.KindMissingKey, "Matrícula não informada")
)

// RowFailedMessage は業務エラー以外で行が失敗したときのメッセージです。
const RowFailedMessage = "Erro ao processar linha"

// InvalidDateError は日付項目の値を解釈できなかったことを表す行エラーを返します。
func InvalidDateError(header string) error {
	return apperr.New(apperr.KindValidation, "Data inválida em "+header)
}

// rowMessage は行エラーの表示用メッセージを決定します。内部エラーの詳細は含めません。
func rowMessage(err error) string {
	if appErr, ok := apperr.As(err); ok {
		return appErr.Message
	}
	return RowFailedMessage
}
