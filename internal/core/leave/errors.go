package leave

import "github.com/ogurasousui/orbite-rh-api/internal/core/apperr"

var (
	ErrInvalidPayload = apperr.New(apperr.KindValidation, "Payload inválido")
	ErrInvalidList    = apperr.New(apperr.KindInvalidList, "Lista de afastamentos inválida")
	ErrLeaveNotFound  = apperr.New(apperr.KindNotFound, "Afastamento não encontrado")
)
