package employee

import "github.com/ogurasousui/orbite-rh-api/internal/core/apperr"

var (
	ErrInvalidPayload            = apperr.New(apperr.KindValidation, "Payload inválido")
	ErrInvalidList               = apperr.New(apperr.KindInvalidList, "Lista de colaboradores inválida")
	ErrEmployeeNotFound          = apperr.New(apperr.KindNotFound, "Colaborador não encontrado")
	ErrRegistrationAlreadyExists = apperr.New(apperr.KindDuplicateKey, "Colaborador já cadastrado com essa matrícula")
)
