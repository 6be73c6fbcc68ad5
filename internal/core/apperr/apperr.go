package apperr

import "errors"

// Kind は業務エラーの分類です。アダプタ層はこの分類から応答ステータスを決定します。
type Kind int

const (
	// KindUnexpected は業務エラーとして分類できない障害です。
	KindUnexpected Kind = iota
	KindValidation
	KindEmptyPayload
	KindMalformedPayload
	KindInvalidList
	KindDuplicateKey
	KindNotFound
	KindMissingKey
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindEmptyPayload:
		return "empty_payload"
	case KindMalformedPayload:
		return "malformed_payload"
	case KindInvalidList:
		return "invalid_list"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindNotFound:
		return "not_found"
	case KindMissingKey:
		return "missing_key"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unexpected"
	}
}

// Error は利用者へそのまま提示できるメッセージを持つ業務エラーです。
type Error struct {
	Kind    Kind
	Message string
}

// New は Error を生成します。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// As は err の連鎖から業務エラーを取り出します。
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf は err の分類を返します。業務エラーでなければ KindUnexpected です。
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindUnexpected
}
