package patch

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Field は部分更新の 1 項目です。ペイロードにキーが存在したか (Set)、
// 値が null だったか (Null) を区別して保持します。
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some は値が指定された Field を返します。
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null は null が指定された Field を返します。
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Present は非 null の値が指定されているかを返します。
func (f Field[T]) Present() bool {
	return f.Set && !f.Null
}

// UnmarshalJSON はキーの存在を記録します。encoding/json は null に対しても呼び出します。
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// Assign は更新ポリシーで必須項目へ反映します。未指定と null は無視します。
func Assign[T any](dst *T, f Field[T]) {
	if f.Present() {
		*dst = f.Value
	}
}

// AssignNullable は更新ポリシーで任意項目へ反映します。null は値を消去します。
func AssignNullable[T any](dst **T, f Field[T]) {
	if !f.Set {
		return
	}
	if f.Null {
		*dst = nil
		return
	}
	v := f.Value
	*dst = &v
}

// AssignNonBlank は取り込みポリシーで文字列を反映します。nil と空白のみは無視します。
func AssignNonBlank(dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = *v
	}
}

// AssignNonBlankNullable は AssignNonBlank の任意項目版です。
func AssignNonBlankNullable(dst **string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		s := *v
		*dst = &s
	}
}

// AssignIfPresent は取り込みポリシーで非文字列の値を反映します。
func AssignIfPresent[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// AssignIfPresentNullable は AssignIfPresent の任意項目版です。
func AssignIfPresentNullable[T any](dst **T, v *T) {
	if v != nil {
		c := *v
		*dst = &c
	}
}

// StringOrEmpty は新規作成時の既定値として空文字列を補います。
func StringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// NonBlank は空白のみの文字列を nil として扱います。
func NonBlank(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	s := *v
	return &s
}
