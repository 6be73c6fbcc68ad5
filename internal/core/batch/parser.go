package batch

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Delimiter は取り込みテキストの項目区切り文字です。
const Delimiter = "|"

// Row は取り込み対象の 1 行です。Line は利用者に示す行番号です。
// Err が設定されている行はストアに触れずに失敗として集計されます。
type Row[T any] struct {
	Line int
	Data T
	Err  error
}

// Assigner はヘッダ名に対応する項目へ値を設定します。
// 未知のヘッダは無視し、値を解釈できない場合だけエラーを返します。
type Assigner[T any] func(dst *T, header, value string) error

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ParseDelimited はパイプ区切りテキストを行に分解します。
// ヘッダを 1 行目として数えるため、最初のデータ行は 2 行目になります。
func ParseDelimited[T any](body string, assign Assigner[T]) ([]Row[T], error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyPayload
	}

	var records [][]string
	for _, line := range strings.Split(lineBreaks.Replace(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		records = append(records, strings.Split(line, Delimiter))
	}

	return parseRecords(records, assign)
}

// ParseTable は分割済みの表を行に分解します。すべてのセルが空の行は読み飛ばします。
// スプレッドシートは末尾の空セルを返さないため、ヘッダより短い行は空セルで補います。
func ParseTable[T any](records [][]string, assign Assigner[T]) ([]Row[T], error) {
	lines := make([][]string, 0, len(records))
	for _, record := range records {
		if isBlankRecord(record) {
			continue
		}
		if len(lines) > 0 && len(record) < len(lines[0]) {
			padded := make([]string, len(lines[0]))
			copy(padded, record)
			record = padded
		}
		lines = append(lines, record)
	}
	return parseRecords(lines, assign)
}

func parseRecords[T any](lines [][]string, assign Assigner[T]) ([]Row[T], error) {
	if len(lines) < 2 {
		return nil, ErrMalformedPayload
	}

	headers := make([]string, len(lines[0]))
	for i, name := range lines[0] {
		headers[i] = strings.TrimSpace(name)
		if headers[i] == "" {
			return nil, ErrMalformedPayload
		}
	}

	rows := make([]Row[T], 0, len(lines)-1)
	for index := 1; index < len(lines); index++ {
		values := lines[index]
		if len(values) != len(headers) {
			return nil, ErrMalformedPayload
		}

		row := Row[T]{Line: index + 1}
		for i, header := range headers {
			value := strings.TrimSpace(values[i])
			if value == "" {
				continue
			}
			if err := assign(&row.Data, header, value); err != nil && row.Err == nil {
				row.Err = err
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// FromList は構造化済みの要素を 1 始まりの番号で行に変換します。
func FromList[T any](items []T) []Row[T] {
	rows := make([]Row[T], len(items))
	for i, item := range items {
		rows[i] = Row[T]{Line: i + 1, Data: item}
	}
	return rows
}

// DecodeList は JSON 配列の各要素を decode で変換し、1 始まりの番号で行にします。
// 本文が配列でなければ invalid を返します。要素の変換失敗はその行のエラーになります。
func DecodeList[T any](body []byte, invalid error, decode func(json.RawMessage) (T, error)) ([]Row[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, invalid
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, invalid
	}

	rows := make([]Row[T], len(elements))
	for i, element := range elements {
		data, err := decode(element)
		rows[i] = Row[T]{Line: i + 1, Data: data, Err: err}
	}
	return rows, nil
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
