package spreadsheet

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ogurasousui/orbite-rh-api/internal/core/apperr"
)

// ErrInvalidWorkbook はワークブックを読み取れなかったことを表します。
var ErrInvalidWorkbook = apperr.New(apperr.KindMalformedPayload, "Planilha inválida")

// ReadFirstSheet はワークブックの最初のシートを行と列の表として返します。
// セルは表示形式を適用した文字列で、末尾の空セルは含まれません。
func ReadFirstSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrInvalidWorkbook
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrInvalidWorkbook
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrInvalidWorkbook
	}
	return rows, nil
}
