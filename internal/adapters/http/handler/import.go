package handler

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/ogurasousui/orbite-rh-api/internal/adapters/spreadsheet"
	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/logging"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/metrics"
)

// 取り込みの入力形式です。メトリクスのラベルにも使います。
const (
	sourceText = "csv"
	sourceJSON = "json"
	sourceXLSX = "xlsx"
)

// workbookFormField は multipart で送られたワークブックのフィールド名です。
const workbookFormField = "file"

type importResponder struct {
	entity  string
	metrics *metrics.Metrics
	errs    errorMapper
}

func (i importResponder) respond(w http.ResponseWriter, r *http.Request, source string, result *batch.Result, err error) {
	if err != nil {
		i.errs.write(w, r, err)
		return
	}

	if i.metrics != nil {
		i.metrics.ObserveImport(i.entity, source, result)
	}
	logging.FromContext(r.Context()).WithField("entity", i.entity).
		WithField("source", source).
		WithField("total", result.Total).
		WithField("failed", result.Failed).
		Info("import finished")

	writeJSON(w, r, http.StatusCreated, toImportResponse(result))
}

// readWorkbook は multipart の file フィールド、または本文そのものからワークブックを読みます。
func readWorkbook(r *http.Request) ([][]string, error) {
	var src io.Reader = r.Body

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		file, _, err := r.FormFile(workbookFormField)
		if err != nil {
			if isBodyTooLarge(err) {
				return nil, errBodyTooLarge
			}
			return nil, spreadsheet.ErrInvalidWorkbook
		}
		defer file.Close()
		src = file
	}

	body, err := io.ReadAll(src)
	if err != nil {
		if isBodyTooLarge(err) {
			return nil, errBodyTooLarge
		}
		return nil, err
	}
	if len(body) == 0 {
		return nil, batch.ErrEmptyPayload
	}
	return spreadsheet.ReadFirstSheet(bytes.NewReader(body))
}
