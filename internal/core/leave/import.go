package leave

import (
	"context"
	"strings"
	"time"

	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
	"github.com/ogurasousui/orbite-rh-api/internal/core/dates"
	"github.com/ogurasousui/orbite-rh-api/internal/core/patch"
)

// ImportRow は取り込み 1 行分の部分的な afastamento データです。nil は未指定を表します。
type ImportRow struct {
	Registration  *string
	Description   *string
	StartAt       *time.Time
	EndAt         *time.Time
	UnitCNPJ      *string
	SituationCode *string
}

// 取り込みテキストのヘッダ名です。
const (
	HeaderRegistration  = "matricula"
	HeaderDescription   = "descricao"
	HeaderStartAt       = "data_inicio"
	HeaderEndAt         = "data_final"
	HeaderUnitCNPJ      = "cnpj_unidade"
	HeaderSituationCode = "codigo_situacao"
)

// AssignImportField はヘッダ名に対応する項目へ値を設定します。未知のヘッダは無視します。
func AssignImportField(dst *ImportRow, header, value string) error {
	switch header {
	case HeaderRegistration:
		dst.Registration = &value
	case HeaderDescription:
		dst.Description = &value
	case HeaderStartAt:
		t, err := dates.ParseDateTime(value)
		if err != nil {
			return batch.InvalidDateError(header)
		}
		dst.StartAt = &t
	case HeaderEndAt:
		t, err := dates.ParseDateTime(value)
		if err != nil {
			return batch.InvalidDateError(header)
		}
		dst.EndAt = &t
	case HeaderUnitCNPJ:
		dst.UnitCNPJ = &value
	case HeaderSituationCode:
		dst.SituationCode = &value
	}
	return nil
}

// ImportLeaves は行を入力順に取り込みます。
// matrícula に一致する afastamento があれば id が最小のものを更新し、なければ作成します。
func (s *Service) ImportLeaves(ctx context.Context, rows []batch.Row[ImportRow]) (*batch.Result, error) {
	engine := batch.NewEngine[ImportRow, Record](&importReconciler{repo: s.repo, clock: s.clock}, s.tx, s.observer)
	return engine.Run(ctx, rows)
}

// ImportLeavesText はパイプ区切りテキストを解析して取り込みます。
func (s *Service) ImportLeavesText(ctx context.Context, body string) (*batch.Result, error) {
	rows, err := batch.ParseDelimited(body, AssignImportField)
	if err != nil {
		return nil, err
	}
	return s.ImportLeaves(ctx, rows)
}

// ImportLeavesTable はスプレッドシートから読み出した表を取り込みます。
func (s *Service) ImportLeavesTable(ctx context.Context, records [][]string) (*batch.Result, error) {
	rows, err := batch.ParseTable(records, AssignImportField)
	if err != nil {
		return nil, err
	}
	return s.ImportLeaves(ctx, rows)
}

type importReconciler struct {
	repo  Repository
	clock Clock
}

func (r *importReconciler) ResolveKey(row ImportRow) string {
	return patch.StringOrEmpty(row.Registration)
}

// Lookup は最初の一致だけを更新対象にします。残りの afastamento は変更しません。
func (r *importReconciler) Lookup(ctx context.Context, key string) (*Record, error) {
	matches, err := r.repo.ListByRegistration(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *importReconciler) Patch(existing *Record, row ImportRow) {
	applyImportPatch(existing, row)
	existing.UpdatedAt = r.clock.Now()
}

func (r *importReconciler) Create(ctx context.Context, row ImportRow) error {
	_, err := r.repo.Create(ctx, newFromImport(row, r.clock.Now()))
	return err
}

func (r *importReconciler) Update(ctx context.Context, existing *Record) error {
	_, err := r.repo.Update(ctx, existing)
	return err
}

// applyImportPatch は空白でない値だけを反映します。data_inicio は未指定でも常に上書きします。
func applyImportPatch(r *Record, row ImportRow) {
	if v := patch.NonBlank(row.Registration); v != nil {
		r.Registration = strings.TrimSpace(*v)
	}
	patch.AssignNonBlank(&r.Description, row.Description)
	r.StartAt = startAtOrZero(row.StartAt)
	if row.EndAt != nil {
		r.EndAt = utcPtr(row.EndAt)
	}
	patch.AssignNonBlankNullable(&r.UnitCNPJ, row.UnitCNPJ)
	patch.AssignNonBlankNullable(&r.SituationCode, row.SituationCode)
}

func newFromImport(row ImportRow, now time.Time) *Record {
	return &Record{
		Registration:  strings.TrimSpace(patch.StringOrEmpty(row.Registration)),
		Description:   patch.StringOrEmpty(row.Description),
		StartAt:       startAtOrZero(row.StartAt),
		EndAt:         utcPtr(row.EndAt),
		UnitCNPJ:      cloneString(row.UnitCNPJ),
		SituationCode: cloneString(row.SituationCode),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func startAtOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
