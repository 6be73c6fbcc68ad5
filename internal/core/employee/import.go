package employee

import (
	"context"
	"strings"
	"time"

	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
	"github.com/ogurasousui/orbite-rh-api/internal/core/dates"
	"github.com/ogurasousui/orbite-rh-api/internal/core/patch"
)

// ImportRow は取り込み 1 行分の部分的な従業員データです。nil は未指定を表します。
type ImportRow struct {
	Registration  *string
	Name          *string
	PIS           *string
	CPF           *string
	AdmissionDate *time.Time
	DismissalDate *time.Time
	Sector        *string
	JobTitle      *string
	Department    *string
	Unit          *string
	Allocation    *string
	Status        *string
	UnitCNPJ      *string
	CTPS          *string
	CTPSSeries    *string
}

// 取り込みテキストのヘッダ名です。
const (
	HeaderRegistration  = "matricula"
	HeaderName          = "nome"
	HeaderPIS           = "pis"
	HeaderCPF           = "cpf"
	HeaderAdmissionDate = "data_admissao"
	HeaderDismissalDate = "data_demissao"
	HeaderSector        = "nome_setor"
	HeaderJobTitle      = "nome_cargo"
	HeaderDepartment    = "nome_departamento"
	HeaderUnit          = "nome_unidade"
	HeaderAllocation    = "nome_lotacao"
	HeaderStatus        = "situacao"
	HeaderUnitCNPJ      = "cnpj_unidade"
	HeaderCTPS          = "ctps"
	HeaderCTPSSeries    = "serie"
)

// AssignImportField はヘッダ名に対応する項目へ値を設定します。未知のヘッダは無視します。
func AssignImportField(dst *ImportRow, header, value string) error {
	switch header {
	case HeaderRegistration:
		dst.Registration = &value
	case HeaderName:
		dst.Name = &value
	case HeaderPIS:
		dst.PIS = &value
	case HeaderCPF:
		dst.CPF = &value
	case HeaderAdmissionDate:
		d, err := dates.ParseDate(value)
		if err != nil {
			return batch.InvalidDateError(header)
		}
		dst.AdmissionDate = &d
	case HeaderDismissalDate:
		d, err := dates.ParseDate(value)
		if err != nil {
			return batch.InvalidDateError(header)
		}
		dst.DismissalDate = &d
	case HeaderSector:
		dst.Sector = &value
	case HeaderJobTitle:
		dst.JobTitle = &value
	case HeaderDepartment:
		dst.Department = &value
	case HeaderUnit:
		dst.Unit = &value
	case HeaderAllocation:
		dst.Allocation = &value
	case HeaderStatus:
		dst.Status = &value
	case HeaderUnitCNPJ:
		dst.UnitCNPJ = &value
	case HeaderCTPS:
		dst.CTPS = &value
	case HeaderCTPSSeries:
		dst.CTPSSeries = &value
	}
	return nil
}

// ImportEmployees は行を入力順に取り込みます。既存の matrícula は更新、未登録は作成します。
func (s *Service) ImportEmployees(ctx context.Context, rows []batch.Row[ImportRow]) (*batch.Result, error) {
	engine := batch.NewEngine[ImportRow, Employee](&importReconciler{repo: s.repo, clock: s.clock}, s.tx, s.observer)
	return engine.Run(ctx, rows)
}

// ImportEmployeesText はパイプ区切りテキストを解析して取り込みます。
func (s *Service) ImportEmployeesText(ctx context.Context, body string) (*batch.Result, error) {
	rows, err := batch.ParseDelimited(body, AssignImportField)
	if err != nil {
		return nil, err
	}
	return s.ImportEmployees(ctx, rows)
}

// ImportEmployeesTable はスプレッドシートから読み出した表を取り込みます。
func (s *Service) ImportEmployeesTable(ctx context.Context, records [][]string) (*batch.Result, error) {
	rows, err := batch.ParseTable(records, AssignImportField)
	if err != nil {
		return nil, err
	}
	return s.ImportEmployees(ctx, rows)
}

type importReconciler struct {
	repo  Repository
	clock Clock
}

func (r *importReconciler) ResolveKey(row ImportRow) string {
	return patch.StringOrEmpty(row.Registration)
}

func (r *importReconciler) Lookup(ctx context.Context, key string) (*Employee, error) {
	return findOptional(ctx, r.repo, key)
}

func (r *importReconciler) Patch(existing *Employee, row ImportRow) {
	applyImportPatch(existing, row)
	existing.UpdatedAt = r.clock.Now()
}

func (r *importReconciler) Create(ctx context.Context, row ImportRow) error {
	_, err := r.repo.Create(ctx, newFromImport(row, r.clock.Now()))
	return err
}

func (r *importReconciler) Update(ctx context.Context, existing *Employee) error {
	_, err := r.repo.Update(ctx, existing)
	return err
}

// applyImportPatch は空白でない値だけを反映します。data_admissao は指定された場合のみ上書きします。
func applyImportPatch(e *Employee, row ImportRow) {
	patch.AssignNonBlank(&e.Name, row.Name)
	patch.AssignNonBlank(&e.PIS, row.PIS)
	patch.AssignNonBlank(&e.CPF, row.CPF)
	if row.AdmissionDate != nil {
		e.AdmissionDate = dates.TruncateDate(*row.AdmissionDate)
	}
	if row.DismissalDate != nil {
		e.DismissalDate = truncateDatePtr(row.DismissalDate)
	}
	patch.AssignNonBlankNullable(&e.Sector, row.Sector)
	patch.AssignNonBlankNullable(&e.JobTitle, row.JobTitle)
	patch.AssignNonBlankNullable(&e.Department, row.Department)
	patch.AssignNonBlank(&e.Unit, row.Unit)
	patch.AssignNonBlank(&e.Allocation, row.Allocation)
	patch.AssignNonBlank(&e.Status, row.Status)
	patch.AssignNonBlank(&e.UnitCNPJ, row.UnitCNPJ)
	patch.AssignNonBlankNullable(&e.CTPS, row.CTPS)
	patch.AssignNonBlankNullable(&e.CTPSSeries, row.CTPSSeries)
}

func newFromImport(row ImportRow, now time.Time) *Employee {
	e := &Employee{
		Registration:  strings.TrimSpace(patch.StringOrEmpty(row.Registration)),
		Name:          patch.StringOrEmpty(row.Name),
		PIS:           patch.StringOrEmpty(row.PIS),
		CPF:           patch.StringOrEmpty(row.CPF),
		DismissalDate: truncateDatePtr(row.DismissalDate),
		Sector:        cloneString(row.Sector),
		JobTitle:      cloneString(row.JobTitle),
		Department:    cloneString(row.Department),
		Unit:          patch.StringOrEmpty(row.Unit),
		Allocation:    patch.StringOrEmpty(row.Allocation),
		Status:        patch.StringOrEmpty(row.Status),
		UnitCNPJ:      patch.StringOrEmpty(row.UnitCNPJ),
		CTPS:          cloneString(row.CTPS),
		CTPSSeries:    cloneString(row.CTPSSeries),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if row.AdmissionDate != nil {
		e.AdmissionDate = dates.TruncateDate(*row.AdmissionDate)
	}
	return e
}
