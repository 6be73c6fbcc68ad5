package employee

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
	"github.com/ogurasousui/orbite-rh-api/internal/core/dates"
	"github.com/ogurasousui/orbite-rh-api/internal/core/patch"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は従業員に関するユースケースをまとめます。
type Service struct {
	repo     Repository
	clock    Clock
	tx       TransactionManager
	observer batch.Observer
}

// UseCase は従業員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context) ([]*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
	ImportEmployees(ctx context.Context, rows []batch.Row[ImportRow]) (*batch.Result, error)
	ImportEmployeesText(ctx context.Context, body string) (*batch.Result, error)
	ImportEmployeesTable(ctx context.Context, records [][]string) (*batch.Result, error)
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithImportObserver は取り込みの各行の結果を受け取る Observer を設定します。
func WithImportObserver(observer batch.Observer) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repo: repo, clock: clock, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEmployeeInput は従業員作成時の入力です。
type CreateEmployeeInput struct {
	Registration  string
	Name          string
	PIS           string
	CPF           string
	AdmissionDate time.Time
	DismissalDate *time.Time
	Sector        *string
	JobTitle      *string
	Department    *string
	Unit          string
	Allocation    string
	Status        string
	UnitCNPJ      string
	CTPS          *string
	CTPSSeries    *string
}

// UpdateEmployeeInput は従業員更新時の入力です。キーが指定された項目だけを反映します。
type UpdateEmployeeInput struct {
	Registration  string
	Name          patch.Field[string]
	PIS           patch.Field[string]
	CPF           patch.Field[string]
	AdmissionDate patch.Field[time.Time]
	DismissalDate patch.Field[time.Time]
	Sector        patch.Field[string]
	JobTitle      patch.Field[string]
	Department    patch.Field[string]
	Unit          patch.Field[string]
	Allocation    patch.Field[string]
	Status        patch.Field[string]
	UnitCNPJ      patch.Field[string]
	CTPS          patch.Field[string]
	CTPSSeries    patch.Field[string]
}

// GetEmployeeInput は従業員取得時の入力です。
type GetEmployeeInput struct {
	Registration string
}

// DeleteEmployeeInput は従業員削除時の入力です。
type DeleteEmployeeInput struct {
	Registration string
}

// CreateEmployee は新しい従業員を作成します。matrícula が既に存在する場合は ErrRegistrationAlreadyExists です。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	registration := strings.TrimSpace(in.Registration)
	if registration == "" {
		return nil, ErrInvalidPayload
	}

	now := s.clock.Now()
	emp := &Employee{
		Registration:  registration,
		Name:          in.Name,
		PIS:           in.PIS,
		CPF:           in.CPF,
		AdmissionDate: dates.TruncateDate(in.AdmissionDate),
		DismissalDate: truncateDatePtr(in.DismissalDate),
		Sector:        cloneString(in.Sector),
		JobTitle:      cloneString(in.JobTitle),
		Department:    cloneString(in.Department),
		Unit:          in.Unit,
		Allocation:    in.Allocation,
		Status:        in.Status,
		UnitCNPJ:      in.UnitCNPJ,
		CTPS:          cloneString(in.CTPS),
		CTPSSeries:    cloneString(in.CTPSSeries),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := validateLengths(emp); err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := findOptional(txCtx, s.repo, registration)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrRegistrationAlreadyExists
		}

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetEmployee は従業員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	registration := strings.TrimSpace(in.Registration)
	if registration == "" {
		return nil, ErrEmployeeNotFound
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByRegistration(txCtx, registration)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は全従業員を matrícula 順に返します。
func (s *Service) ListEmployees(ctx context.Context) ([]*Employee, error) {
	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		employees = result
		return nil
	}); err != nil {
		return nil, err
	}

	if employees == nil {
		employees = []*Employee{}
	}
	return employees, nil
}

// UpdateEmployee は従業員情報を部分更新します。matrícula 自体は変更できません。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	registration := strings.TrimSpace(in.Registration)
	if registration == "" {
		return nil, ErrEmployeeNotFound
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByRegistration(txCtx, registration)
		if err != nil {
			return err
		}

		applyUpdatePatch(existing, in)
		if err := validateLengths(existing); err != nil {
			return err
		}
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は従業員を削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	registration := strings.TrimSpace(in.Registration)
	if registration == "" {
		return ErrEmployeeNotFound
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByRegistration(txCtx, registration); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, registration)
	})
}

// findOptional は該当なしを nil, nil として返します。
func findOptional(ctx context.Context, repo Repository, registration string) (*Employee, error) {
	found, err := repo.FindByRegistration(ctx, registration)
	if errors.Is(err, ErrEmployeeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}

func applyUpdatePatch(e *Employee, in UpdateEmployeeInput) {
	patch.Assign(&e.Name, in.Name)
	patch.Assign(&e.PIS, in.PIS)
	patch.Assign(&e.CPF, in.CPF)
	if in.AdmissionDate.Present() {
		e.AdmissionDate = dates.TruncateDate(in.AdmissionDate.Value)
	}
	patch.AssignNullable(&e.DismissalDate, in.DismissalDate)
	e.DismissalDate = truncateDatePtr(e.DismissalDate)
	patch.AssignNullable(&e.Sector, in.Sector)
	patch.AssignNullable(&e.JobTitle, in.JobTitle)
	patch.AssignNullable(&e.Department, in.Department)
	patch.Assign(&e.Unit, in.Unit)
	patch.Assign(&e.Allocation, in.Allocation)
	patch.Assign(&e.Status, in.Status)
	patch.Assign(&e.UnitCNPJ, in.UnitCNPJ)
	patch.AssignNullable(&e.CTPS, in.CTPS)
	patch.AssignNullable(&e.CTPSSeries, in.CTPSSeries)
}

func validateLengths(e *Employee) error {
	limits := []struct {
		value string
		max   int
	}{
		{e.Registration, MaxRegistrationLength},
		{e.Name, MaxNameLength},
		{e.PIS, MaxPISLength},
		{e.CPF, MaxCPFLength},
		{derefString(e.Sector), MaxOrgUnitLength},
		{derefString(e.JobTitle), MaxOrgUnitLength},
		{derefString(e.Department), MaxOrgUnitLength},
		{e.Unit, MaxOrgUnitLength},
		{e.Allocation, MaxOrgUnitLength},
		{e.Status, MaxStatusLength},
		{e.UnitCNPJ, MaxCNPJLength},
		{derefString(e.CTPS), MaxCTPSLength},
		{derefString(e.CTPSSeries), MaxCTPSLength},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return ErrInvalidPayload
		}
	}
	return nil
}

func truncateDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dates.TruncateDate(*t)
	return &d
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
