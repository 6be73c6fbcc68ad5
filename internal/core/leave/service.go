package leave

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
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

// Service は afastamento に関するユースケースをまとめます。
type Service struct {
	repo     Repository
	clock    Clock
	tx       TransactionManager
	observer batch.Observer
}

// UseCase は afastamento ユースケースの公開インターフェースです。
type UseCase interface {
	CreateLeave(ctx context.Context, in CreateLeaveInput) (*Record, error)
	GetLeave(ctx context.Context, in GetLeaveInput) (*Record, error)
	ListLeaves(ctx context.Context) ([]*Record, error)
	ListLeavesByRegistration(ctx context.Context, registration string) ([]*Record, error)
	UpdateLeave(ctx context.Context, in UpdateLeaveInput) (*Record, error)
	DeleteLeave(ctx context.Context, in DeleteLeaveInput) error
	ImportLeaves(ctx context.Context, rows []batch.Row[ImportRow]) (*batch.Result, error)
	ImportLeavesText(ctx context.Context, body string) (*batch.Result, error)
	ImportLeavesTable(ctx context.Context, records [][]string) (*batch.Result, error)
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

// CreateLeaveInput は afastamento 作成時の入力です。
type CreateLeaveInput struct {
	Registration  string
	Description   string
	StartAt       time.Time
	EndAt         *time.Time
	UnitCNPJ      *string
	SituationCode *string
}

// UpdateLeaveInput は afastamento 更新時の入力です。キーが指定された項目だけを反映します。
type UpdateLeaveInput struct {
	ID            int64
	Registration  patch.Field[string]
	Description   patch.Field[string]
	StartAt       patch.Field[time.Time]
	EndAt         patch.Field[time.Time]
	UnitCNPJ      patch.Field[string]
	SituationCode patch.Field[string]
}

// GetLeaveInput は afastamento 取得時の入力です。
type GetLeaveInput struct {
	ID int64
}

// DeleteLeaveInput は afastamento 削除時の入力です。
type DeleteLeaveInput struct {
	ID int64
}

// CreateLeave は afastamento を作成します。同じ matrícula の重複は許容します。
func (s *Service) CreateLeave(ctx context.Context, in CreateLeaveInput) (*Record, error) {
	registration := strings.TrimSpace(in.Registration)
	if registration == "" {
		return nil, ErrInvalidPayload
	}

	now := s.clock.Now()
	record := &Record{
		Registration:  registration,
		Description:   in.Description,
		StartAt:       in.StartAt.UTC(),
		EndAt:         utcPtr(in.EndAt),
		UnitCNPJ:      cloneString(in.UnitCNPJ),
		SituationCode: cloneString(in.SituationCode),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := validateLengths(record); err != nil {
		return nil, err
	}

	var created *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, record)
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

// GetLeave は afastamento を取得します。
func (s *Service) GetLeave(ctx context.Context, in GetLeaveInput) (*Record, error) {
	if in.ID <= 0 {
		return nil, ErrLeaveNotFound
	}

	var result *Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
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

// ListLeaves は全 afastamento を id 順に返します。
func (s *Service) ListLeaves(ctx context.Context) ([]*Record, error) {
	return s.list(ctx, func(txCtx context.Context) ([]*Record, error) {
		return s.repo.List(txCtx)
	})
}

// ListLeavesByRegistration は matrícula に紐づく afastamento を id 順に返します。該当なしは空です。
func (s *Service) ListLeavesByRegistration(ctx context.Context, registration string) ([]*Record, error) {
	registration = strings.TrimSpace(registration)
	if registration == "" {
		return []*Record{}, nil
	}
	return s.list(ctx, func(txCtx context.Context) ([]*Record, error) {
		return s.repo.ListByRegistration(txCtx, registration)
	})
}

func (s *Service) list(ctx context.Context, fetch func(context.Context) ([]*Record, error)) ([]*Record, error) {
	var records []*Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := fetch(txCtx)
		if err != nil {
			return err
		}
		records = result
		return nil
	}); err != nil {
		return nil, err
	}

	if records == nil {
		records = []*Record{}
	}
	return records, nil
}

// UpdateLeave は afastamento を部分更新します。
func (s *Service) UpdateLeave(ctx context.Context, in UpdateLeaveInput) (*Record, error) {
	if in.ID <= 0 {
		return nil, ErrLeaveNotFound
	}

	var updated *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
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

// DeleteLeave は afastamento を削除します。
func (s *Service) DeleteLeave(ctx context.Context, in DeleteLeaveInput) error {
	if in.ID <= 0 {
		return ErrLeaveNotFound
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByID(txCtx, in.ID); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, in.ID)
	})
}

func applyUpdatePatch(r *Record, in UpdateLeaveInput) {
	if in.Registration.Present() {
		r.Registration = strings.TrimSpace(in.Registration.Value)
	}
	patch.Assign(&r.Description, in.Description)
	if in.StartAt.Present() {
		r.StartAt = in.StartAt.Value.UTC()
	}
	patch.AssignNullable(&r.EndAt, in.EndAt)
	r.EndAt = utcPtr(r.EndAt)
	patch.AssignNullable(&r.UnitCNPJ, in.UnitCNPJ)
	patch.AssignNullable(&r.SituationCode, in.SituationCode)
}

func validateLengths(r *Record) error {
	if utf8.RuneCountInString(r.Registration) > MaxRegistrationLength ||
		utf8.RuneCountInString(r.Description) > MaxDescriptionLength ||
		utf8.RuneCountInString(derefString(r.UnitCNPJ)) > MaxCNPJLength ||
		utf8.RuneCountInString(derefString(r.SituationCode)) > MaxSituationCodeLength {
		return ErrInvalidPayload
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
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
