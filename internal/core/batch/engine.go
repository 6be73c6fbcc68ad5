package batch

import (
	"context"
	"strings"
)

// Reconciler はエンティティごとの取り込み能力です。
// Lookup は一致するレコードがなければ nil, nil を返します。
type Reconciler[T any, R any] interface {
	ResolveKey(row T) string
	Lookup(ctx context.Context, key string) (*R, error)
	Patch(existing *R, row T)
	Create(ctx context.Context, row T) error
	Update(ctx context.Context, existing *R) error
}

// TransactionManager は 1 行分の書き込みを囲むトランザクションの抽象です。
type TransactionManager interface {
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// Observer は各行の処理結果を受け取ります。
type Observer interface {
	RowProcessed(ctx context.Context, line int, outcome Outcome, err error)
}

// ObserverFunc は関数を Observer として扱います。
type ObserverFunc func(ctx context.Context, line int, outcome Outcome, err error)

func (f ObserverFunc) RowProcessed(ctx context.Context, line int, outcome Outcome, err error) {
	f(ctx, line, outcome, err)
}

// Observers は複数の Observer へ順に通知する Observer を返します。nil は読み飛ばします。
func Observers(observers ...Observer) Observer {
	return ObserverFunc(func(ctx context.Context, line int, outcome Outcome, err error) {
		for _, o := range observers {
			if o != nil {
				o.RowProcessed(ctx, line, outcome, err)
			}
		}
	})
}

type directTransactionManager struct{}

func (directTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type noopObserver struct{}

func (noopObserver) RowProcessed(context.Context, int, Outcome, error) {}

// Engine は行を入力順に 1 件ずつ照合し、作成または更新します。
// 行の失敗は集計に記録され、後続の行の処理は継続します。
type Engine[T any, R any] struct {
	reconciler Reconciler[T, R]
	tx         TransactionManager
	observer   Observer
}

// NewEngine は Engine を生成します。tx と observer は nil を許容します。
func NewEngine[T any, R any](reconciler Reconciler[T, R], tx TransactionManager, observer Observer) *Engine[T, R] {
	if tx == nil {
		tx = directTransactionManager{}
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Engine[T, R]{reconciler: reconciler, tx: tx, observer: observer}
}

// Run は rows を処理して集計結果を返します。
// ctx が取り消された場合は次の行に進まず、途中までの結果と ctx.Err() を返します。
func (e *Engine[T, R]) Run(ctx context.Context, rows []Row[T]) (*Result, error) {
	result := &Result{Total: len(rows), Errors: []LineError{}}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome, err := e.process(ctx, row)
		result.record(row.Line, outcome, err)
		e.observer.RowProcessed(ctx, row.Line, outcome, err)
	}

	return result, nil
}

func (e *Engine[T, R]) process(ctx context.Context, row Row[T]) (Outcome, error) {
	if row.Err != nil {
		return OutcomeFailed, row.Err
	}

	key := strings.TrimSpace(e.reconciler.ResolveKey(row.Data))
	if key == "" {
		return OutcomeFailed, ErrMissingKey
	}

	outcome := OutcomeFailed
	err := e.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := e.reconciler.Lookup(txCtx, key)
		if err != nil {
			return err
		}

		if existing != nil {
			e.reconciler.Patch(existing, row.Data)
			if err := e.reconciler.Update(txCtx, existing); err != nil {
				return err
			}
			outcome = OutcomeUpdated
			return nil
		}

		if err := e.reconciler.Create(txCtx, row.Data); err != nil {
			return err
		}
		outcome = OutcomeCreated
		return nil
	})
	if err != nil {
		return OutcomeFailed, err
	}

	return outcome, nil
}
