package leave

import "context"

// Repository は afastamento 永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Record, error)
	// ListByRegistration は id の昇順で返します。
	ListByRegistration(ctx context.Context, registration string) ([]*Record, error)
	List(ctx context.Context) ([]*Record, error)
}
