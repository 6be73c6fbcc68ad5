package employee

import "context"

// Repository は従業員永続化の抽象です。
// 該当レコードがない場合 FindByRegistration と Delete は ErrEmployeeNotFound を返します。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, registration string) error
	FindByRegistration(ctx context.Context, registration string) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
}
