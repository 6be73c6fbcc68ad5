package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/orbite-rh-api/internal/core/leave"
	pgdb "github.com/ogurasousui/orbite-rh-api/internal/platform/db/postgres"
)

const leaveColumns = `id, matricula, descricao, data_inicio, data_final, cnpj_unidade, codigo_situacao, created_at, updated_at`

// LeaveRepository は PostgreSQL を利用した afastamentos テーブルの実装です。
type LeaveRepository struct {
	pool pgdb.Queryer
}

// NewLeaveRepository は LeaveRepository を生成します。
func NewLeaveRepository(pool pgdb.Queryer) *LeaveRepository {
	return &LeaveRepository{pool: pool}
}

// Create は afastamento を作成します。id はデータベースが採番します。
func (r *LeaveRepository) Create(ctx context.Context, rec *leave.Record) (*leave.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO afastamentos (matricula, descricao, data_inicio, data_final, cnpj_unidade, codigo_situacao, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+leaveColumns,
		rec.Registration, rec.Description, rec.StartAt, nullableTime(rec.EndAt),
		nullableString(rec.UnitCNPJ), nullableString(rec.SituationCode), rec.CreatedAt, rec.UpdatedAt)

	return scanLeave(row)
}

// Update は afastamento を更新します。
func (r *LeaveRepository) Update(ctx context.Context, rec *leave.Record) (*leave.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE afastamentos
           SET matricula = $1,
               descricao = $2,
               data_inicio = $3,
               data_final = $4,
               cnpj_unidade = $5,
               codigo_situacao = $6,
               updated_at = $7
         WHERE id = $8
        RETURNING `+leaveColumns,
		rec.Registration, rec.Description, rec.StartAt, nullableTime(rec.EndAt),
		nullableString(rec.UnitCNPJ), nullableString(rec.SituationCode), rec.UpdatedAt, rec.ID)

	return scanLeave(row)
}

// Delete は afastamento を削除します。
func (r *LeaveRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM afastamentos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

// FindByID は id で afastamento を取得します。
func (r *LeaveRepository) FindByID(ctx context.Context, id int64) (*leave.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+leaveColumns+`
          FROM afastamentos
         WHERE id = $1
    `, id)

	return scanLeave(row)
}

// ListByRegistration は matrícula に紐づく afastamento を id 順に取得します。
func (r *LeaveRepository) ListByRegistration(ctx context.Context, registration string) ([]*leave.Record, error) {
	return r.query(ctx, `
        SELECT `+leaveColumns+`
          FROM afastamentos
         WHERE matricula = $1
         ORDER BY id
    `, registration)
}

// List は全 afastamento を id 順に取得します。
func (r *LeaveRepository) List(ctx context.Context) ([]*leave.Record, error) {
	return r.query(ctx, `
        SELECT `+leaveColumns+`
          FROM afastamentos
         ORDER BY id
    `)
}

func (r *LeaveRepository) query(ctx context.Context, sqlText string, args ...any) ([]*leave.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*leave.Record{}
	for rows.Next() {
		rec, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func scanLeave(row pgx.Row) (*leave.Record, error) {
	var (
		rec                     leave.Record
		startAt                 time.Time
		endAt                   sql.NullTime
		unitCNPJ, situationCode sql.NullString
		createdAt, updatedAt    time.Time
	)

	if err := row.Scan(&rec.ID, &rec.Registration, &rec.Description, &startAt, &endAt,
		&unitCNPJ, &situationCode, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, leave.ErrLeaveNotFound
		}
		return nil, err
	}

	rec.StartAt = startAt.UTC()
	rec.EndAt = timePtr(endAt)
	rec.UnitCNPJ = stringPtr(unitCNPJ)
	rec.SituationCode = stringPtr(situationCode)
	rec.CreatedAt = createdAt.UTC()
	rec.UpdatedAt = updatedAt.UTC()
	return &rec, nil
}
