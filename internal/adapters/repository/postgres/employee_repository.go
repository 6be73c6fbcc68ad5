package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/orbite-rh-api/internal/core/employee"
	pgdb "github.com/ogurasousui/orbite-rh-api/internal/platform/db/postgres"
)

const uniqueViolationCode = "23505"

const employeeColumns = `id, matricula, nome, pis, cpf, data_admissao, data_demissao, nome_setor, nome_cargo,
               nome_departamento, nome_unidade, nome_lotacao, situacao, cnpj_unidade, ctps, serie,
               created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した colaboradores テーブルの実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は従業員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO colaboradores (matricula, nome, pis, cpf, data_admissao, data_demissao, nome_setor, nome_cargo,
               nome_departamento, nome_unidade, nome_lotacao, situacao, cnpj_unidade, ctps, serie, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING `+employeeColumns,
		e.Registration, e.Name, e.PIS, e.CPF, e.AdmissionDate, nullableTime(e.DismissalDate),
		nullableString(e.Sector), nullableString(e.JobTitle), nullableString(e.Department),
		e.Unit, e.Allocation, e.Status, e.UnitCNPJ, nullableString(e.CTPS), nullableString(e.CTPSSeries),
		e.CreatedAt, e.UpdatedAt)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は matrícula をキーに従業員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE colaboradores
           SET nome = $1,
               pis = $2,
               cpf = $3,
               data_admissao = $4,
               data_demissao = $5,
               nome_setor = $6,
               nome_cargo = $7,
               nome_departamento = $8,
               nome_unidade = $9,
               nome_lotacao = $10,
               situacao = $11,
               cnpj_unidade = $12,
               ctps = $13,
               serie = $14,
               updated_at = $15
         WHERE matricula = $16
        RETURNING `+employeeColumns,
		e.Name, e.PIS, e.CPF, e.AdmissionDate, nullableTime(e.DismissalDate),
		nullableString(e.Sector), nullableString(e.JobTitle), nullableString(e.Department),
		e.Unit, e.Allocation, e.Status, e.UnitCNPJ, nullableString(e.CTPS), nullableString(e.CTPSSeries),
		e.UpdatedAt, e.Registration)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は従業員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, registration string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM colaboradores WHERE matricula = $1`, registration)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByRegistration は matrícula で従業員を取得します。
func (r *EmployeeRepository) FindByRegistration(ctx context.Context, registration string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM colaboradores
         WHERE matricula = $1
         LIMIT 1
    `, registration)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は全従業員を matrícula 順に取得します。
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM colaboradores
         ORDER BY matricula
    `)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := []*employee.Employee{}
	for rows.Next() {
		found, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, found)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}

	return employees, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e                            employee.Employee
		admissionDate                time.Time
		dismissal                    sql.NullTime
		sector, jobTitle, department sql.NullString
		ctps, series                 sql.NullString
		createdAt, updatedAt         time.Time
	)

	if err := row.Scan(
		&e.ID, &e.Registration, &e.Name, &e.PIS, &e.CPF, &admissionDate, &dismissal,
		&sector, &jobTitle, &department, &e.Unit, &e.Allocation, &e.Status, &e.UnitCNPJ,
		&ctps, &series, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	e.AdmissionDate = admissionDate.UTC()
	e.DismissalDate = timePtr(dismissal)
	e.Sector = stringPtr(sector)
	e.JobTitle = stringPtr(jobTitle)
	e.Department = stringPtr(department)
	e.CTPS = stringPtr(ctps)
	e.CTPSSeries = stringPtr(series)
	e.CreatedAt = createdAt.UTC()
	e.UpdatedAt = updatedAt.UTC()
	return &e, nil
}

func translateEmployeePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			return employee.ErrRegistrationAlreadyExists
		}
	}
	return err
}
