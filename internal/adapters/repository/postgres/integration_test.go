//go:build integration

package postgres

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/ogurasousui/orbite-rh-api/internal/core/employee"
	"github.com/ogurasousui/orbite-rh-api/internal/core/leave"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/config"
	pg "github.com/ogurasousui/orbite-rh-api/internal/platform/db/postgres"
)

const migrationsDir = "../../../../assets/migrations"

func startDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("orbite"),
		tcpostgres.WithUsername("orbite"),
		tcpostgres.WithPassword("orbite"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "orbite",
		Password: "orbite",
		Name:     "orbite",
		SSLMode:  "disable",
		Schema:   "integracao_sisponto",
	}

	dir, err := filepath.Abs(migrationsDir)
	require.NoError(t, err)
	m, err := migrate.New("file://"+filepath.ToSlash(dir), cfg.DSN())
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to migrate: %v", err)
	}
	_, _ = m.Close()

	pool, err := pg.NewPool(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestIntegration_EmployeeImportAndCRUD(t *testing.T) {
	pool := startDatabase(t)
	ctx := context.Background()

	svc := employee.NewService(NewEmployeeRepository(pool), nil, pg.NewTransactionManager(pool))

	body := "matricula|nome|pis|cpf|data_admissao|nome_unidade|nome_lotacao|situacao|cnpj_unidade\n" +
		"100|Ana|1|2|2020-01-02|Matriz|Adm|Ativo|123\n" +
		"|Sem Matricula|1|2|2020-01-02|Matriz|Adm|Ativo|123\n" +
		"100|Ana Maria||||||Inativo|\n"

	result, err := svc.ImportEmployeesText(ctx, body)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Failed)

	found, err := svc.GetEmployee(ctx, employee.GetEmployeeInput{Registration: "100"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", found.Name)
	assert.Equal(t, "Inativo", found.Status)
	assert.Equal(t, "Matriz", found.Unit)
	assert.True(t, found.AdmissionDate.Equal(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)))

	_, err = svc.CreateEmployee(ctx, employee.CreateEmployeeInput{
		Registration: "100", Name: "Outra", AdmissionDate: time.Now(),
	})
	assert.ErrorIs(t, err, employee.ErrRegistrationAlreadyExists)

	require.NoError(t, svc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{Registration: "100"}))
	_, err = svc.GetEmployee(ctx, employee.GetEmployeeInput{Registration: "100"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestIntegration_LeaveImportUpdatesFirstMatch(t *testing.T) {
	pool := startDatabase(t)
	ctx := context.Background()

	svc := leave.NewService(NewLeaveRepository(pool), nil, pg.NewTransactionManager(pool))

	for _, desc := range []string{"Primeiro", "Segundo"} {
		_, err := svc.CreateLeave(ctx, leave.CreateLeaveInput{
			Registration: "200",
			Description:  desc,
			StartAt:      time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	result, err := svc.ImportLeavesText(ctx, "matricula|descricao|data_inicio\n200|Atualizado|2024-02-01 09:00\n")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	records, err := svc.ListLeavesByRegistration(ctx, "200")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Atualizado", records[0].Description)
	assert.True(t, records[0].StartAt.Equal(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Segundo", records[1].Description)
}
