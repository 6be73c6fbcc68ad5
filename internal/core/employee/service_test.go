package employee

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
	"github.com/ogurasousui/orbite-rh-api/internal/core/patch"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees map[string]*Employee
	sequence  int64
	createErr error
	creates   int
	updates   int
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*Employee)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.employees[e.Registration]; ok {
		return nil, ErrRegistrationAlreadyExists
	}
	clone := cloneEmployee(e)
	r.sequence++
	clone.ID = r.sequence
	r.employees[e.Registration] = clone
	r.creates++
	return cloneEmployee(clone), nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.Registration]; !ok {
		return nil, ErrEmployeeNotFound
	}
	r.employees[e.Registration] = cloneEmployee(e)
	r.updates++
	return cloneEmployee(e), nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, registration string) error {
	if _, ok := r.employees[registration]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, registration)
	return nil
}

func (r *fakeEmployeeRepo) FindByRegistration(_ context.Context, registration string) (*Employee, error) {
	emp, ok := r.employees[registration]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return cloneEmployee(emp), nil
}

func (r *fakeEmployeeRepo) List(_ context.Context) ([]*Employee, error) {
	keys := make([]string, 0, len(r.employees))
	for k := range r.employees {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Employee, 0, len(keys))
	for _, k := range keys {
		out = append(out, cloneEmployee(r.employees[k]))
	}
	return out, nil
}

func cloneEmployee(emp *Employee) *Employee {
	if emp == nil {
		return nil
	}
	copy := *emp
	copy.DismissalDate = truncateDatePtr(emp.DismissalDate)
	copy.Sector = cloneString(emp.Sector)
	copy.JobTitle = cloneString(emp.JobTitle)
	copy.Department = cloneString(emp.Department)
	copy.CTPS = cloneString(emp.CTPS)
	copy.CTPSSeries = cloneString(emp.CTPSSeries)
	return &copy
}

func strPtr(s string) *string { return &s }

func validCreateInput(registration string) CreateEmployeeInput {
	return CreateEmployeeInput{
		Registration:  registration,
		Name:          "Ana Souza",
		PIS:           "12345678901",
		CPF:           "98765432100",
		AdmissionDate: time.Date(2023, 3, 1, 15, 0, 0, 0, time.UTC),
		Sector:        strPtr("RH"),
		Unit:          "Matriz",
		Allocation:    "Adm",
		Status:        "ATIVO",
		UnitCNPJ:      "12345678000199",
	}
}

func TestService_CreateEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, &stubClock{now: now}, nil)

	created, err := svc.CreateEmployee(context.Background(), validCreateInput(" 123 "))
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if created.Registration != "123" {
		t.Fatalf("expected trimmed registration, got %q", created.Registration)
	}
	if !created.AdmissionDate.Equal(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected admission date truncated to day, got %v", created.AdmissionDate)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps to use clock now")
	}
}

func TestService_CreateEmployee_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	if _, err := svc.CreateEmployee(context.Background(), validCreateInput("123")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.CreateEmployee(context.Background(), validCreateInput("123"))
	if !errors.Is(err, ErrRegistrationAlreadyExists) {
		t.Fatalf("expected ErrRegistrationAlreadyExists, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected a single store create, got %d", repo.creates)
	}
}

func TestService_CreateEmployee_InvalidPayload(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	if _, err := svc.CreateEmployee(context.Background(), validCreateInput("  ")); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload for blank registration, got %v", err)
	}

	in := validCreateInput("123")
	in.CPF = "123456789012"
	if _, err := svc.CreateEmployee(context.Background(), in); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload for long cpf, got %v", err)
	}
}

func TestService_GetEmployee_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	_, err := svc.GetEmployee(context.Background(), GetEmployeeInput{Registration: "404"})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestService_UpdateEmployee_PatchPolicy(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	clk := &stubClock{now: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clk, nil)

	if _, err := svc.CreateEmployee(context.Background(), validCreateInput("123")); err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	clk.now = clk.now.Add(time.Hour)

	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		Registration: "123",
		Name:         patch.Some(""),
		Status:       patch.Null[string](),
		Sector:       patch.Null[string](),
		JobTitle:     patch.Some("Analista"),
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}

	if updated.Name != "" {
		t.Fatalf("expected explicit empty name to overwrite, got %q", updated.Name)
	}
	if updated.Status != "ATIVO" {
		t.Fatalf("expected null on required field to be ignored, got %q", updated.Status)
	}
	if updated.Sector != nil {
		t.Fatalf("expected null to clear optional sector, got %v", *updated.Sector)
	}
	if updated.JobTitle == nil || *updated.JobTitle != "Analista" {
		t.Fatalf("expected job title to be set, got %v", updated.JobTitle)
	}
	if updated.PIS != "12345678901" {
		t.Fatalf("expected absent field untouched, got %q", updated.PIS)
	}
	if !updated.UpdatedAt.Equal(clk.now) {
		t.Fatalf("expected updated timestamp to use clock")
	}
}

func TestService_UpdateEmployee_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	_, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{Registration: "1", Name: patch.Some("x")})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestService_DeleteEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, nil, nil)

	if _, err := svc.CreateEmployee(context.Background(), validCreateInput("123")); err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{Registration: "123"}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}
	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{Registration: "123"}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound on second delete, got %v", err)
	}

	list, err := svc.ListEmployees(context.Background())
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestService_ImportEmployeesText_CreateAndUpdate(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	if _, err := svc.CreateEmployee(context.Background(), validCreateInput("100")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := "matricula|nome|data_admissao|nome_setor\n" +
		"100|   |2024-02-10|TI\n" +
		"200|Bruno|10/02/2024|\n"

	result, err := svc.ImportEmployeesText(context.Background(), body)
	if err != nil {
		t.Fatalf("ImportEmployeesText returned error: %v", err)
	}

	if result.Total != 2 || result.Created != 1 || result.Updated != 1 || result.Succeeded != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	updated := repo.employees["100"]
	if updated.Name != "Ana Souza" {
		t.Fatalf("expected blank import value to leave name untouched, got %q", updated.Name)
	}
	if updated.Sector == nil || *updated.Sector != "TI" {
		t.Fatalf("expected sector updated by import, got %v", updated.Sector)
	}
	if !updated.AdmissionDate.Equal(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected admission date from import, got %v", updated.AdmissionDate)
	}

	created := repo.employees["200"]
	if created.Name != "Bruno" || created.PIS != "" || created.Sector != nil {
		t.Fatalf("unexpected created employee: %+v", created)
	}
}

func TestService_ImportEmployees_Idempotent(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, nil, nil)

	rows := batch.FromList([]ImportRow{{Registration: strPtr("9"), Name: strPtr("Caio")}})

	first, err := svc.ImportEmployees(context.Background(), rows)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := svc.ImportEmployees(context.Background(), rows)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}

	if first.Created != 1 || second.Updated != 1 || second.Created != 0 {
		t.Fatalf("expected create then update, got %+v / %+v", first, second)
	}
	if repo.creates != 1 {
		t.Fatalf("expected exactly one create, got %d", repo.creates)
	}
}

func TestService_ImportEmployees_RowErrors(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	repo.createErr = errors.New("pg: value too long for type character varying(50)")
	svc := NewService(repo, nil, nil)

	result, err := svc.ImportEmployeesText(context.Background(), "matricula|nome|data_admissao\n|Sem matricula|\n1|Ana|31/31/2024\n2|Bea|")
	if err != nil {
		t.Fatalf("ImportEmployeesText returned error: %v", err)
	}

	want := []batch.LineError{
		{Line: 2, Message: "Matrícula não informada"},
		{Line: 3, Message: "Data inválida em data_admissao"},
		{Line: 4, Message: batch.RowFailedMessage},
	}
	if len(result.Errors) != len(want) {
		t.Fatalf("expected %d errors, got %+v", len(want), result.Errors)
	}
	for i := range want {
		if result.Errors[i] != want[i] {
			t.Fatalf("error %d: expected %+v, got %+v", i, want[i], result.Errors[i])
		}
	}
	if result.Succeeded+result.Failed != result.Total {
		t.Fatalf("succeeded + failed must equal total: %+v", result)
	}
}

func TestService_ImportEmployeesText_MalformedPayload(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	if _, err := svc.ImportEmployeesText(context.Background(), "   "); !errors.Is(err, batch.ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
	if _, err := svc.ImportEmployeesText(context.Background(), "matricula|nome\n1"); !errors.Is(err, batch.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestService_ImportEmployeesTable(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, nil, nil)

	result, err := svc.ImportEmployeesTable(context.Background(), [][]string{
		{"matricula", "nome", "situacao"},
		{"7", "Davi"},
	})
	if err != nil {
		t.Fatalf("ImportEmployeesTable returned error: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("expected one created, got %+v", result)
	}
	if repo.employees["7"].Status != "" {
		t.Fatalf("expected default empty status")
	}
}
