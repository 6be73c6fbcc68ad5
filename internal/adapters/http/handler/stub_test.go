package handler

import (
	"context"

	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
	"github.com/ogurasousui/orbite-rh-api/internal/core/employee"
	"github.com/ogurasousui/orbite-rh-api/internal/core/leave"
)

type stubEmployeeUseCase struct {
	createInput employee.CreateEmployeeInput
	createOut   *employee.Employee
	createErr   error

	getInput employee.GetEmployeeInput
	getOut   *employee.Employee
	getErr   error

	listOut []*employee.Employee
	listErr error

	updateInput employee.UpdateEmployeeInput
	updateOut   *employee.Employee
	updateErr   error

	deleteInput employee.DeleteEmployeeInput
	deleteErr   error

	importRows    []batch.Row[employee.ImportRow]
	importText    string
	importRecords [][]string
	importOut     *batch.Result
	importErr     error
}

func (s *stubEmployeeUseCase) CreateEmployee(_ context.Context, in employee.CreateEmployeeInput) (*employee.Employee, error) {
	s.createInput = in
	return s.createOut, s.createErr
}

func (s *stubEmployeeUseCase) GetEmployee(_ context.Context, in employee.GetEmployeeInput) (*employee.Employee, error) {
	s.getInput = in
	return s.getOut, s.getErr
}

func (s *stubEmployeeUseCase) ListEmployees(context.Context) ([]*employee.Employee, error) {
	return s.listOut, s.listErr
}

func (s *stubEmployeeUseCase) UpdateEmployee(_ context.Context, in employee.UpdateEmployeeInput) (*employee.Employee, error) {
	s.updateInput = in
	return s.updateOut, s.updateErr
}

func (s *stubEmployeeUseCase) DeleteEmployee(_ context.Context, in employee.DeleteEmployeeInput) error {
	s.deleteInput = in
	return s.deleteErr
}

func (s *stubEmployeeUseCase) ImportEmployees(_ context.Context, rows []batch.Row[employee.ImportRow]) (*batch.Result, error) {
	s.importRows = rows
	return s.importOut, s.importErr
}

func (s *stubEmployeeUseCase) ImportEmployeesText(_ context.Context, body string) (*batch.Result, error) {
	s.importText = body
	return s.importOut, s.importErr
}

func (s *stubEmployeeUseCase) ImportEmployeesTable(_ context.Context, records [][]string) (*batch.Result, error) {
	s.importRecords = records
	return s.importOut, s.importErr
}

type stubLeaveUseCase struct {
	createInput leave.CreateLeaveInput
	createOut   *leave.Record
	createErr   error

	getInput leave.GetLeaveInput
	getOut   *leave.Record
	getErr   error

	listOut          []*leave.Record
	listErr          error
	listRegistration string

	updateInput leave.UpdateLeaveInput
	updateOut   *leave.Record
	updateErr   error

	deleteInput leave.DeleteLeaveInput
	deleteErr   error

	importRows []batch.Row[leave.ImportRow]
	importText string
	importOut  *batch.Result
	importErr  error
}

func (s *stubLeaveUseCase) CreateLeave(_ context.Context, in leave.CreateLeaveInput) (*leave.Record, error) {
	s.createInput = in
	return s.createOut, s.createErr
}

func (s *stubLeaveUseCase) GetLeave(_ context.Context, in leave.GetLeaveInput) (*leave.Record, error) {
	s.getInput = in
	return s.getOut, s.getErr
}

func (s *stubLeaveUseCase) ListLeaves(context.Context) ([]*leave.Record, error) {
	return s.listOut, s.listErr
}

func (s *stubLeaveUseCase) ListLeavesByRegistration(_ context.Context, registration string) ([]*leave.Record, error) {
	s.listRegistration = registration
	return s.listOut, s.listErr
}

func (s *stubLeaveUseCase) UpdateLeave(_ context.Context, in leave.UpdateLeaveInput) (*leave.Record, error) {
	s.updateInput = in
	return s.updateOut, s.updateErr
}

func (s *stubLeaveUseCase) DeleteLeave(_ context.Context, in leave.DeleteLeaveInput) error {
	s.deleteInput = in
	return s.deleteErr
}

func (s *stubLeaveUseCase) ImportLeaves(_ context.Context, rows []batch.Row[leave.ImportRow]) (*batch.Result, error) {
	s.importRows = rows
	return s.importOut, s.importErr
}

func (s *stubLeaveUseCase) ImportLeavesText(_ context.Context, body string) (*batch.Result, error) {
	s.importText = body
	return s.importOut, s.importErr
}

func (s *stubLeaveUseCase) ImportLeavesTable(_ context.Context, records [][]string) (*batch.Result, error) {
	return s.importOut, s.importErr
}
