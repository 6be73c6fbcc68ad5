package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
	"github.com/ogurasousui/orbite-rh-api/internal/core/dates"
	"github.com/ogurasousui/orbite-rh-api/internal/core/employee"
	"github.com/ogurasousui/orbite-rh-api/internal/core/leave"
	"github.com/ogurasousui/orbite-rh-api/internal/core/patch"
)

var jsonNull = []byte("null")

// Date は YYYY-MM-DD 形式で入出力する暦日です。
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dates.DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := dates.ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// DateTime は RFC 3339 で出力する日時です。入力はタイムゾーンなしの形式も受け付けます。
type DateTime struct {
	time.Time
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := dates.ParseDateTime(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func datePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}

func dateTimePtr(t *time.Time) *DateTime {
	if t == nil {
		return nil
	}
	return &DateTime{Time: *t}
}

func timeFromDate(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func timeFromDateTime(d *DateTime) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func dateField(f patch.Field[Date]) patch.Field[time.Time] {
	return patch.Field[time.Time]{Set: f.Set, Null: f.Null, Value: f.Value.Time}
}

func dateTimeField(f patch.Field[DateTime]) patch.Field[time.Time] {
	return patch.Field[time.Time]{Set: f.Set, Null: f.Null, Value: f.Value.Time}
}

type createEmployeeRequest struct {
	Registration  string  `json:"matricula" validate:"required,max=13"`
	Name          string  `json:"nome" validate:"required,max=50"`
	PIS           string  `json:"pis" validate:"required,max=11"`
	CPF           string  `json:"cpf" validate:"required,max=11"`
	AdmissionDate *Date   `json:"data_admissao" validate:"required"`
	DismissalDate *Date   `json:"data_demissao"`
	Sector        *string `json:"nome_setor" validate:"omitempty,max=40"`
	JobTitle      *string `json:"nome_cargo" validate:"omitempty,max=40"`
	Department    *string `json:"nome_departamento" validate:"omitempty,max=40"`
	Unit          string  `json:"nome_unidade" validate:"required,max=40"`
	Allocation    string  `json:"nome_lotacao" validate:"required,max=40"`
	Status        string  `json:"situacao" validate:"required,max=10"`
	UnitCNPJ      string  `json:"cnpj_unidade" validate:"required,max=14"`
	CTPS          *string `json:"ctps" validate:"omitempty,max=15"`
	CTPSSeries    *string `json:"serie" validate:"omitempty,max=15"`
}

func (r createEmployeeRequest) toInput() employee.CreateEmployeeInput {
	in := employee.CreateEmployeeInput{
		Registration:  r.Registration,
		Name:          r.Name,
		PIS:           r.PIS,
		CPF:           r.CPF,
		DismissalDate: timeFromDate(r.DismissalDate),
		Sector:        r.Sector,
		JobTitle:      r.JobTitle,
		Department:    r.Department,
		Unit:          r.Unit,
		Allocation:    r.Allocation,
		Status:        r.Status,
		UnitCNPJ:      r.UnitCNPJ,
		CTPS:          r.CTPS,
		CTPSSeries:    r.CTPSSeries,
	}
	if r.AdmissionDate != nil {
		in.AdmissionDate = r.AdmissionDate.Time
	}
	return in
}

// updateEmployeeRequest の matricula は不変のため本文からは受け取りません。
type updateEmployeeRequest struct {
	Name          patch.Field[string] `json:"nome"`
	PIS           patch.Field[string] `json:"pis"`
	CPF           patch.Field[string] `json:"cpf"`
	AdmissionDate patch.Field[Date]   `json:"data_admissao"`
	DismissalDate patch.Field[Date]   `json:"data_demissao"`
	Sector        patch.Field[string] `json:"nome_setor"`
	JobTitle      patch.Field[string] `json:"nome_cargo"`
	Department    patch.Field[string] `json:"nome_departamento"`
	Unit          patch.Field[string] `json:"nome_unidade"`
	Allocation    patch.Field[string] `json:"nome_lotacao"`
	Status        patch.Field[string] `json:"situacao"`
	UnitCNPJ      patch.Field[string] `json:"cnpj_unidade"`
	CTPS          patch.Field[string] `json:"ctps"`
	CTPSSeries    patch.Field[string] `json:"serie"`
}

func (r updateEmployeeRequest) toInput(registration string) employee.UpdateEmployeeInput {
	return employee.UpdateEmployeeInput{
		Registration:  registration,
		Name:          r.Name,
		PIS:           r.PIS,
		CPF:           r.CPF,
		AdmissionDate: dateField(r.AdmissionDate),
		DismissalDate: dateField(r.DismissalDate),
		Sector:        r.Sector,
		JobTitle:      r.JobTitle,
		Department:    r.Department,
		Unit:          r.Unit,
		Allocation:    r.Allocation,
		Status:        r.Status,
		UnitCNPJ:      r.UnitCNPJ,
		CTPS:          r.CTPS,
		CTPSSeries:    r.CTPSSeries,
	}
}

// importEmployeeItem は JSON 取り込みの 1 要素です。日付は行エラーとして報告するため文字列で受けます。
type importEmployeeItem struct {
	Registration  *string `json:"matricula"`
	Name          *string `json:"nome"`
	PIS           *string `json:"pis"`
	CPF           *string `json:"cpf"`
	AdmissionDate *string `json:"data_admissao"`
	DismissalDate *string `json:"data_demissao"`
	Sector        *string `json:"nome_setor"`
	JobTitle      *string `json:"nome_cargo"`
	Department    *string `json:"nome_departamento"`
	Unit          *string `json:"nome_unidade"`
	Allocation    *string `json:"nome_lotacao"`
	Status        *string `json:"situacao"`
	UnitCNPJ      *string `json:"cnpj_unidade"`
	CTPS          *string `json:"ctps"`
	CTPSSeries    *string `json:"serie"`
}

func decodeEmployeeItem(raw json.RawMessage) (employee.ImportRow, error) {
	var item importEmployeeItem
	if err := decodeItem(raw, &item); err != nil {
		return employee.ImportRow{}, err
	}

	row := employee.ImportRow{
		Registration: item.Registration,
		Name:         item.Name,
		PIS:          item.PIS,
		CPF:          item.CPF,
		Sector:       item.Sector,
		JobTitle:     item.JobTitle,
		Department:   item.Department,
		Unit:         item.Unit,
		Allocation:   item.Allocation,
		Status:       item.Status,
		UnitCNPJ:     item.UnitCNPJ,
		CTPS:         item.CTPS,
		CTPSSeries:   item.CTPSSeries,
	}
	for _, date := range []struct {
		header string
		raw    *string
	}{
		{employee.HeaderAdmissionDate, item.AdmissionDate},
		{employee.HeaderDismissalDate, item.DismissalDate},
	} {
		if value := patch.NonBlank(date.raw); value != nil {
			if err := employee.AssignImportField(&row, date.header, *value); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}

type createLeaveRequest struct {
	Registration  string    `json:"matricula" validate:"required,max=13"`
	Description   string    `json:"descricao" validate:"required,max=50"`
	StartAt       *DateTime `json:"data_inicio" validate:"required"`
	EndAt         *DateTime `json:"data_final"`
	UnitCNPJ      *string   `json:"cnpj_unidade" validate:"omitempty,max=14"`
	SituationCode *string   `json:"codigo_situacao" validate:"omitempty,max=10"`
}

func (r createLeaveRequest) toInput() leave.CreateLeaveInput {
	in := leave.CreateLeaveInput{
		Registration:  r.Registration,
		Description:   r.Description,
		EndAt:         timeFromDateTime(r.EndAt),
		UnitCNPJ:      r.UnitCNPJ,
		SituationCode: r.SituationCode,
	}
	if r.StartAt != nil {
		in.StartAt = r.StartAt.Time
	}
	return in
}

type updateLeaveRequest struct {
	Registration  patch.Field[string]   `json:"matricula"`
	Description   patch.Field[string]   `json:"descricao"`
	StartAt       patch.Field[DateTime] `json:"data_inicio"`
	EndAt         patch.Field[DateTime] `json:"data_final"`
	UnitCNPJ      patch.Field[string]   `json:"cnpj_unidade"`
	SituationCode patch.Field[string]   `json:"codigo_situacao"`
}

func (r updateLeaveRequest) toInput(id int64) leave.UpdateLeaveInput {
	return leave.UpdateLeaveInput{
		ID:            id,
		Registration:  r.Registration,
		Description:   r.Description,
		StartAt:       dateTimeField(r.StartAt),
		EndAt:         dateTimeField(r.EndAt),
		UnitCNPJ:      r.UnitCNPJ,
		SituationCode: r.SituationCode,
	}
}

type importLeaveItem struct {
	Registration  *string `json:"matricula"`
	Description   *string `json:"descricao"`
	StartAt       *string `json:"data_inicio"`
	EndAt         *string `json:"data_final"`
	UnitCNPJ      *string `json:"cnpj_unidade"`
	SituationCode *string `json:"codigo_situacao"`
}

func decodeLeaveItem(raw json.RawMessage) (leave.ImportRow, error) {
	var item importLeaveItem
	if err := decodeItem(raw, &item); err != nil {
		return leave.ImportRow{}, err
	}

	row := leave.ImportRow{
		Registration:  item.Registration,
		Description:   item.Description,
		UnitCNPJ:      item.UnitCNPJ,
		SituationCode: item.SituationCode,
	}
	for _, date := range []struct {
		header string
		raw    *string
	}{
		{leave.HeaderStartAt, item.StartAt},
		{leave.HeaderEndAt, item.EndAt},
	} {
		if value := patch.NonBlank(date.raw); value != nil {
			if err := leave.AssignImportField(&row, date.header, *value); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}

// decodeItem は配列要素がオブジェクトでない場合や型が合わない場合に errInvalidRecord を返します。
func decodeItem(raw json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errInvalidRecord
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return errInvalidRecord
	}
	return nil
}

type employeeResponse struct {
	Registration  string  `json:"matricula"`
	Name          string  `json:"nome"`
	PIS           string  `json:"pis"`
	CPF           string  `json:"cpf"`
	AdmissionDate Date    `json:"data_admissao"`
	DismissalDate *Date   `json:"data_demissao"`
	Sector        *string `json:"nome_setor"`
	JobTitle      *string `json:"nome_cargo"`
	Department    *string `json:"nome_departamento"`
	Unit          string  `json:"nome_unidade"`
	Allocation    string  `json:"nome_lotacao"`
	Status        string  `json:"situacao"`
	UnitCNPJ      string  `json:"cnpj_unidade"`
	CTPS          *string `json:"ctps"`
	CTPSSeries    *string `json:"serie"`
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	return employeeResponse{
		Registration:  e.Registration,
		Name:          e.Name,
		PIS:           e.PIS,
		CPF:           e.CPF,
		AdmissionDate: Date{Time: e.AdmissionDate},
		DismissalDate: datePtr(e.DismissalDate),
		Sector:        e.Sector,
		JobTitle:      e.JobTitle,
		Department:    e.Department,
		Unit:          e.Unit,
		Allocation:    e.Allocation,
		Status:        e.Status,
		UnitCNPJ:      e.UnitCNPJ,
		CTPS:          e.CTPS,
		CTPSSeries:    e.CTPSSeries,
	}
}

type leaveResponse struct {
	ID            int64     `json:"id"`
	Registration  string    `json:"matricula"`
	Description   string    `json:"descricao"`
	StartAt       DateTime  `json:"data_inicio"`
	EndAt         *DateTime `json:"data_final"`
	UnitCNPJ      *string   `json:"cnpj_unidade"`
	SituationCode *string   `json:"codigo_situacao"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toLeaveResponse(r *leave.Record) leaveResponse {
	return leaveResponse{
		ID:            r.ID,
		Registration:  r.Registration,
		Description:   r.Description,
		StartAt:       DateTime{Time: r.StartAt},
		EndAt:         dateTimePtr(r.EndAt),
		UnitCNPJ:      r.UnitCNPJ,
		SituationCode: r.SituationCode,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type lineErrorResponse struct {
	Line    int    `json:"linha"`
	Message string `json:"erro"`
}

type importResponse struct {
	Total     int                 `json:"total"`
	Created   int                 `json:"criados"`
	Updated   int                 `json:"atualizados"`
	Succeeded int                 `json:"sucesso"`
	Failed    int                 `json:"erros"`
	Errors    []lineErrorResponse `json:"linhas_com_erro"`
}

func toImportResponse(result *batch.Result) importResponse {
	resp := importResponse{
		Total:     result.Total,
		Created:   result.Created,
		Updated:   result.Updated,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Errors:    make([]lineErrorResponse, 0, len(result.Errors)),
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, lineErrorResponse{Line: e.Line, Message: e.Message})
	}
	return resp
}

type errorResponse struct {
	Message string `json:"message"`
}
