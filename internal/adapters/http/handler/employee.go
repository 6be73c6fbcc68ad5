package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
	"github.com/ogurasousui/orbite-rh-api/internal/core/employee"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/metrics"
)

// EmployeeEntity は colaboradores の取り込みメトリクスのラベルです。
const EmployeeEntity = "colaborador"

// EmployeeHandler は /colaboradores の HTTP 実装です。
type EmployeeHandler struct {
	svc     employee.UseCase
	errs    errorMapper
	imports importResponder
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc employee.UseCase, m *metrics.Metrics, notFoundStatus int) *EmployeeHandler {
	errs := newErrorMapper(notFoundStatus)
	return &EmployeeHandler{
		svc:     svc,
		errs:    errs,
		imports: importResponder{entity: EmployeeEntity, metrics: m, errs: errs},
	}
}

// Register はルートを登録します。
func (h *EmployeeHandler) Register(r *mux.Router) {
	r.HandleFunc("/colaboradores", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/colaboradores/import/csv", h.ImportText).Methods(http.MethodPost)
	r.HandleFunc("/colaboradores/import/json", h.ImportJSON).Methods(http.MethodPost)
	r.HandleFunc("/colaboradores/import/xlsx", h.ImportXLSX).Methods(http.MethodPost)
	r.HandleFunc("/colaboradores", h.List).Methods(http.MethodGet)
	r.HandleFunc("/colaboradores/{matricula}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/colaboradores/{matricula}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/colaboradores/{matricula}", h.Delete).Methods(http.MethodDelete)
}

// Create は従業員を作成します。
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := decodeBody(r, &req, employee.ErrInvalidPayload); err != nil {
		h.errs.write(w, r, err)
		return
	}

	created, err := h.svc.CreateEmployee(r.Context(), req.toInput())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toEmployeeResponse(created))
}

// List は全従業員を返します。
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.svc.ListEmployees(r.Context())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	resp := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		resp = append(resp, toEmployeeResponse(e))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// Get は matrícula で従業員を返します。
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.GetEmployee(r.Context(), employee.GetEmployeeInput{Registration: mux.Vars(r)["matricula"]})
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEmployeeResponse(found))
}

// Update は本文に含まれる項目だけを反映します。
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateEmployeeRequest
	if err := decodeBody(r, &req, employee.ErrInvalidPayload); err != nil {
		h.errs.write(w, r, err)
		return
	}

	updated, err := h.svc.UpdateEmployee(r.Context(), req.toInput(mux.Vars(r)["matricula"]))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEmployeeResponse(updated))
}

// Delete は従業員を削除します。
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEmployee(r.Context(), employee.DeleteEmployeeInput{Registration: mux.Vars(r)["matricula"]}); err != nil {
		h.errs.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportText はパイプ区切りテキストを取り込みます。
func (h *EmployeeHandler) ImportText(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	result, err := h.svc.ImportEmployeesText(r.Context(), string(body))
	h.imports.respond(w, r, sourceText, result, err)
}

// ImportJSON は JSON 配列を取り込みます。
func (h *EmployeeHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	rows, err := batch.DecodeList(body, employee.ErrInvalidList, decodeEmployeeItem)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	result, err := h.svc.ImportEmployees(r.Context(), rows)
	h.imports.respond(w, r, sourceJSON, result, err)
}

// ImportXLSX はワークブックの最初のシートを取り込みます。
func (h *EmployeeHandler) ImportXLSX(w http.ResponseWriter, r *http.Request) {
	records, err := readWorkbook(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	result, err := h.svc.ImportEmployeesTable(r.Context(), records)
	h.imports.respond(w, r, sourceXLSX, result, err)
}
