package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
	"github.com/ogurasousui/orbite-rh-api/internal/core/leave"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/metrics"
)

// LeaveEntity は afastamentos の取り込みメトリクスのラベルです。
const LeaveEntity = "afastamento"

// LeaveHandler は /afastamentos の HTTP 実装です。
type LeaveHandler struct {
	svc     leave.UseCase
	errs    errorMapper
	imports importResponder
}

// NewLeaveHandler は LeaveHandler を生成します。
func NewLeaveHandler(svc leave.UseCase, m *metrics.Metrics, notFoundStatus int) *LeaveHandler {
	errs := newErrorMapper(notFoundStatus)
	return &LeaveHandler{
		svc:     svc,
		errs:    errs,
		imports: importResponder{entity: LeaveEntity, metrics: m, errs: errs},
	}
}

// Register はルートを登録します。
func (h *LeaveHandler) Register(r *mux.Router) {
	r.HandleFunc("/afastamentos", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/afastamentos/import/csv", h.ImportText).Methods(http.MethodPost)
	r.HandleFunc("/afastamentos/import/json", h.ImportJSON).Methods(http.MethodPost)
	r.HandleFunc("/afastamentos/import/xlsx", h.ImportXLSX).Methods(http.MethodPost)
	r.HandleFunc("/afastamentos", h.List).Methods(http.MethodGet)
	r.HandleFunc("/afastamentos/matricula/{matricula}", h.ListByRegistration).Methods(http.MethodGet)
	r.HandleFunc("/afastamentos/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/afastamentos/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/afastamentos/{id}", h.Delete).Methods(http.MethodDelete)
}

// leaveID は経路の id を解釈します。数値でない id は存在しない afastamento として扱います。
func leaveID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, leave.ErrLeaveNotFound
	}
	return id, nil
}

// Create は afastamento を作成します。
func (h *LeaveHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLeaveRequest
	if err := decodeBody(r, &req, leave.ErrInvalidPayload); err != nil {
		h.errs.write(w, r, err)
		return
	}

	created, err := h.svc.CreateLeave(r.Context(), req.toInput())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toLeaveResponse(created))
}

// List は全 afastamento を返します。
func (h *LeaveHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListLeaves(r.Context())
	h.writeList(w, r, records, err)
}

// ListByRegistration は matrícula に紐づく afastamento を返します。
func (h *LeaveHandler) ListByRegistration(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListLeavesByRegistration(r.Context(), mux.Vars(r)["matricula"])
	h.writeList(w, r, records, err)
}

func (h *LeaveHandler) writeList(w http.ResponseWriter, r *http.Request, records []*leave.Record, err error) {
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	resp := make([]leaveResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toLeaveResponse(rec))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// Get は id で afastamento を返します。
func (h *LeaveHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := leaveID(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	found, err := h.svc.GetLeave(r.Context(), leave.GetLeaveInput{ID: id})
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toLeaveResponse(found))
}

// Update は本文に含まれる項目だけを反映します。
func (h *LeaveHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := leaveID(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	var req updateLeaveRequest
	if err := decodeBody(r, &req, leave.ErrInvalidPayload); err != nil {
		h.errs.write(w, r, err)
		return
	}

	updated, err := h.svc.UpdateLeave(r.Context(), req.toInput(id))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toLeaveResponse(updated))
}

// Delete は afastamento を削除します。
func (h *LeaveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := leaveID(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	if err := h.svc.DeleteLeave(r.Context(), leave.DeleteLeaveInput{ID: id}); err != nil {
		h.errs.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportText はパイプ区切りテキストを取り込みます。
func (h *LeaveHandler) ImportText(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	result, err := h.svc.ImportLeavesText(r.Context(), string(body))
	h.imports.respond(w, r, sourceText, result, err)
}

// ImportJSON は JSON 配列を取り込みます。
func (h *LeaveHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	rows, err := batch.DecodeList(body, leave.ErrInvalidList, decodeLeaveItem)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	result, err := h.svc.ImportLeaves(r.Context(), rows)
	h.imports.respond(w, r, sourceJSON, result, err)
}

// ImportXLSX はワークブックの最初のシートを取り込みます。
func (h *LeaveHandler) ImportXLSX(w http.ResponseWriter, r *http.Request) {
	records, err := readWorkbook(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	result, err := h.svc.ImportLeavesTable(r.Context(), records)
	h.imports.respond(w, r, sourceXLSX, result, err)
}
