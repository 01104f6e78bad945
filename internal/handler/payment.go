package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/service"
	"github.com/segyhp/school-portal/pkg/response"
)

// PaymentHandler serves payment plan templates, student plans, installments
// and the payment ledger.
type PaymentHandler struct {
	base
	plans        *service.PaymentPlanService
	studentPlans *service.StudentPaymentPlanService
	installments *service.PaymentInstallmentService
	payments     *service.PaymentService
}

func NewPaymentHandler(
	plans *service.PaymentPlanService,
	studentPlans *service.StudentPaymentPlanService,
	installments *service.PaymentInstallmentService,
	payments *service.PaymentService,
	policies PolicyResolver,
) *PaymentHandler {
	return &PaymentHandler{
		base:         newBase(policies),
		plans:        plans,
		studentPlans: studentPlans,
		installments: installments,
		payments:     payments,
	}
}

func (h *PaymentHandler) Register(r *mux.Router) {
	r.HandleFunc("/payment-plans", h.ListPlans).Methods(http.MethodGet)
	r.HandleFunc("/payment-plans", h.CreatePlan).Methods(http.MethodPost)
	r.HandleFunc("/payment-plans/{id}", h.GetPlan).Methods(http.MethodGet)
	r.HandleFunc("/payment-plans/{id}", h.UpdatePlan).Methods(http.MethodPut)
	r.HandleFunc("/payment-plans/{id}", h.DeletePlan).Methods(http.MethodDelete)
	r.HandleFunc("/payment-plans/{id}/activate", h.ActivatePlan).Methods(http.MethodPost)
	r.HandleFunc("/payment-plans/{id}/deactivate", h.DeactivatePlan).Methods(http.MethodPost)

	r.HandleFunc("/student-payment-plans", h.ListStudentPlans).Methods(http.MethodGet)
	r.HandleFunc("/student-payment-plans", h.CreateStudentPlan).Methods(http.MethodPost)
	r.HandleFunc("/student-payment-plans/{id}", h.GetStudentPlan).Methods(http.MethodGet)
	r.HandleFunc("/student-payment-plans/{id}/installments", h.GetStudentPlanInstallments).Methods(http.MethodGet)
	r.HandleFunc("/student-payment-plans/{id}/cancel", h.CancelStudentPlan).Methods(http.MethodPost)
	r.HandleFunc("/student-payment-plans/{id}/complete", h.CompleteStudentPlan).Methods(http.MethodPost)
	r.HandleFunc("/students/{studentId}/payment-plans", h.ListPlansByStudent).Methods(http.MethodGet)

	r.HandleFunc("/installments/overdue", h.GetOverdue).Methods(http.MethodGet)
	r.HandleFunc("/installments/upcoming", h.GetUpcoming).Methods(http.MethodGet)
	r.HandleFunc("/installments/{id}", h.GetInstallment).Methods(http.MethodGet)
	r.HandleFunc("/installments/{id}/pay", h.PayInstallment).Methods(http.MethodPost)

	r.HandleFunc("/payments", h.ListPayments).Methods(http.MethodGet)
	r.HandleFunc("/payments", h.CreatePayment).Methods(http.MethodPost)
	r.HandleFunc("/payments/statistics", h.GetStatistics).Methods(http.MethodGet)
	r.HandleFunc("/payments/{id}", h.GetPayment).Methods(http.MethodGet)
	r.HandleFunc("/payments/{id}/process", h.ProcessPayment).Methods(http.MethodPost)
	r.HandleFunc("/payments/{id}/cancel", h.CancelPayment).Methods(http.MethodPost)
	r.HandleFunc("/students/{studentId}/payments", h.ListPaymentsByStudent).Methods(http.MethodGet)
	r.HandleFunc("/students/{studentId}/payment-statistics", h.GetStudentStatistics).Methods(http.MethodGet)
}

// Payment plan templates

func (h *PaymentHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentPlanRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.plans.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, plan)
}

func (h *PaymentHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.plans.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, plan)
}

func (h *PaymentHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.PaymentPlanRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.plans.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, plan)
}

func (h *PaymentHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.plans.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *PaymentHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.plans.List(r.Context(), domain.PaymentPlanFilter{
		Search:      r.URL.Query().Get("search"),
		ActiveOnly:  queryBool(r, "active_only"),
		PageRequest: page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *PaymentHandler) ActivatePlan(w http.ResponseWriter, r *http.Request) {
	h.setPlanActive(w, r, true)
}

func (h *PaymentHandler) DeactivatePlan(w http.ResponseWriter, r *http.Request) {
	h.setPlanActive(w, r, false)
}

func (h *PaymentHandler) setPlanActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var plan *domain.PaymentPlan
	if active {
		plan, err = h.plans.Activate(r.Context(), id)
	} else {
		plan, err = h.plans.Deactivate(r.Context(), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, plan)
}

// Student payment plans

func (h *PaymentHandler) CreateStudentPlan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateStudentPaymentPlanRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.studentPlans.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, plan)
}

func (h *PaymentHandler) GetStudentPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.visiblePlan(w, r)
	if !ok {
		return
	}
	response.Success(w, plan)
}

func (h *PaymentHandler) GetStudentPlanInstallments(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.visiblePlan(w, r)
	if !ok {
		return
	}
	installments, err := h.studentPlans.GetInstallments(r.Context(), plan.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, installments)
}

// visiblePlan loads the plan named by the path and checks the caller may see
// its student. It writes the error response itself.
func (h *PaymentHandler) visiblePlan(w http.ResponseWriter, r *http.Request) (*domain.StudentPaymentPlan, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	plan, err := h.studentPlans.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if err := h.authorize(r.Context(), plan.StudentID); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return plan, true
}

func (h *PaymentHandler) ListStudentPlans(w http.ResponseWriter, r *http.Request) {
	filter := domain.StudentPaymentPlanFilter{Status: r.URL.Query().Get("status")}
	var err error
	if filter.StudentID, err = queryInt64(r, "student_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.PaymentPlanID, err = queryInt64(r, "payment_plan_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.PageRequest, err = pageParams(r); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.scope(r.Context(), filter.StudentID); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.studentPlans.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *PaymentHandler) ListPlansByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, page, ok := h.studentPage(w, r)
	if !ok {
		return
	}
	result, err := h.studentPlans.ListByStudent(r.Context(), studentID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *PaymentHandler) CancelStudentPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.CancelStudentPaymentPlanRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.studentPlans.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, plan)
}

func (h *PaymentHandler) CompleteStudentPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.studentPlans.Complete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, plan)
}

// Installments

func (h *PaymentHandler) GetInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	inst, err := h.installments.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.studentPlans.GetByID(r.Context(), inst.StudentPaymentPlanID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorize(r.Context(), plan.StudentID); err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, inst)
}

func (h *PaymentHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.PayInstallmentRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.installments.PayInstallment(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, result)
}

// GetOverdue also flips due Pending installments for every student, so it is
// limited to unrestricted callers.
func (h *PaymentHandler) GetOverdue(w http.ResponseWriter, r *http.Request) {
	if err := h.scope(r.Context(), nil); err != nil {
		writeError(w, r, err)
		return
	}
	overdue, err := h.installments.GetOverdue(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, overdue)
}

func (h *PaymentHandler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		writeError(w, r, err)
		return
	}
	upcoming, err := h.installments.GetUpcoming(r.Context(), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	upcoming, err = h.visibleOnly(r.Context(), upcoming)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, upcoming)
}

// Payments

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePaymentRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.payments.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, payment)
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.payments.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorize(r.Context(), payment.StudentID); err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, payment)
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.PaymentFilter{Status: q.Get("status"), Method: q.Get("method")}
	var err error
	if filter.StudentID, err = queryInt64(r, "student_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.InstallmentID, err = queryInt64(r, "installment_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.From, err = queryDate(r, "from"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.PageRequest, err = pageParams(r); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.scope(r.Context(), filter.StudentID); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.payments.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *PaymentHandler) ListPaymentsByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, page, ok := h.studentPage(w, r)
	if !ok {
		return
	}
	result, err := h.payments.GetByStudent(r.Context(), studentID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.payments.ProcessPayment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, payment)
}

func (h *PaymentHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reasonRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.payments.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, payment)
}

func (h *PaymentHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	if err := h.scope(r.Context(), nil); err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := h.payments.GetStatistics(r.Context(), nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, stats)
}

func (h *PaymentHandler) GetStudentStatistics(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorize(r.Context(), studentID); err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := h.payments.GetStatistics(r.Context(), &studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, stats)
}
