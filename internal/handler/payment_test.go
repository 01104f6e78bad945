package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/school-portal/internal/access"
	"github.com/segyhp/school-portal/internal/cache"
	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/mocks"
	"github.com/segyhp/school-portal/internal/service"
)

var fixedNow = time.Date(2024, 10, 15, 9, 0, 0, 0, time.UTC)

type paymentMocks struct {
	templates    *mocks.MockPaymentPlanRepository
	plans        *mocks.MockStudentPaymentPlanRepository
	installments *mocks.MockInstallmentRepository
	payments     *mocks.MockPaymentRepository
	students     *mocks.MockStudentRepository
	tx           *mocks.Transactor
}

func newPaymentMocks() *paymentMocks {
	return &paymentMocks{
		templates:    &mocks.MockPaymentPlanRepository{},
		plans:        &mocks.MockStudentPaymentPlanRepository{},
		installments: &mocks.MockInstallmentRepository{},
		payments:     &mocks.MockPaymentRepository{},
		students:     &mocks.MockStudentRepository{},
		tx:           &mocks.Transactor{},
	}
}

func (m *paymentMocks) assertExpectations(t *testing.T) {
	m.templates.AssertExpectations(t)
	m.plans.AssertExpectations(t)
	m.installments.AssertExpectations(t)
	m.payments.AssertExpectations(t)
	m.students.AssertExpectations(t)
}

func (m *paymentMocks) server(policy access.Policy) http.Handler {
	opts := service.Options{DefaultPageSize: 20, MaxPageSize: 100, Clock: func() time.Time { return fixedNow }}
	h := NewPaymentHandler(
		service.NewPaymentPlanService(m.templates, opts),
		service.NewStudentPaymentPlanService(m.tx, m.templates, m.plans, m.installments, m.students, opts),
		service.NewPaymentInstallmentService(m.tx, m.installments, m.plans, m.payments, cache.Noop{}, opts),
		service.NewPaymentService(m.tx, m.payments, m.installments, m.plans, m.students, cache.Noop{}, opts),
		&stubPolicies{policy: policy},
	)
	return newTestServer(Routes{Payments: h})
}

func pendingInstallment() *domain.PaymentInstallment {
	return &domain.PaymentInstallment{
		ID:                   5,
		StudentPaymentPlanID: 3,
		InstallmentNumber:    2,
		Amount:               decimal.NewFromInt(1000),
		PaidAmount:           decimal.Zero,
		DueDate:              time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		Status:               domain.InstallmentStatusPending,
	}
}

func activePlan() *domain.StudentPaymentPlan {
	return &domain.StudentPaymentPlan{
		ID:              3,
		StudentID:       42,
		PaymentPlanID:   1,
		TotalAmount:     decimal.NewFromInt(2000),
		PaidAmount:      decimal.NewFromInt(1000),
		RemainingAmount: decimal.NewFromInt(1000),
		Status:          domain.PlanStatusActive,
		StartDate:       time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPaymentHandler_PayInstallment(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(*paymentMocks)
		expectedStatus int
		checkResponse  func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Success - Last installment completes the plan",
			requestBody: map[string]interface{}{"amount": "1000", "method": "Cash", "reference_number": "RCPT-1"},
			setupMocks: func(m *paymentMocks) {
				m.installments.On("GetByID", mock.Anything, int64(5)).Return(pendingInstallment(), nil)
				m.plans.On("GetByID", mock.Anything, int64(3)).Return(activePlan(), nil)
				m.installments.On("Update", mock.Anything, mock.AnythingOfType("*domain.PaymentInstallment")).Return(nil)
				m.installments.On("ListByPlan", mock.Anything, int64(3)).Return([]*domain.PaymentInstallment{
					{ID: 4, StudentPaymentPlanID: 3, InstallmentNumber: 1, Amount: decimal.NewFromInt(1000), PaidAmount: decimal.NewFromInt(1000), Status: domain.InstallmentStatusPaid},
					pendingInstallment(),
				}, nil)
				m.plans.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.StudentPaymentPlan) bool {
					return p.Status == domain.PlanStatusCompleted && p.RemainingAmount.IsZero()
				})).Return(nil)
				m.payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
					return p.StudentID == 42 && p.Status == domain.PaymentStatusCompleted && p.ReferenceNumber == "RCPT-1"
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				env := decodeEnvelope(t, rec)
				assert.True(t, env.Success)

				var result domain.PayInstallmentResponse
				require.NoError(t, json.Unmarshal(env.Data, &result))
				assert.Equal(t, domain.InstallmentStatusPaid, result.Installment.Status)
				assert.Equal(t, domain.PlanStatusCompleted, result.Plan.Status)
				assert.True(t, result.Payment.Amount.Equal(decimal.NewFromInt(1000)))
			},
		},
		{
			name:           "Failure - Zero amount",
			requestBody:    map[string]interface{}{"amount": "0", "method": "Cash"},
			setupMocks:     func(*paymentMocks) {},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				env := decodeEnvelope(t, rec)
				assert.False(t, env.Success)
				assert.Contains(t, env.Message, "amount")
			},
		},
		{
			name:           "Failure - Amount finer than cents",
			requestBody:    map[string]interface{}{"amount": "0.004", "method": "Cash"},
			setupMocks:     func(*paymentMocks) {},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "INVALID_PAYMENT_AMOUNT", decodeEnvelope(t, rec).Code)
			},
		},
		{
			name:           "Failure - Unknown payment method",
			requestBody:    map[string]interface{}{"amount": "100", "method": "Barter"},
			setupMocks:     func(*paymentMocks) {},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, decodeEnvelope(t, rec).Message, "method")
			},
		},
		{
			name:           "Failure - Malformed JSON",
			requestBody:    `{"amount": `,
			setupMocks:     func(*paymentMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Failure - Installment not found",
			requestBody: map[string]interface{}{"amount": "100", "method": "Cash"},
			setupMocks: func(m *paymentMocks) {
				m.installments.On("GetByID", mock.Anything, int64(5)).Return(nil, sql.ErrNoRows)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Failure - Already paid",
			requestBody: map[string]interface{}{"amount": "100", "method": "Cash"},
			setupMocks: func(m *paymentMocks) {
				inst := pendingInstallment()
				inst.Status = domain.InstallmentStatusPaid
				m.installments.On("GetByID", mock.Anything, int64(5)).Return(inst, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:        "Failure - Database error is not leaked",
			requestBody: map[string]interface{}{"amount": "100", "method": "Cash"},
			setupMocks: func(m *paymentMocks) {
				m.installments.On("GetByID", mock.Anything, int64(5)).Return(nil, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.NotContains(t, rec.Body.String(), "10.0.0.5")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newPaymentMocks()
			tt.setupMocks(m)
			srv := m.server(access.Admin())

			rec := doRequest(srv, http.MethodPost, "/api/v1/installments/5/pay", jsonBody(t, tt.requestBody), "admin-1")

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.checkResponse != nil {
				tt.checkResponse(t, rec)
			}
			m.assertExpectations(t)
		})
	}
}

func TestPaymentHandler_GetStudentPlan_Access(t *testing.T) {
	tests := []struct {
		name           string
		policy         access.Policy
		expectedStatus int
	}{
		{name: "Success - Admin", policy: access.Admin(), expectedStatus: http.StatusOK},
		{name: "Success - Parent of the student", policy: access.WithIDs("parent", []int64{42}), expectedStatus: http.StatusOK},
		{name: "Failure - Parent of another student", policy: access.WithIDs("parent", []int64{7}), expectedStatus: http.StatusForbidden},
		{name: "Failure - Denied", policy: access.Denied(), expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newPaymentMocks()
			m.plans.On("GetByID", mock.Anything, int64(3)).Return(activePlan(), nil)
			m.installments.On("ListByPlan", mock.Anything, int64(3)).Return([]*domain.PaymentInstallment{pendingInstallment()}, nil)
			m.templates.On("GetByID", mock.Anything, int64(1)).Return(&domain.PaymentPlan{ID: 1, Name: "Yıllık 2 Taksit"}, nil)

			rec := doRequest(m.server(tt.policy), http.MethodGet, "/api/v1/student-payment-plans/3", nil, "user-9")

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			env := decodeEnvelope(t, rec)
			if tt.expectedStatus == http.StatusOK {
				var plan domain.StudentPaymentPlan
				require.NoError(t, json.Unmarshal(env.Data, &plan))
				assert.Equal(t, "Yıllık 2 Taksit", plan.PlanName)
				assert.Len(t, plan.Installments, 1)
			} else {
				assert.Equal(t, "ACCESS_DENIED", env.Code)
			}
		})
	}
}

func TestPaymentHandler_ListPayments_Scope(t *testing.T) {
	t.Run("Failure - Restricted caller must name a student", func(t *testing.T) {
		m := newPaymentMocks()
		rec := doRequest(m.server(access.WithIDs("advisor", []int64{42})), http.MethodGet, "/api/v1/payments", nil, "teacher-1")

		assert.Equal(t, http.StatusForbidden, rec.Code)
		m.assertExpectations(t)
	})

	t.Run("Success - Restricted caller with a visible student", func(t *testing.T) {
		m := newPaymentMocks()
		m.payments.On("List", mock.Anything, mock.MatchedBy(func(f domain.PaymentFilter) bool {
			return f.StudentID != nil && *f.StudentID == 42 && f.Page == 2 && f.PageSize == 5
		})).Return([]*domain.Payment{{ID: 11, StudentID: 42, Amount: decimal.NewFromInt(250)}}, 6, nil)

		rec := doRequest(m.server(access.WithIDs("advisor", []int64{42})), http.MethodGet, "/api/v1/payments?student_id=42&page=2&page_size=5", nil, "teacher-1")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Meta)
		assert.Equal(t, 2, env.Meta.Page)
		assert.Equal(t, 5, env.Meta.PageSize)
		assert.Equal(t, 6, env.Meta.TotalCount)
		assert.Equal(t, 2, env.Meta.TotalPages)

		var items []domain.Payment
		require.NoError(t, json.Unmarshal(env.Data, &items))
		assert.Len(t, items, 1)
		m.assertExpectations(t)
	})

	t.Run("Failure - Bad date filter", func(t *testing.T) {
		m := newPaymentMocks()
		rec := doRequest(m.server(access.Admin()), http.MethodGet, "/api/v1/payments?from=yesterday", nil, "admin-1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPaymentHandler_ListPaymentPlans_Paging(t *testing.T) {
	m := newPaymentMocks()
	m.templates.On("List", mock.Anything, mock.MatchedBy(func(f domain.PaymentPlanFilter) bool {
		return f.Page == 1 && f.PageSize == 100
	})).Return([]*domain.PaymentPlan{{ID: 1, Name: "Peşin"}}, 1, nil)

	rec := doRequest(m.server(access.Admin()), http.MethodGet, "/api/v1/payment-plans?page_size=500", nil, "admin-1")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 100, env.Meta.PageSize)
	assert.Equal(t, 1, env.Meta.TotalPages)
	m.assertExpectations(t)
}

func TestPaymentHandler_Unauthenticated(t *testing.T) {
	m := newPaymentMocks()
	rec := doRequest(m.server(access.Admin()), http.MethodGet, "/api/v1/payment-plans", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func overdueRow(id, studentID int64, status string) *domain.OverdueInstallment {
	inst := pendingInstallment()
	inst.ID = id
	inst.Status = status
	return &domain.OverdueInstallment{PaymentInstallment: *inst, StudentID: studentID}
}

func TestPaymentHandler_GetOverdue_Access(t *testing.T) {
	tests := []struct {
		name           string
		policy         access.Policy
		setupMocks     func(*paymentMocks)
		expectedStatus int
	}{
		{
			name:   "Success - Admin sees every student",
			policy: access.Admin(),
			setupMocks: func(m *paymentMocks) {
				m.installments.On("ListPendingDueBefore", mock.Anything, mock.Anything).Return([]*domain.OverdueInstallment{}, nil)
				m.installments.On("ListByStatus", mock.Anything, domain.InstallmentStatusOverdue).
					Return([]*domain.OverdueInstallment{overdueRow(5, 99, domain.InstallmentStatusOverdue)}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Failure - Parent cannot list or trigger the sweep",
			policy:         access.WithIDs(access.PolicyParent, []int64{5}),
			setupMocks:     func(*paymentMocks) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Failure - Advisor",
			policy:         access.WithIDs(access.PolicyAdvisor, []int64{99}),
			setupMocks:     func(*paymentMocks) {},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newPaymentMocks()
			tt.setupMocks(m)

			rec := doRequest(m.server(tt.policy), http.MethodGet, "/api/v1/installments/overdue", nil, "user-1")

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedStatus == http.StatusForbidden {
				assert.NotContains(t, rec.Body.String(), `"student_id"`)
				assert.Zero(t, m.tx.Calls)
			}
			m.assertExpectations(t)
		})
	}
}

func TestPaymentHandler_GetUpcoming_Access(t *testing.T) {
	rows := []*domain.OverdueInstallment{
		overdueRow(5, 99, domain.InstallmentStatusPending),
		overdueRow(6, 42, domain.InstallmentStatusPending),
	}

	tests := []struct {
		name        string
		policy      access.Policy
		expectedIDs []int64
	}{
		{name: "Success - Admin sees every student", policy: access.Admin(), expectedIDs: []int64{5, 6}},
		{name: "Success - Parent sees only linked students", policy: access.WithIDs(access.PolicyParent, []int64{42}), expectedIDs: []int64{6}},
		{name: "Success - Parent of nobody sees nothing", policy: access.WithIDs(access.PolicyParent, []int64{5}), expectedIDs: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newPaymentMocks()
			m.installments.On("ListDueBetween", mock.Anything, mock.Anything, mock.Anything).Return(rows, nil)

			rec := doRequest(m.server(tt.policy), http.MethodGet, "/api/v1/installments/upcoming?days=30", nil, "user-1")

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var items []domain.OverdueInstallment
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &items))
			ids := []int64{}
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
			m.assertExpectations(t)
		})
	}
}
