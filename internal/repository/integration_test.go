//go:build integration

package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/school-portal/internal/config"
	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
)

const testDBName = "school_portal_test"

var testDB *sqlx.DB

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	teardown()
	os.Exit(code)
}

func setup() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Connect to postgres database to create test database
	cfg.Database.URL = ""
	cfg.Database.Name = "postgres"
	adminDB, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to postgres database: %v", err))
	}
	defer adminDB.Close()

	adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", testDBName))
	if _, err := adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", testDBName)); err != nil {
		panic(fmt.Sprintf("Failed to create test database: %v", err))
	}

	cfg.Database.Name = testDBName
	testDB, err = sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}

	if err := repository.Migrate(context.Background(), testDB); err != nil {
		panic(fmt.Sprintf("Failed to initialize database schema: %v", err))
	}
}

func teardown() {
	if testDB != nil {
		testDB.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		return
	}
	cfg.Database.URL = ""
	cfg.Database.Name = "postgres"
	adminDB, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return
	}
	defer adminDB.Close()

	adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", testDBName))
}

func cleanupTestData(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(`TRUNCATE payments, payment_installments, student_payment_plans, payment_plans, students RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func seedStudent(t *testing.T, number string) int64 {
	t.Helper()
	var id int64
	err := testDB.QueryRow(
		`INSERT INTO students (student_number, first_name, last_name) VALUES ($1, 'Ada', 'Yılmaz') RETURNING id`,
		number,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedTemplate(t *testing.T, ctx context.Context, name string) *domain.PaymentPlan {
	t.Helper()
	plan := &domain.PaymentPlan{
		Name:                    name,
		InstallmentCount:        3,
		DaysBetweenInstallments: 30,
		DownPaymentDiscount:     decimal.Zero,
		IsActive:                true,
	}
	plan.Touch(time.Now())
	require.NoError(t, repository.NewPaymentPlanRepository(testDB).Create(ctx, plan))
	return plan
}

func TestPaymentPlanRepository_SoftDelete(t *testing.T) {
	cleanupTestData(t)
	ctx := context.Background()
	repo := repository.NewPaymentPlanRepository(testDB)

	kept := seedTemplate(t, ctx, "Peşin")
	removed := seedTemplate(t, ctx, "Üç Taksit")

	require.NoError(t, repo.Delete(ctx, removed.ID))

	_, err := repo.GetByID(ctx, removed.ID)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	err = repo.Delete(ctx, removed.ID)
	assert.True(t, errors.Is(err, sql.ErrNoRows), "deleting twice reports not found")

	plans, total, err := repo.List(ctx, domain.PaymentPlanFilter{PageRequest: domain.PageRequest{Page: 1, PageSize: 10}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, plans, 1)
	assert.Equal(t, kept.ID, plans[0].ID)

	var flagged bool
	require.NoError(t, testDB.Get(&flagged, `SELECT is_deleted FROM payment_plans WHERE id = $1`, removed.ID))
	assert.True(t, flagged, "row is kept and flagged")
}

func TestPaymentPlanRepository_ListSearchAndPaging(t *testing.T) {
	cleanupTestData(t)
	ctx := context.Background()
	repo := repository.NewPaymentPlanRepository(testDB)

	for _, name := range []string{"Aylık A", "Aylık B", "Aylık C", "Peşin"} {
		seedTemplate(t, ctx, name)
	}

	plans, total, err := repo.List(ctx, domain.PaymentPlanFilter{
		Search:      "aylık",
		PageRequest: domain.PageRequest{Page: 2, PageSize: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, plans, 1)
	assert.Equal(t, "Aylık C", plans[0].Name)
}

func TestInstallmentRepository_PlanLifecycle(t *testing.T) {
	cleanupTestData(t)
	ctx := context.Background()

	studentID := seedStudent(t, "2024-001")
	template := seedTemplate(t, ctx, "Üç Taksit")
	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	plans := repository.NewStudentPaymentPlanRepository(testDB)
	installments := repository.NewInstallmentRepository(testDB)

	plan := domain.NewStudentPaymentPlan(studentID, template.ID, decimal.NewFromInt(3000), start, "")
	plan.Touch(time.Now())
	require.NoError(t, plans.Create(ctx, plan))
	require.NotZero(t, plan.ID)

	items := domain.GenerateInstallments(plan.ID, template, plan.TotalAmount, start, nil)
	for _, item := range items {
		item.Touch(time.Now())
	}
	require.NoError(t, installments.CreateBatch(ctx, items))

	stored, err := installments.ListByPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, inst := range stored {
		assert.Equal(t, i+1, inst.InstallmentNumber)
		assert.True(t, inst.Amount.Equal(decimal.NewFromInt(1000)))
	}

	overdue, err := installments.ListPendingDueBefore(ctx, start.AddDate(0, 0, 31))
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, studentID, overdue[0].StudentID)

	require.NoError(t, installments.UpdateStatus(ctx, []int64{overdue[0].ID, overdue[1].ID}, domain.InstallmentStatusOverdue))

	flagged, err := installments.ListByStatus(ctx, domain.InstallmentStatusOverdue)
	require.NoError(t, err)
	assert.Len(t, flagged, 2)
}

func TestTransactor_RollsBack(t *testing.T) {
	cleanupTestData(t)
	ctx := context.Background()

	studentID := seedStudent(t, "2024-002")
	payments := repository.NewPaymentRepository(testDB)
	tx := repository.NewTransactor(testDB)

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		p := &domain.Payment{
			StudentID:   studentID,
			Amount:      decimal.NewFromInt(500),
			PaymentDate: time.Now(),
			Method:      domain.PaymentMethodCash,
			Status:      domain.PaymentStatusPending,
		}
		p.Touch(time.Now())
		if err := payments.Create(ctx, p); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, total, err := payments.List(ctx, domain.PaymentFilter{StudentID: &studentID, PageRequest: domain.PageRequest{Page: 1, PageSize: 10}})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPaymentRepository_Filters(t *testing.T) {
	cleanupTestData(t)
	ctx := context.Background()

	alice := seedStudent(t, "2024-003")
	bob := seedStudent(t, "2024-004")
	payments := repository.NewPaymentRepository(testDB)

	day := time.Date(2024, 10, 1, 10, 0, 0, 0, time.UTC)
	for i, p := range []*domain.Payment{
		{StudentID: alice, Amount: decimal.NewFromInt(100), PaymentDate: day, Method: domain.PaymentMethodCash, Status: domain.PaymentStatusCompleted},
		{StudentID: alice, Amount: decimal.NewFromInt(200), PaymentDate: day.AddDate(0, 0, 5), Method: domain.PaymentMethodBankTransfer, Status: domain.PaymentStatusPending},
		{StudentID: bob, Amount: decimal.NewFromInt(300), PaymentDate: day, Method: domain.PaymentMethodCash, Status: domain.PaymentStatusCompleted},
	} {
		p.ReferenceNumber = fmt.Sprintf("REF-%d", i)
		p.Touch(time.Now())
		require.NoError(t, payments.Create(ctx, p))
	}

	from := day.AddDate(0, 0, 1)
	got, err := payments.ListAll(ctx, domain.PaymentFilter{StudentID: &alice, From: &from})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "REF-1", got[0].ReferenceNumber)

	got, err = payments.ListAll(ctx, domain.PaymentFilter{Method: domain.PaymentMethodCash, Status: domain.PaymentStatusCompleted})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestInstallmentRepository_CancelledPlanStillSwept(t *testing.T) {
	cleanupTestData(t)
	ctx := context.Background()

	studentID := seedStudent(t, "2024-005")
	template := seedTemplate(t, ctx, "İptal")
	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	plans := repository.NewStudentPaymentPlanRepository(testDB)
	installments := repository.NewInstallmentRepository(testDB)

	plan := domain.NewStudentPaymentPlan(studentID, template.ID, decimal.NewFromInt(3000), start, "")
	plan.Touch(time.Now())
	require.NoError(t, plans.Create(ctx, plan))

	items := domain.GenerateInstallments(plan.ID, template, plan.TotalAmount, start, nil)
	for _, item := range items {
		item.Touch(time.Now())
	}
	require.NoError(t, installments.CreateBatch(ctx, items))

	require.NoError(t, plan.Cancel("ayrıldı", time.Now()))
	require.NoError(t, plans.Update(ctx, plan))

	overdue, err := installments.ListPendingDueBefore(ctx, start.AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Len(t, overdue, 2, "pending installments of a cancelled plan are still due")

	upcoming, err := installments.ListDueBetween(ctx, start, start.AddDate(0, 0, 90))
	require.NoError(t, err)
	assert.Empty(t, upcoming, "cancelled plans get no reminders")
}
