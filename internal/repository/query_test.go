package repository

import (
	"testing"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestTable_SoftDeletePredicate(t *testing.T) {
	soft := table{name: "payments", columns: []string{"amount", "created_at", "updated_at", "is_deleted"}, softDelete: true}
	hard := table{name: "classrooms", columns: []string{"name", "created_at", "updated_at"}}

	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "get on soft-deletable table",
			query:    soft.getQuery(),
			expected: "SELECT id, amount, created_at, updated_at, is_deleted FROM payments WHERE is_deleted = FALSE AND id = $1",
		},
		{
			name:     "get on hard-deletable table",
			query:    hard.getQuery(),
			expected: "SELECT id, name, created_at, updated_at FROM classrooms WHERE id = $1",
		},
		{
			name:     "soft delete flags the row",
			query:    soft.deleteQuery(),
			expected: "UPDATE payments SET is_deleted = TRUE, updated_at = NOW() WHERE is_deleted = FALSE AND id = $1",
		},
		{
			name:     "hard delete removes the row",
			query:    hard.deleteQuery(),
			expected: "DELETE FROM classrooms WHERE id = $1",
		},
		{
			name:     "update skips created_at and is_deleted",
			query:    soft.updateQuery(),
			expected: "UPDATE payments SET amount = :amount, updated_at = :updated_at WHERE is_deleted = FALSE AND id = :id",
		},
		{
			name:     "insert leaves is_deleted to its default",
			query:    soft.insertQuery(),
			expected: "INSERT INTO payments (amount, created_at, updated_at) VALUES (:amount, :created_at, :updated_at) RETURNING id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.query)
		})
	}
}

func TestTable_Build(t *testing.T) {
	studentID := int64(5)
	filter := domain.PaymentFilter{StudentID: &studentID, Status: domain.PaymentStatusCompleted}
	filter.PageRequest = domain.PageRequest{Page: 3, PageSize: 10}

	selectSQL, countSQL, args := payments.build(paymentQuery(filter), filter.PageRequest)

	assert.Equal(t,
		"SELECT COUNT(*) FROM payments WHERE is_deleted = FALSE AND student_id = $1 AND status = $2",
		countSQL)
	assert.Contains(t, selectSQL, "WHERE is_deleted = FALSE AND student_id = $1 AND status = $2")
	assert.Contains(t, selectSQL, "ORDER BY payment_date DESC, id DESC LIMIT $3 OFFSET $4")
	assert.Equal(t, []interface{}{int64(5), domain.PaymentStatusCompleted, 10, 20}, args)
}

func TestListQuery_Search(t *testing.T) {
	q := newListQuery("").search("  ali ", "first_name", "last_name")

	assert.Equal(t, []string{"(first_name ILIKE ? OR last_name ILIKE ?)"}, q.conds)
	assert.Equal(t, []interface{}{"%ali%", "%ali%"}, q.args)

	empty := newListQuery("").search("   ", "first_name")
	assert.Empty(t, empty.conds)
}

func TestTable_BuildWithoutFiltersStillScopesSoftDelete(t *testing.T) {
	_, countSQL, args := announcements.build(newListQuery("id"), domain.PageRequest{})

	assert.Equal(t, "SELECT COUNT(*) FROM announcements WHERE is_deleted = FALSE", countSQL)
	assert.Equal(t, []interface{}{domain.DefaultPageSize, 0}, args)

	_, countSQL, _ = clubs.build(newListQuery("id"), domain.PageRequest{})
	assert.Equal(t, "SELECT COUNT(*) FROM clubs", countSQL)
}
