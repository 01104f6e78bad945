package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/jmoiron/sqlx"
)

// table describes a mapped table. For soft-deletable tables every read and
// update built from it carries the is_deleted = FALSE predicate.
type table struct {
	name       string
	columns    []string // every column except id
	softDelete bool
}

func (t table) selectList() string {
	return "id, " + strings.Join(t.columns, ", ")
}

// scope prepends the soft-delete predicate to conds.
func (t table) scope(conds ...string) []string {
	if !t.softDelete {
		return conds
	}
	return append([]string{"is_deleted = FALSE"}, conds...)
}

func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (t table) insertQuery() string {
	cols := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if c == "is_deleted" {
			continue
		}
		cols = append(cols, c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s) RETURNING id",
		t.name, strings.Join(cols, ", "), strings.Join(cols, ", :"))
}

func (t table) updateQuery() string {
	sets := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if c == "created_at" || c == "is_deleted" {
			continue
		}
		sets = append(sets, c+" = :"+c)
	}
	return fmt.Sprintf("UPDATE %s SET %s%s", t.name, strings.Join(sets, ", "), where(t.scope("id = :id")))
}

func (t table) getQuery() string {
	return fmt.Sprintf("SELECT %s FROM %s%s", t.selectList(), t.name, where(t.scope("id = $1")))
}

func (t table) deleteQuery() string {
	if t.softDelete {
		return fmt.Sprintf("UPDATE %s SET is_deleted = TRUE, updated_at = NOW()%s", t.name, where(t.scope("id = $1")))
	}
	return fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name)
}

// listQuery collects optional filters with ? placeholders.
type listQuery struct {
	conds []string
	args  []interface{}
	order string
}

func newListQuery(order string) *listQuery {
	return &listQuery{order: order}
}

func (q *listQuery) where(cond string, args ...interface{}) *listQuery {
	q.conds = append(q.conds, cond)
	q.args = append(q.args, args...)
	return q
}

func (q *listQuery) whereIf(ok bool, cond string, args ...interface{}) *listQuery {
	if ok {
		q.where(cond, args...)
	}
	return q
}

// search adds a case-insensitive match of term against any of columns.
func (q *listQuery) search(term string, columns ...string) *listQuery {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, c := range columns {
		parts[i] = c + " ILIKE ?"
		args[i] = "%" + term + "%"
	}
	return q.where("("+strings.Join(parts, " OR ")+")", args...)
}

// build renders the page and count statements with Postgres placeholders.
func (t table) build(q *listQuery, page domain.PageRequest) (selectSQL, countSQL string, args []interface{}) {
	clause := where(t.scope(q.conds...))

	countSQL = sqlx.Rebind(sqlx.DOLLAR, fmt.Sprintf("SELECT COUNT(*) FROM %s%s", t.name, clause))

	order := ""
	if q.order != "" {
		order = " ORDER BY " + q.order
	}
	selectSQL = sqlx.Rebind(sqlx.DOLLAR, fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT ? OFFSET ?",
		t.selectList(), t.name, clause, order))

	args = append(append([]interface{}{}, q.args...), page.Limit(), page.Offset())
	return selectSQL, countSQL, args
}

// crud implements the statements every mapped table shares.
type crud[T any] struct {
	base
	t table
}

func (c crud[T]) get(ctx context.Context, id int64) (*T, error) {
	var item T
	if err := c.conn(ctx).GetContext(ctx, &item, c.t.getQuery(), id); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c crud[T]) insert(ctx context.Context, item *T) (int64, error) {
	return c.namedReturningID(ctx, c.t.insertQuery(), item)
}

func (c crud[T]) update(ctx context.Context, item *T) error {
	return c.namedExec(ctx, c.t.updateQuery(), item)
}

func (c crud[T]) remove(ctx context.Context, id int64) error {
	return c.exec(ctx, c.t.deleteQuery(), id)
}

func (c crud[T]) list(ctx context.Context, q *listQuery, page domain.PageRequest) ([]*T, int, error) {
	selectSQL, countSQL, args := c.t.build(q, page)

	var total int
	if err := c.conn(ctx).GetContext(ctx, &total, countSQL, args[:len(args)-2]...); err != nil {
		return nil, 0, err
	}

	items := []*T{}
	if total == 0 {
		return items, 0, nil
	}
	if err := c.conn(ctx).SelectContext(ctx, &items, selectSQL, args...); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// all returns every row matching q without paging.
func (c crud[T]) all(ctx context.Context, q *listQuery) ([]*T, error) {
	order := ""
	if q.order != "" {
		order = " ORDER BY " + q.order
	}
	query := sqlx.Rebind(sqlx.DOLLAR, fmt.Sprintf("SELECT %s FROM %s%s%s",
		c.t.selectList(), c.t.name, where(c.t.scope(q.conds...)), order))

	items := []*T{}
	if err := c.conn(ctx).SelectContext(ctx, &items, query, q.args...); err != nil {
		return nil, err
	}
	return items, nil
}
