package repository

import (
	"context"
	"strings"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/jmoiron/sqlx"
)

var (
	students = table{
		name: "students",
		columns: []string{
			"student_number", "first_name", "last_name", "user_id", "is_active",
			"created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}

	teachers = table{
		name: "teachers",
		columns: []string{
			"user_id", "first_name", "last_name", "branch", "is_active", "created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}

	parents = table{
		name: "parents",
		columns: []string{
			"user_id", "first_name", "last_name", "email", "phone", "occupation", "address",
			"created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}

	parentStudents = table{
		name:    "parent_students",
		columns: []string{"parent_id", "student_id", "relationship", "is_primary", "created_at"},
	}

	advisorStudents = table{
		name:    "advisor_students",
		columns: []string{"teacher_id", "student_id", "created_at"},
	}
)

type studentRepository struct {
	crud[domain.Student]
}

func NewStudentRepository(db *sqlx.DB) StudentRepository {
	return &studentRepository{crud[domain.Student]{base{db}, students}}
}

func (r *studentRepository) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	return r.get(ctx, id)
}

func (r *studentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.base, students, id)
}

type teacherRepository struct {
	crud[domain.Teacher]
}

func NewTeacherRepository(db *sqlx.DB) TeacherRepository {
	return &teacherRepository{crud[domain.Teacher]{base{db}, teachers}}
}

func (r *teacherRepository) GetByID(ctx context.Context, id int64) (*domain.Teacher, error) {
	return r.get(ctx, id)
}

func (r *teacherRepository) GetByUserID(ctx context.Context, userID string) (*domain.Teacher, error) {
	query := "SELECT " + teachers.selectList() + " FROM teachers" + where(teachers.scope("user_id = $1"))

	var teacher domain.Teacher
	if err := r.conn(ctx).GetContext(ctx, &teacher, query, userID); err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.base, teachers, id)
}

func exists(ctx context.Context, b base, t table, id int64) (bool, error) {
	query := "SELECT EXISTS (SELECT 1 FROM " + t.name + where(t.scope("id = $1")) + ")"

	var found bool
	err := b.conn(ctx).GetContext(ctx, &found, query, id)
	return found, err
}

type advisorRepository struct {
	base
}

func NewAdvisorRepository(db *sqlx.DB) AdvisorRepository {
	return &advisorRepository{base{db}}
}

func (r *advisorRepository) Assign(ctx context.Context, link *domain.AdvisorStudent) error {
	id, err := r.namedReturningID(ctx, advisorStudents.insertQuery(), link)
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *advisorRepository) Unassign(ctx context.Context, teacherID, studentID int64) error {
	return r.exec(ctx, "DELETE FROM advisor_students WHERE teacher_id = $1 AND student_id = $2", teacherID, studentID)
}

func (r *advisorRepository) ListStudentIDs(ctx context.Context, teacherID int64) ([]int64, error) {
	query := `
		SELECT a.student_id
		FROM advisor_students a
		JOIN students s ON s.id = a.student_id AND s.is_deleted = FALSE
		WHERE a.teacher_id = $1
		ORDER BY a.student_id
	`

	ids := []int64{}
	if err := r.conn(ctx).SelectContext(ctx, &ids, query, teacherID); err != nil {
		return nil, err
	}
	return ids, nil
}

type parentRepository struct {
	crud[domain.Parent]
}

func NewParentRepository(db *sqlx.DB) ParentRepository {
	return &parentRepository{crud[domain.Parent]{base{db}, parents}}
}

func (r *parentRepository) Create(ctx context.Context, parent *domain.Parent) error {
	id, err := r.insert(ctx, parent)
	if err != nil {
		return err
	}
	parent.ID = id
	return nil
}

func (r *parentRepository) GetByID(ctx context.Context, id int64) (*domain.Parent, error) {
	return r.get(ctx, id)
}

func (r *parentRepository) GetByUserID(ctx context.Context, userID string) (*domain.Parent, error) {
	query := "SELECT " + parents.selectList() + " FROM parents" + where(parents.scope("user_id = $1"))

	var parent domain.Parent
	if err := r.conn(ctx).GetContext(ctx, &parent, query, userID); err != nil {
		return nil, err
	}
	return &parent, nil
}

func (r *parentRepository) Update(ctx context.Context, parent *domain.Parent) error {
	return r.update(ctx, parent)
}

func (r *parentRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *parentRepository) List(ctx context.Context, filter domain.ParentFilter) ([]*domain.Parent, int, error) {
	q := newListQuery("last_name, first_name, id").
		search(filter.Search, "first_name", "last_name", "email", "phone")
	return r.list(ctx, q, filter.PageRequest)
}

func (r *parentRepository) LinkStudent(ctx context.Context, link *domain.ParentStudent) error {
	id, err := r.namedReturningID(ctx, parentStudents.insertQuery(), link)
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *parentRepository) UnlinkStudent(ctx context.Context, parentID, studentID int64) error {
	return r.exec(ctx, "DELETE FROM parent_students WHERE parent_id = $1 AND student_id = $2", parentID, studentID)
}

func (r *parentRepository) ListStudentIDs(ctx context.Context, parentID int64) ([]int64, error) {
	query := `
		SELECT ps.student_id
		FROM parent_students ps
		JOIN students s ON s.id = ps.student_id AND s.is_deleted = FALSE
		WHERE ps.parent_id = $1
		ORDER BY ps.student_id
	`

	ids := []int64{}
	if err := r.conn(ctx).SelectContext(ctx, &ids, query, parentID); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *parentRepository) ListStudents(ctx context.Context, parentID int64) ([]*domain.Student, error) {
	query := `
		SELECT s.id, s.` + strings.Join(students.columns, ", s.") + `
		FROM students s
		JOIN parent_students ps ON ps.student_id = s.id
		WHERE ps.parent_id = $1 AND s.is_deleted = FALSE
		ORDER BY s.last_name, s.first_name
	`

	items := []*domain.Student{}
	if err := r.conn(ctx).SelectContext(ctx, &items, query, parentID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *parentRepository) ListUserIDsByStudent(ctx context.Context, studentID int64) ([]string, error) {
	query := `
		SELECT p.user_id
		FROM parents p
		JOIN parent_students ps ON ps.parent_id = p.id
		WHERE ps.student_id = $1 AND p.is_deleted = FALSE AND p.user_id <> ''
		ORDER BY ps.is_primary DESC, p.id
	`

	ids := []string{}
	if err := r.conn(ctx).SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, err
	}
	return ids, nil
}

type identityProvider struct {
	base
}

// NewIdentityProvider reads profiles from users and role names from user_roles.
func NewIdentityProvider(db *sqlx.DB) IdentityProvider {
	return &identityProvider{base{db}}
}

func (p *identityProvider) GetUser(ctx context.Context, userID string) (*domain.UserIdentity, error) {
	query := `
		SELECT id AS user_id, first_name, last_name, email, phone
		FROM users
		WHERE id = $1 AND is_deleted = FALSE
	`

	var user domain.UserIdentity
	if err := p.conn(ctx).GetContext(ctx, &user, query, userID); err != nil {
		return nil, err
	}

	user.Roles = []string{}
	if err := p.conn(ctx).SelectContext(ctx, &user.Roles,
		"SELECT role_name FROM user_roles WHERE user_id = $1 ORDER BY role_name", userID); err != nil {
		return nil, err
	}

	return &user, nil
}
