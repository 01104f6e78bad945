package repository

import (
	"context"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/jmoiron/sqlx"
)

var (
	academicTerms = table{
		name: "academic_terms",
		columns: []string{
			"name", "academic_year", "start_date", "end_date", "is_current", "is_active",
			"description", "created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}

	courses = table{
		name: "courses",
		columns: []string{
			"code", "name", "description", "credits", "weekly_hours", "is_active",
			"created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}

	classrooms = table{
		name: "classrooms",
		columns: []string{
			"name", "building", "floor", "capacity", "room_type", "is_active", "created_at", "updated_at",
		},
	}

	assignments = table{
		name: "student_class_assignments",
		columns: []string{
			"student_id", "academic_term_id", "class_group", "classroom_id", "assigned_at", "is_active",
			"created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}
)

// termLockKey is the advisory lock id guarding the single current term.
const termLockKey = 7_301

type academicTermRepository struct {
	crud[domain.AcademicTerm]
}

func NewAcademicTermRepository(db *sqlx.DB) AcademicTermRepository {
	return &academicTermRepository{crud[domain.AcademicTerm]{base{db}, academicTerms}}
}

func (r *academicTermRepository) Create(ctx context.Context, term *domain.AcademicTerm) error {
	id, err := r.insert(ctx, term)
	if err != nil {
		return err
	}
	term.ID = id
	return nil
}

func (r *academicTermRepository) GetByID(ctx context.Context, id int64) (*domain.AcademicTerm, error) {
	return r.get(ctx, id)
}

func (r *academicTermRepository) Update(ctx context.Context, term *domain.AcademicTerm) error {
	return r.update(ctx, term)
}

func (r *academicTermRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *academicTermRepository) List(ctx context.Context, filter domain.AcademicTermFilter) ([]*domain.AcademicTerm, int, error) {
	q := newListQuery("start_date DESC, id DESC").
		whereIf(filter.AcademicYear != "", "academic_year = ?", filter.AcademicYear).
		whereIf(filter.ActiveOnly, "is_active = TRUE")
	return r.list(ctx, q, filter.PageRequest)
}

func (r *academicTermRepository) GetCurrent(ctx context.Context) (*domain.AcademicTerm, error) {
	query := "SELECT " + academicTerms.selectList() + " FROM academic_terms" +
		where(academicTerms.scope("is_current = TRUE")) + " ORDER BY start_date DESC LIMIT 1"

	var term domain.AcademicTerm
	if err := r.conn(ctx).GetContext(ctx, &term, query); err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *academicTermRepository) ClearCurrent(ctx context.Context, keepID int64) error {
	query := `
		UPDATE academic_terms
		SET is_current = FALSE, updated_at = NOW()
		WHERE is_current = TRUE AND id <> $1
	`

	_, err := r.conn(ctx).ExecContext(ctx, query, keepID)
	return err
}

func (r *academicTermRepository) LockTerms(ctx context.Context) error {
	_, err := r.conn(ctx).ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", termLockKey)
	return err
}

func (r *academicTermRepository) CountReferences(ctx context.Context, id int64) (int, int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM student_class_assignments WHERE academic_term_id = $1 AND is_deleted = FALSE),
			(SELECT COUNT(*) FROM weekly_schedules WHERE academic_term_id = $1 AND is_deleted = FALSE)
	`

	var assignments, schedules int
	err := r.conn(ctx).QueryRowxContext(ctx, query, id).Scan(&assignments, &schedules)
	return assignments, schedules, err
}

type courseRepository struct {
	crud[domain.Course]
}

func NewCourseRepository(db *sqlx.DB) CourseRepository {
	return &courseRepository{crud[domain.Course]{base{db}, courses}}
}

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	id, err := r.insert(ctx, course)
	if err != nil {
		return err
	}
	course.ID = id
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	return r.get(ctx, id)
}

func (r *courseRepository) GetByCode(ctx context.Context, code string) (*domain.Course, error) {
	query := "SELECT " + courses.selectList() + " FROM courses" + where(courses.scope("code = $1"))

	var course domain.Course
	if err := r.conn(ctx).GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	return r.update(ctx, course)
}

func (r *courseRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *courseRepository) List(ctx context.Context, filter domain.CourseFilter) ([]*domain.Course, int, error) {
	q := newListQuery("code").
		whereIf(filter.ActiveOnly, "is_active = TRUE").
		search(filter.Search, "code", "name")
	return r.list(ctx, q, filter.PageRequest)
}

func (r *courseRepository) CountSchedules(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.conn(ctx).GetContext(ctx, &count,
		"SELECT COUNT(*) FROM weekly_schedules WHERE course_id = $1 AND is_deleted = FALSE", id)
	return count, err
}

type classroomRepository struct {
	crud[domain.Classroom]
}

func NewClassroomRepository(db *sqlx.DB) ClassroomRepository {
	return &classroomRepository{crud[domain.Classroom]{base{db}, classrooms}}
}

func (r *classroomRepository) Create(ctx context.Context, classroom *domain.Classroom) error {
	id, err := r.insert(ctx, classroom)
	if err != nil {
		return err
	}
	classroom.ID = id
	return nil
}

func (r *classroomRepository) GetByID(ctx context.Context, id int64) (*domain.Classroom, error) {
	return r.get(ctx, id)
}

func (r *classroomRepository) Update(ctx context.Context, classroom *domain.Classroom) error {
	return r.update(ctx, classroom)
}

func (r *classroomRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *classroomRepository) List(ctx context.Context, filter domain.ClassroomFilter) ([]*domain.Classroom, int, error) {
	q := newListQuery("building, name").
		whereIf(filter.Building != "", "building = ?", filter.Building).
		whereIf(filter.MinCapacity > 0, "capacity >= ?", filter.MinCapacity).
		whereIf(filter.ActiveOnly, "is_active = TRUE").
		search(filter.Search, "name", "building")
	return r.list(ctx, q, filter.PageRequest)
}

func (r *classroomRepository) ListActive(ctx context.Context, minCapacity int) ([]*domain.Classroom, error) {
	q := newListQuery("capacity, name").
		where("is_active = TRUE").
		whereIf(minCapacity > 0, "capacity >= ?", minCapacity)
	return r.all(ctx, q)
}

func (r *classroomRepository) CountSchedules(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.conn(ctx).GetContext(ctx, &count,
		"SELECT COUNT(*) FROM weekly_schedules WHERE classroom_id = $1 AND is_deleted = FALSE", id)
	return count, err
}

type assignmentRepository struct {
	crud[domain.StudentClassAssignment]
}

func NewAssignmentRepository(db *sqlx.DB) AssignmentRepository {
	return &assignmentRepository{crud[domain.StudentClassAssignment]{base{db}, assignments}}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.StudentClassAssignment) error {
	id, err := r.insert(ctx, assignment)
	if err != nil {
		return err
	}
	assignment.ID = id
	return nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id int64) (*domain.StudentClassAssignment, error) {
	return r.get(ctx, id)
}

func (r *assignmentRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *assignmentRepository) List(ctx context.Context, filter domain.StudentClassAssignmentFilter) ([]*domain.StudentClassAssignment, int, error) {
	q := newListQuery("class_group, student_id").
		whereIf(filter.StudentID != nil, "student_id = ?", deref(filter.StudentID)).
		whereIf(filter.AcademicTermID != nil, "academic_term_id = ?", deref(filter.AcademicTermID)).
		whereIf(filter.ClassGroup != "", "class_group = ?", filter.ClassGroup)
	return r.list(ctx, q, filter.PageRequest)
}

func (r *assignmentRepository) ExistsForTerm(ctx context.Context, studentID, termID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM student_class_assignments
			WHERE student_id = $1 AND academic_term_id = $2 AND is_deleted = FALSE
		)
	`

	var exists bool
	err := r.conn(ctx).GetContext(ctx, &exists, query, studentID, termID)
	return exists, err
}
