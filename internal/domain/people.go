package domain

import (
	"strings"
	"time"
)

// Role names as stored by the identity provider.
const (
	RoleAdmin   = "Admin"
	RoleAdvisor = "Danisman"
	RoleParent  = "Veli"
	RoleTeacher = "Ogretmen"
)

// UserIdentity is the profile and roles the identity provider returns for a user.
type UserIdentity struct {
	UserID    string   `json:"user_id" db:"user_id"`
	FirstName string   `json:"first_name" db:"first_name"`
	LastName  string   `json:"last_name" db:"last_name"`
	Email     string   `json:"email" db:"email"`
	Phone     string   `json:"phone" db:"phone"`
	Roles     []string `json:"roles" db:"-"`
}

// HasRole is a case-insensitive role membership test.
func (u *UserIdentity) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// Student is the minimal student record the services reference.
type Student struct {
	ID            int64  `json:"id" db:"id"`
	StudentNumber string `json:"student_number" db:"student_number"`
	FirstName     string `json:"first_name" db:"first_name"`
	LastName      string `json:"last_name" db:"last_name"`
	UserID        string `json:"user_id,omitempty" db:"user_id"`
	IsActive      bool   `json:"is_active" db:"is_active"`
	Audit
}

func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Teacher is the minimal teacher record; UserID links it to an identity user.
type Teacher struct {
	ID        int64  `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Branch    string `json:"branch" db:"branch"`
	IsActive  bool   `json:"is_active" db:"is_active"`
	Audit
}

// Parent is a guardian account; UserID links it to an identity user.
type Parent struct {
	ID         int64  `json:"id" db:"id"`
	UserID     string `json:"user_id" db:"user_id"`
	FirstName  string `json:"first_name" db:"first_name"`
	LastName   string `json:"last_name" db:"last_name"`
	Email      string `json:"email" db:"email"`
	Phone      string `json:"phone" db:"phone"`
	Occupation string `json:"occupation" db:"occupation"`
	Address    string `json:"address" db:"address"`
	Audit
}

type ParentRequest struct {
	UserID     string `json:"user_id" validate:"required,max=64"`
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"max=20"`
	Occupation string `json:"occupation" validate:"max=100"`
	Address    string `json:"address" validate:"max=500"`
}

func (r *ParentRequest) Apply(p *Parent) {
	p.UserID = r.UserID
	p.FirstName = r.FirstName
	p.LastName = r.LastName
	p.Email = r.Email
	p.Phone = r.Phone
	p.Occupation = r.Occupation
	p.Address = r.Address
}

type ParentFilter struct {
	Search string
	PageRequest
}

// ParentStudent links a parent to one of their children.
type ParentStudent struct {
	ID           int64     `json:"id" db:"id"`
	ParentID     int64     `json:"parent_id" db:"parent_id"`
	StudentID    int64     `json:"student_id" db:"student_id"`
	Relationship string    `json:"relationship" db:"relationship"`
	IsPrimary    bool      `json:"is_primary" db:"is_primary"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type LinkStudentRequest struct {
	StudentID    int64  `json:"student_id" validate:"required,gt=0"`
	Relationship string `json:"relationship" validate:"required,oneof=Mother Father Guardian Other"`
	IsPrimary    bool   `json:"is_primary"`
}

// AdvisorStudent assigns a student to an advisor teacher.
type AdvisorStudent struct {
	ID        int64     `json:"id" db:"id"`
	TeacherID int64     `json:"teacher_id" db:"teacher_id"`
	StudentID int64     `json:"student_id" db:"student_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
