package domain

import (
	"fmt"
	"time"
)

// AcademicTerm is a semester or similar teaching period. At most one term is
// current at a time.
type AcademicTerm struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	AcademicYear string    `json:"academic_year" db:"academic_year"`
	StartDate    time.Time `json:"start_date" db:"start_date"`
	EndDate      time.Time `json:"end_date" db:"end_date"`
	IsCurrent    bool      `json:"is_current" db:"is_current"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	Description  string    `json:"description" db:"description"`
	Audit
}

type AcademicTermRequest struct {
	Name         string    `json:"name" validate:"required,max=100"`
	AcademicYear string    `json:"academic_year" validate:"required,max=20"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	IsCurrent    bool      `json:"is_current"`
	IsActive     *bool     `json:"is_active"`
	Description  string    `json:"description" validate:"max=1000"`
}

// Validate checks the cross-field rules the tags cannot express.
func (r *AcademicTermRequest) Validate() error {
	if !r.EndDate.After(r.StartDate) {
		return fmt.Errorf("bitiş tarihi başlangıç tarihinden sonra olmalıdır")
	}
	return nil
}

func (r *AcademicTermRequest) Apply(term *AcademicTerm) {
	term.Name = r.Name
	term.AcademicYear = r.AcademicYear
	term.StartDate = r.StartDate
	term.EndDate = r.EndDate
	term.Description = r.Description
	if r.IsActive != nil {
		term.IsActive = *r.IsActive
	}
}

type AcademicTermFilter struct {
	AcademicYear string
	ActiveOnly   bool
	PageRequest
}

// Course is a subject offered by the school, identified by a unique code.
type Course struct {
	ID          int64  `json:"id" db:"id"`
	Code        string `json:"code" db:"code"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Credits     int    `json:"credits" db:"credits"`
	WeeklyHours int    `json:"weekly_hours" db:"weekly_hours"`
	IsActive    bool   `json:"is_active" db:"is_active"`
	Audit
}

type CourseRequest struct {
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Credits     int    `json:"credits" validate:"gte=0,lte=60"`
	WeeklyHours int    `json:"weekly_hours" validate:"gte=0,lte=60"`
	IsActive    *bool  `json:"is_active"`
}

func (r *CourseRequest) Apply(c *Course) {
	c.Code = r.Code
	c.Name = r.Name
	c.Description = r.Description
	c.Credits = r.Credits
	c.WeeklyHours = r.WeeklyHours
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
}

type CourseFilter struct {
	Search     string
	ActiveOnly bool
	PageRequest
}

// Classroom is a physical room. Rooms are reference data and are hard deleted.
type Classroom struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Building  string    `json:"building" db:"building"`
	Floor     int       `json:"floor" db:"floor"`
	Capacity  int       `json:"capacity" db:"capacity"`
	RoomType  string    `json:"room_type" db:"room_type"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type ClassroomRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Building string `json:"building" validate:"max=100"`
	Floor    int    `json:"floor"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
	RoomType string `json:"room_type" validate:"max=50"`
	IsActive *bool  `json:"is_active"`
}

func (r *ClassroomRequest) Apply(c *Classroom) {
	c.Name = r.Name
	c.Building = r.Building
	c.Floor = r.Floor
	c.Capacity = r.Capacity
	c.RoomType = r.RoomType
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
}

type ClassroomFilter struct {
	Search      string
	Building    string
	MinCapacity int
	ActiveOnly  bool
	PageRequest
}

// AvailabilityQuery asks for rooms free on a weekday between two times.
type AvailabilityQuery struct {
	DayOfWeek   time.Weekday `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime   TimeOfDay    `json:"start_time"`
	EndTime     TimeOfDay    `json:"end_time"`
	On          time.Time    `json:"on"`
	MinCapacity int          `json:"min_capacity"`
}

// StudentClassAssignment places a student in a class group for a term.
type StudentClassAssignment struct {
	ID             int64     `json:"id" db:"id"`
	StudentID      int64     `json:"student_id" db:"student_id"`
	AcademicTermID int64     `json:"academic_term_id" db:"academic_term_id"`
	ClassGroup     string    `json:"class_group" db:"class_group"`
	ClassroomID    *int64    `json:"classroom_id,omitempty" db:"classroom_id"`
	AssignedAt     time.Time `json:"assigned_at" db:"assigned_at"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	Audit
}

type StudentClassAssignmentRequest struct {
	StudentID      int64  `json:"student_id" validate:"required,gt=0"`
	AcademicTermID int64  `json:"academic_term_id" validate:"required,gt=0"`
	ClassGroup     string `json:"class_group" validate:"required,max=50"`
	ClassroomID    *int64 `json:"classroom_id,omitempty" validate:"omitempty,gt=0"`
}

type StudentClassAssignmentFilter struct {
	StudentID      *int64
	AcademicTermID *int64
	ClassGroup     string
	PageRequest
}
