package domain

import (
	"fmt"
	"time"
)

// WeeklySchedule is a recurring lesson slot: one course taught by one teacher
// in one room on a weekday, valid between EffectiveFrom and EffectiveTo.
type WeeklySchedule struct {
	ID             int64        `json:"id" db:"id"`
	AcademicTermID int64        `json:"academic_term_id" db:"academic_term_id"`
	CourseID       int64        `json:"course_id" db:"course_id"`
	TeacherID      int64        `json:"teacher_id" db:"teacher_id"`
	ClassroomID    int64        `json:"classroom_id" db:"classroom_id"`
	ClassGroup     string       `json:"class_group" db:"class_group"`
	DayOfWeek      time.Weekday `json:"day_of_week" db:"day_of_week"`
	StartTime      TimeOfDay    `json:"start_time" db:"start_time"`
	EndTime        TimeOfDay    `json:"end_time" db:"end_time"`
	EffectiveFrom  time.Time    `json:"effective_from" db:"effective_from"`
	EffectiveTo    *time.Time   `json:"effective_to,omitempty" db:"effective_to"`
	Audit
}

// ConflictsWith reports whether both slots fall on the same weekday, their
// times overlap and their effective ranges overlap. It does not look at
// which room or teacher the slots use.
func (s *WeeklySchedule) ConflictsWith(other *WeeklySchedule) bool {
	if s.DayOfWeek != other.DayOfWeek {
		return false
	}
	if !Overlaps(s.StartTime, s.EndTime, other.StartTime, other.EndTime) {
		return false
	}
	return DateRangesOverlap(s.EffectiveFrom, s.EffectiveTo, other.EffectiveFrom, other.EffectiveTo)
}

type WeeklyScheduleRequest struct {
	AcademicTermID int64      `json:"academic_term_id" validate:"required,gt=0"`
	CourseID       int64      `json:"course_id" validate:"required,gt=0"`
	TeacherID      int64      `json:"teacher_id" validate:"required,gt=0"`
	ClassroomID    int64      `json:"classroom_id" validate:"required,gt=0"`
	ClassGroup     string     `json:"class_group" validate:"required,max=50"`
	DayOfWeek      int        `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime      string     `json:"start_time" validate:"required"`
	EndTime        string     `json:"end_time" validate:"required"`
	EffectiveFrom  time.Time  `json:"effective_from" validate:"required"`
	EffectiveTo    *time.Time `json:"effective_to,omitempty"`
}

// ToSchedule parses the request into a schedule, rejecting malformed times
// and empty or inverted ranges.
func (r *WeeklyScheduleRequest) ToSchedule() (*WeeklySchedule, error) {
	start, err := ParseTimeOfDay(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("başlangıç saati geçersiz: %w", err)
	}
	end, err := ParseTimeOfDay(r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("bitiş saati geçersiz: %w", err)
	}
	if end <= start {
		return nil, fmt.Errorf("bitiş saati başlangıç saatinden sonra olmalıdır")
	}
	if r.EffectiveTo != nil && r.EffectiveTo.Before(r.EffectiveFrom) {
		return nil, fmt.Errorf("geçerlilik bitişi başlangıçtan önce olamaz")
	}

	return &WeeklySchedule{
		AcademicTermID: r.AcademicTermID,
		CourseID:       r.CourseID,
		TeacherID:      r.TeacherID,
		ClassroomID:    r.ClassroomID,
		ClassGroup:     r.ClassGroup,
		DayOfWeek:      time.Weekday(r.DayOfWeek),
		StartTime:      start,
		EndTime:        end,
		EffectiveFrom:  r.EffectiveFrom,
		EffectiveTo:    r.EffectiveTo,
	}, nil
}

type WeeklyScheduleFilter struct {
	AcademicTermID *int64
	TeacherID      *int64
	ClassroomID    *int64
	ClassGroup     string
	DayOfWeek      *time.Weekday
	PageRequest
}

const (
	CoachingStatusScheduled = "Scheduled"
	CoachingStatusCompleted = "Completed"
	CoachingStatusCancelled = "Cancelled"
)

// CoachingSession is a one-to-one meeting between a teacher and a student.
type CoachingSession struct {
	ID          int64     `json:"id" db:"id"`
	StudentID   int64     `json:"student_id" db:"student_id"`
	TeacherID   int64     `json:"teacher_id" db:"teacher_id"`
	SessionDate time.Time `json:"session_date" db:"session_date"`
	StartTime   TimeOfDay `json:"start_time" db:"start_time"`
	EndTime     TimeOfDay `json:"end_time" db:"end_time"`
	Topic       string    `json:"topic" db:"topic"`
	Notes       string    `json:"notes" db:"notes"`
	Status      string    `json:"status" db:"status"` // Scheduled, Completed, Cancelled
	Audit
}

// ConflictsWith reports whether both sessions are on the same date with
// overlapping times. Cancelled sessions never conflict.
func (c *CoachingSession) ConflictsWith(other *CoachingSession) bool {
	if c.Status == CoachingStatusCancelled || other.Status == CoachingStatusCancelled {
		return false
	}
	y1, m1, d1 := c.SessionDate.Date()
	y2, m2, d2 := other.SessionDate.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return false
	}
	return Overlaps(c.StartTime, c.EndTime, other.StartTime, other.EndTime)
}

type CoachingSessionRequest struct {
	StudentID   int64     `json:"student_id" validate:"required,gt=0"`
	TeacherID   int64     `json:"teacher_id" validate:"required,gt=0"`
	SessionDate time.Time `json:"session_date" validate:"required"`
	StartTime   string    `json:"start_time" validate:"required"`
	EndTime     string    `json:"end_time" validate:"required"`
	Topic       string    `json:"topic" validate:"required,max=200"`
	Notes       string    `json:"notes" validate:"max=2000"`
}

// Apply parses the request times and copies the fields onto session.
func (r *CoachingSessionRequest) Apply(session *CoachingSession) error {
	start, err := ParseTimeOfDay(r.StartTime)
	if err != nil {
		return fmt.Errorf("başlangıç saati geçersiz: %w", err)
	}
	end, err := ParseTimeOfDay(r.EndTime)
	if err != nil {
		return fmt.Errorf("bitiş saati geçersiz: %w", err)
	}
	if end <= start {
		return fmt.Errorf("bitiş saati başlangıç saatinden sonra olmalıdır")
	}

	session.StudentID = r.StudentID
	session.TeacherID = r.TeacherID
	session.SessionDate = r.SessionDate
	session.StartTime = start
	session.EndTime = end
	session.Topic = r.Topic
	session.Notes = r.Notes
	return nil
}

type CoachingSessionFilter struct {
	StudentID *int64
	TeacherID *int64
	Status    string
	From      *time.Time
	To        *time.Time
	PageRequest
}
