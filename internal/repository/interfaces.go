package repository

import (
	"context"
	"time"

	"github.com/segyhp/school-portal/internal/domain"
)

// Reads return sql.ErrNoRows for missing or soft-deleted rows; updates and
// deletes return it when no live row matched.

// PaymentPlanRepository defines the interface for payment plan template data operations
type PaymentPlanRepository interface {
	Create(ctx context.Context, plan *domain.PaymentPlan) error
	GetByID(ctx context.Context, id int64) (*domain.PaymentPlan, error)
	Update(ctx context.Context, plan *domain.PaymentPlan) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.PaymentPlanFilter) ([]*domain.PaymentPlan, int, error)

	// CountStudentPlans counts live student plans instantiated from the template
	CountStudentPlans(ctx context.Context, planID int64) (int, error)
}

// StudentPaymentPlanRepository defines the interface for student payment plan data operations
type StudentPaymentPlanRepository interface {
	Create(ctx context.Context, plan *domain.StudentPaymentPlan) error
	GetByID(ctx context.Context, id int64) (*domain.StudentPaymentPlan, error)
	Update(ctx context.Context, plan *domain.StudentPaymentPlan) error
	List(ctx context.Context, filter domain.StudentPaymentPlanFilter) ([]*domain.StudentPaymentPlan, int, error)
}

// InstallmentRepository defines the interface for installment data operations
type InstallmentRepository interface {
	// CreateBatch inserts the installments and sets their ids
	CreateBatch(ctx context.Context, installments []*domain.PaymentInstallment) error
	GetByID(ctx context.Context, id int64) (*domain.PaymentInstallment, error)
	Update(ctx context.Context, installment *domain.PaymentInstallment) error
	ListByPlan(ctx context.Context, planID int64) ([]*domain.PaymentInstallment, error)

	// ListPendingDueBefore returns Pending installments due before the given day, whatever the plan status
	ListPendingDueBefore(ctx context.Context, day time.Time) ([]*domain.OverdueInstallment, error)

	// UpdateStatus sets the status of the given installments
	UpdateStatus(ctx context.Context, ids []int64, status string) error

	// ListByStatus returns installments of live plans in the given status, oldest due first
	ListByStatus(ctx context.Context, status string) ([]*domain.OverdueInstallment, error)

	// ListDueBetween returns unpaid installments of active plans due in [from, to)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.OverdueInstallment, error)
}

// PaymentRepository defines the interface for payment ledger data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
	List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, int, error)

	// ListAll returns every live payment matching the filter, ignoring paging
	ListAll(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error)
}

// AcademicTermRepository defines the interface for academic term data operations
type AcademicTermRepository interface {
	Create(ctx context.Context, term *domain.AcademicTerm) error
	GetByID(ctx context.Context, id int64) (*domain.AcademicTerm, error)
	Update(ctx context.Context, term *domain.AcademicTerm) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.AcademicTermFilter) ([]*domain.AcademicTerm, int, error)
	GetCurrent(ctx context.Context) (*domain.AcademicTerm, error)

	// ClearCurrent unsets is_current on every term except keepID
	ClearCurrent(ctx context.Context, keepID int64) error

	// LockTerms serialises current-term changes for the rest of the transaction
	LockTerms(ctx context.Context) error

	// CountReferences counts live class assignments and weekly schedules pointing at the term
	CountReferences(ctx context.Context, id int64) (assignments int, schedules int, err error)
}

// CourseRepository defines the interface for course data operations
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
	GetByCode(ctx context.Context, code string) (*domain.Course, error)
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.CourseFilter) ([]*domain.Course, int, error)
	CountSchedules(ctx context.Context, id int64) (int, error)
}

// ClassroomRepository defines the interface for classroom data operations
type ClassroomRepository interface {
	Create(ctx context.Context, classroom *domain.Classroom) error
	GetByID(ctx context.Context, id int64) (*domain.Classroom, error)
	Update(ctx context.Context, classroom *domain.Classroom) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.ClassroomFilter) ([]*domain.Classroom, int, error)
	ListActive(ctx context.Context, minCapacity int) ([]*domain.Classroom, error)
	CountSchedules(ctx context.Context, id int64) (int, error)
}

// ScheduleRepository defines the interface for weekly schedule data operations
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.WeeklySchedule) error
	GetByID(ctx context.Context, id int64) (*domain.WeeklySchedule, error)
	Update(ctx context.Context, schedule *domain.WeeklySchedule) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.WeeklyScheduleFilter) ([]*domain.WeeklySchedule, int, error)

	// FindCandidates returns live schedules on the same weekday that share the
	// room or the teacher with s, excluding s itself
	FindCandidates(ctx context.Context, s *domain.WeeklySchedule) ([]*domain.WeeklySchedule, error)

	// ListByDay returns live schedules on day that are effective on date
	ListByDay(ctx context.Context, day time.Weekday, on time.Time) ([]*domain.WeeklySchedule, error)
}

// AssignmentRepository defines the interface for student class assignment data operations
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.StudentClassAssignment) error
	GetByID(ctx context.Context, id int64) (*domain.StudentClassAssignment, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.StudentClassAssignmentFilter) ([]*domain.StudentClassAssignment, int, error)
	ExistsForTerm(ctx context.Context, studentID, termID int64) (bool, error)
}

// StudentRepository defines the interface for student lookups
type StudentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Student, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// TeacherRepository defines the interface for teacher lookups
type TeacherRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Teacher, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Teacher, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// AdvisorRepository defines the interface for advisor to student assignments
type AdvisorRepository interface {
	Assign(ctx context.Context, link *domain.AdvisorStudent) error
	Unassign(ctx context.Context, teacherID, studentID int64) error
	ListStudentIDs(ctx context.Context, teacherID int64) ([]int64, error)
}

// ParentRepository defines the interface for parent data operations
type ParentRepository interface {
	Create(ctx context.Context, parent *domain.Parent) error
	GetByID(ctx context.Context, id int64) (*domain.Parent, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Parent, error)
	Update(ctx context.Context, parent *domain.Parent) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.ParentFilter) ([]*domain.Parent, int, error)

	LinkStudent(ctx context.Context, link *domain.ParentStudent) error
	UnlinkStudent(ctx context.Context, parentID, studentID int64) error
	ListStudentIDs(ctx context.Context, parentID int64) ([]int64, error)
	ListStudents(ctx context.Context, parentID int64) ([]*domain.Student, error)

	// ListUserIDsByStudent returns identity user ids of the student's live parents
	ListUserIDsByStudent(ctx context.Context, studentID int64) ([]string, error)
}

// AnnouncementRepository defines the interface for announcement data operations
type AnnouncementRepository interface {
	Create(ctx context.Context, a *domain.Announcement) error
	GetByID(ctx context.Context, id int64) (*domain.Announcement, error)
	Update(ctx context.Context, a *domain.Announcement) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.AnnouncementFilter) ([]*domain.Announcement, int, error)

	// ListVisible returns published, unexpired announcements for audience (and "All")
	ListVisible(ctx context.Context, audience string, now time.Time) ([]*domain.Announcement, error)
}

// CalendarEventRepository defines the interface for calendar event data operations
type CalendarEventRepository interface {
	Create(ctx context.Context, e *domain.CalendarEvent) error
	GetByID(ctx context.Context, id int64) (*domain.CalendarEvent, error)
	Update(ctx context.Context, e *domain.CalendarEvent) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.CalendarEventFilter) ([]*domain.CalendarEvent, int, error)
}

// ClubRepository defines the interface for club data operations
type ClubRepository interface {
	Create(ctx context.Context, club *domain.Club) error
	GetByID(ctx context.Context, id int64) (*domain.Club, error)
	Update(ctx context.Context, club *domain.Club) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.ClubFilter) ([]*domain.Club, int, error)

	CountMembers(ctx context.Context, clubID int64) (int, error)
	IsMember(ctx context.Context, clubID, studentID int64) (bool, error)
	AddMember(ctx context.Context, m *domain.ClubMembership) error
	RemoveMember(ctx context.Context, clubID, studentID int64) error
	ListMembers(ctx context.Context, clubID int64) ([]*domain.ClubMembership, error)
}

// CoachingSessionRepository defines the interface for coaching session data operations
type CoachingSessionRepository interface {
	Create(ctx context.Context, s *domain.CoachingSession) error
	GetByID(ctx context.Context, id int64) (*domain.CoachingSession, error)
	Update(ctx context.Context, s *domain.CoachingSession) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.CoachingSessionFilter) ([]*domain.CoachingSession, int, error)

	// ListOnDate returns live, non-cancelled sessions on the session's date for
	// its teacher or student, excluding the session itself
	ListOnDate(ctx context.Context, s *domain.CoachingSession) ([]*domain.CoachingSession, error)
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, int, error)
	MarkRead(ctx context.Context, id int64, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)

	// ExistsSince reports whether a notification of kind about the entity was
	// already sent to the user since the given time
	ExistsSince(ctx context.Context, userID, kind string, entityID int64, since time.Time) (bool, error)
}

// DocumentRepository defines the interface for student document metadata
type DocumentRepository interface {
	Create(ctx context.Context, d *domain.StudentDocument) error
	GetByID(ctx context.Context, id int64) (*domain.StudentDocument, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.StudentDocumentFilter) ([]*domain.StudentDocument, int, error)
}

// CertificateRepository defines the interface for certificate metadata
type CertificateRepository interface {
	Create(ctx context.Context, c *domain.Certificate) error
	GetByID(ctx context.Context, id int64) (*domain.Certificate, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.CertificateFilter) ([]*domain.Certificate, int, error)
}

// IdentityProvider resolves identity users to their profile and role names
type IdentityProvider interface {
	GetUser(ctx context.Context, userID string) (*domain.UserIdentity, error)
}
