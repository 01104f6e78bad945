package domain

import "time"

const (
	AudienceAll      = "All"
	AudienceStudents = "Students"
	AudienceParents  = "Parents"
	AudienceTeachers = "Teachers"
)

// Announcement is a notice published to one audience.
type Announcement struct {
	ID             int64      `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Content        string     `json:"content" db:"content"`
	TargetAudience string     `json:"target_audience" db:"target_audience"`
	Priority       int        `json:"priority" db:"priority"`
	PublishDate    time.Time  `json:"publish_date" db:"publish_date"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	IsPublished    bool       `json:"is_published" db:"is_published"`
	AuthorID       string     `json:"author_id" db:"author_id"`
	Audit
}

// IsVisible reports whether the announcement is published and inside its
// publish window at now.
func (a *Announcement) IsVisible(now time.Time) bool {
	if !a.IsPublished || a.PublishDate.After(now) {
		return false
	}
	return a.ExpiryDate == nil || a.ExpiryDate.After(now)
}

type AnnouncementRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Content        string     `json:"content" validate:"required"`
	TargetAudience string     `json:"target_audience" validate:"required,oneof=All Students Parents Teachers"`
	Priority       int        `json:"priority" validate:"gte=0,lte=10"`
	PublishDate    *time.Time `json:"publish_date,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	IsPublished    bool       `json:"is_published"`
}

func (r *AnnouncementRequest) Apply(a *Announcement, now time.Time) {
	a.Title = r.Title
	a.Content = r.Content
	a.TargetAudience = r.TargetAudience
	a.Priority = r.Priority
	a.PublishDate = now
	if r.PublishDate != nil {
		a.PublishDate = *r.PublishDate
	}
	a.ExpiryDate = r.ExpiryDate
	a.IsPublished = r.IsPublished
}

type AnnouncementFilter struct {
	TargetAudience string
	PublishedOnly  bool
	Search         string
	PageRequest
}

// CalendarEvent is an entry on the school calendar.
type CalendarEvent struct {
	ID             int64     `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	EventType      string    `json:"event_type" db:"event_type"`
	StartDate      time.Time `json:"start_date" db:"start_date"`
	EndDate        time.Time `json:"end_date" db:"end_date"`
	IsAllDay       bool      `json:"is_all_day" db:"is_all_day"`
	Location       string    `json:"location" db:"location"`
	AcademicTermID *int64    `json:"academic_term_id,omitempty" db:"academic_term_id"`
	Audit
}

type CalendarEventRequest struct {
	Title          string    `json:"title" validate:"required,max=200"`
	Description    string    `json:"description" validate:"max=2000"`
	EventType      string    `json:"event_type" validate:"required,oneof=Holiday Exam Meeting Activity Other"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" validate:"required"`
	IsAllDay       bool      `json:"is_all_day"`
	Location       string    `json:"location" validate:"max=200"`
	AcademicTermID *int64    `json:"academic_term_id,omitempty" validate:"omitempty,gt=0"`
}

func (r *CalendarEventRequest) Apply(e *CalendarEvent) {
	e.Title = r.Title
	e.Description = r.Description
	e.EventType = r.EventType
	e.StartDate = r.StartDate
	e.EndDate = r.EndDate
	e.IsAllDay = r.IsAllDay
	e.Location = r.Location
	e.AcademicTermID = r.AcademicTermID
}

type CalendarEventFilter struct {
	EventType      string
	AcademicTermID *int64
	From           *time.Time
	To             *time.Time
	PageRequest
}

// Club is an extracurricular group. Clubs are reference data and are hard deleted.
type Club struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Description      string    `json:"description" db:"description"`
	AdvisorTeacherID *int64    `json:"advisor_teacher_id,omitempty" db:"advisor_teacher_id"`
	MaxMembers       int       `json:"max_members" db:"max_members"`
	MeetingDay       string    `json:"meeting_day" db:"meeting_day"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
	MemberCount      int       `json:"member_count" db:"member_count"`
}

type ClubRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	Description      string `json:"description" validate:"max=1000"`
	AdvisorTeacherID *int64 `json:"advisor_teacher_id,omitempty" validate:"omitempty,gt=0"`
	MaxMembers       int    `json:"max_members" validate:"gte=0"`
	MeetingDay       string `json:"meeting_day" validate:"max=20"`
	IsActive         *bool  `json:"is_active"`
}

func (r *ClubRequest) Apply(c *Club) {
	c.Name = r.Name
	c.Description = r.Description
	c.AdvisorTeacherID = r.AdvisorTeacherID
	c.MaxMembers = r.MaxMembers
	c.MeetingDay = r.MeetingDay
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
}

// HasCapacity reports whether one more member fits. Zero MaxMembers means unlimited.
func (c *Club) HasCapacity(currentMembers int) bool {
	return c.MaxMembers == 0 || currentMembers < c.MaxMembers
}

type ClubFilter struct {
	Search     string
	ActiveOnly bool
	PageRequest
}

// ClubMembership links a student to a club.
type ClubMembership struct {
	ID        int64     `json:"id" db:"id"`
	ClubID    int64     `json:"club_id" db:"club_id"`
	StudentID int64     `json:"student_id" db:"student_id"`
	Role      string    `json:"role" db:"role"`
	JoinedAt  time.Time `json:"joined_at" db:"joined_at"`
}

type ClubMemberRequest struct {
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	Role      string `json:"role" validate:"omitempty,oneof=Member President VicePresident Secretary"`
}

const (
	NotificationTypeInfo           = "Info"
	NotificationTypePaymentDue     = "PaymentDue"
	NotificationTypePaymentOverdue = "PaymentOverdue"
	NotificationTypeAnnouncement   = "Announcement"
)

// Notification is a message addressed to one identity user.
type Notification struct {
	ID                int64      `json:"id" db:"id"`
	UserID            string     `json:"user_id" db:"user_id"`
	Title             string     `json:"title" db:"title"`
	Message           string     `json:"message" db:"message"`
	NotificationType  string     `json:"notification_type" db:"notification_type"`
	IsRead            bool       `json:"is_read" db:"is_read"`
	ReadAt            *time.Time `json:"read_at,omitempty" db:"read_at"`
	RelatedEntityType string     `json:"related_entity_type,omitempty" db:"related_entity_type"`
	RelatedEntityID   *int64     `json:"related_entity_id,omitempty" db:"related_entity_id"`
	Audit
}

type NotificationRequest struct {
	UserID            string `json:"user_id" validate:"required"`
	Title             string `json:"title" validate:"required,max=200"`
	Message           string `json:"message" validate:"required,max=2000"`
	NotificationType  string `json:"notification_type" validate:"omitempty,oneof=Info PaymentDue PaymentOverdue Announcement"`
	RelatedEntityType string `json:"related_entity_type" validate:"max=50"`
	RelatedEntityID   *int64 `json:"related_entity_id,omitempty"`
}

type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	PageRequest
}
