package mocks

import (
	"context"
	"time"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/stretchr/testify/mock"
)

// get returns the i-th return value as T, or T's zero value when it is nil.
func get[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

type MockPaymentPlanRepository struct {
	mock.Mock
}

func (m *MockPaymentPlanRepository) Create(ctx context.Context, plan *domain.PaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPaymentPlanRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentPlan, error) {
	args := m.Called(ctx, id)
	return get[*domain.PaymentPlan](args, 0), args.Error(1)
}

func (m *MockPaymentPlanRepository) Update(ctx context.Context, plan *domain.PaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPaymentPlanRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentPlanRepository) List(ctx context.Context, filter domain.PaymentPlanFilter) ([]*domain.PaymentPlan, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.PaymentPlan](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockPaymentPlanRepository) CountStudentPlans(ctx context.Context, planID int64) (int, error) {
	args := m.Called(ctx, planID)
	return get[int](args, 0), args.Error(1)
}

type MockStudentPaymentPlanRepository struct {
	mock.Mock
}

func (m *MockStudentPaymentPlanRepository) Create(ctx context.Context, plan *domain.StudentPaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockStudentPaymentPlanRepository) GetByID(ctx context.Context, id int64) (*domain.StudentPaymentPlan, error) {
	args := m.Called(ctx, id)
	return get[*domain.StudentPaymentPlan](args, 0), args.Error(1)
}

func (m *MockStudentPaymentPlanRepository) Update(ctx context.Context, plan *domain.StudentPaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockStudentPaymentPlanRepository) List(ctx context.Context, filter domain.StudentPaymentPlanFilter) ([]*domain.StudentPaymentPlan, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.StudentPaymentPlan](args, 0), get[int](args, 1), args.Error(2)
}

type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) CreateBatch(ctx context.Context, installments []*domain.PaymentInstallment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *MockInstallmentRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentInstallment, error) {
	args := m.Called(ctx, id)
	return get[*domain.PaymentInstallment](args, 0), args.Error(1)
}

func (m *MockInstallmentRepository) Update(ctx context.Context, installment *domain.PaymentInstallment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockInstallmentRepository) ListByPlan(ctx context.Context, planID int64) ([]*domain.PaymentInstallment, error) {
	args := m.Called(ctx, planID)
	return get[[]*domain.PaymentInstallment](args, 0), args.Error(1)
}

func (m *MockInstallmentRepository) ListPendingDueBefore(ctx context.Context, day time.Time) ([]*domain.OverdueInstallment, error) {
	args := m.Called(ctx, day)
	return get[[]*domain.OverdueInstallment](args, 0), args.Error(1)
}

func (m *MockInstallmentRepository) UpdateStatus(ctx context.Context, ids []int64, status string) error {
	args := m.Called(ctx, ids, status)
	return args.Error(0)
}

func (m *MockInstallmentRepository) ListByStatus(ctx context.Context, status string) ([]*domain.OverdueInstallment, error) {
	args := m.Called(ctx, status)
	return get[[]*domain.OverdueInstallment](args, 0), args.Error(1)
}

func (m *MockInstallmentRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.OverdueInstallment, error) {
	args := m.Called(ctx, from, to)
	return get[[]*domain.OverdueInstallment](args, 0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	return get[*domain.Payment](args, 0), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.Payment](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockPaymentRepository) ListAll(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.Payment](args, 0), args.Error(1)
}

type MockAcademicTermRepository struct {
	mock.Mock
}

func (m *MockAcademicTermRepository) Create(ctx context.Context, term *domain.AcademicTerm) error {
	args := m.Called(ctx, term)
	return args.Error(0)
}

func (m *MockAcademicTermRepository) GetByID(ctx context.Context, id int64) (*domain.AcademicTerm, error) {
	args := m.Called(ctx, id)
	return get[*domain.AcademicTerm](args, 0), args.Error(1)
}

func (m *MockAcademicTermRepository) Update(ctx context.Context, term *domain.AcademicTerm) error {
	args := m.Called(ctx, term)
	return args.Error(0)
}

func (m *MockAcademicTermRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAcademicTermRepository) List(ctx context.Context, filter domain.AcademicTermFilter) ([]*domain.AcademicTerm, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.AcademicTerm](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockAcademicTermRepository) GetCurrent(ctx context.Context) (*domain.AcademicTerm, error) {
	args := m.Called(ctx)
	return get[*domain.AcademicTerm](args, 0), args.Error(1)
}

func (m *MockAcademicTermRepository) ClearCurrent(ctx context.Context, keepID int64) error {
	args := m.Called(ctx, keepID)
	return args.Error(0)
}

func (m *MockAcademicTermRepository) LockTerms(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAcademicTermRepository) CountReferences(ctx context.Context, id int64) (assignments int, schedules int, err error) {
	args := m.Called(ctx, id)
	return get[int](args, 0), get[int](args, 1), args.Error(2)
}

type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, course *domain.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	args := m.Called(ctx, id)
	return get[*domain.Course](args, 0), args.Error(1)
}

func (m *MockCourseRepository) GetByCode(ctx context.Context, code string) (*domain.Course, error) {
	args := m.Called(ctx, code)
	return get[*domain.Course](args, 0), args.Error(1)
}

func (m *MockCourseRepository) Update(ctx context.Context, course *domain.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCourseRepository) List(ctx context.Context, filter domain.CourseFilter) ([]*domain.Course, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.Course](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockCourseRepository) CountSchedules(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return get[int](args, 0), args.Error(1)
}

type MockClassroomRepository struct {
	mock.Mock
}

func (m *MockClassroomRepository) Create(ctx context.Context, classroom *domain.Classroom) error {
	args := m.Called(ctx, classroom)
	return args.Error(0)
}

func (m *MockClassroomRepository) GetByID(ctx context.Context, id int64) (*domain.Classroom, error) {
	args := m.Called(ctx, id)
	return get[*domain.Classroom](args, 0), args.Error(1)
}

func (m *MockClassroomRepository) Update(ctx context.Context, classroom *domain.Classroom) error {
	args := m.Called(ctx, classroom)
	return args.Error(0)
}

func (m *MockClassroomRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClassroomRepository) List(ctx context.Context, filter domain.ClassroomFilter) ([]*domain.Classroom, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.Classroom](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockClassroomRepository) ListActive(ctx context.Context, minCapacity int) ([]*domain.Classroom, error) {
	args := m.Called(ctx, minCapacity)
	return get[[]*domain.Classroom](args, 0), args.Error(1)
}

func (m *MockClassroomRepository) CountSchedules(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return get[int](args, 0), args.Error(1)
}

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Create(ctx context.Context, schedule *domain.WeeklySchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) GetByID(ctx context.Context, id int64) (*domain.WeeklySchedule, error) {
	args := m.Called(ctx, id)
	return get[*domain.WeeklySchedule](args, 0), args.Error(1)
}

func (m *MockScheduleRepository) Update(ctx context.Context, schedule *domain.WeeklySchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockScheduleRepository) List(ctx context.Context, filter domain.WeeklyScheduleFilter) ([]*domain.WeeklySchedule, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.WeeklySchedule](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockScheduleRepository) FindCandidates(ctx context.Context, s *domain.WeeklySchedule) ([]*domain.WeeklySchedule, error) {
	args := m.Called(ctx, s)
	return get[[]*domain.WeeklySchedule](args, 0), args.Error(1)
}

func (m *MockScheduleRepository) ListByDay(ctx context.Context, day time.Weekday, on time.Time) ([]*domain.WeeklySchedule, error) {
	args := m.Called(ctx, day, on)
	return get[[]*domain.WeeklySchedule](args, 0), args.Error(1)
}

type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) Create(ctx context.Context, assignment *domain.StudentClassAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockAssignmentRepository) GetByID(ctx context.Context, id int64) (*domain.StudentClassAssignment, error) {
	args := m.Called(ctx, id)
	return get[*domain.StudentClassAssignment](args, 0), args.Error(1)
}

func (m *MockAssignmentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssignmentRepository) List(ctx context.Context, filter domain.StudentClassAssignmentFilter) ([]*domain.StudentClassAssignment, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.StudentClassAssignment](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockAssignmentRepository) ExistsForTerm(ctx context.Context, studentID, termID int64) (bool, error) {
	args := m.Called(ctx, studentID, termID)
	return get[bool](args, 0), args.Error(1)
}

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	args := m.Called(ctx, id)
	return get[*domain.Student](args, 0), args.Error(1)
}

func (m *MockStudentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return get[bool](args, 0), args.Error(1)
}

type MockTeacherRepository struct {
	mock.Mock
}

func (m *MockTeacherRepository) GetByID(ctx context.Context, id int64) (*domain.Teacher, error) {
	args := m.Called(ctx, id)
	return get[*domain.Teacher](args, 0), args.Error(1)
}

func (m *MockTeacherRepository) GetByUserID(ctx context.Context, userID string) (*domain.Teacher, error) {
	args := m.Called(ctx, userID)
	return get[*domain.Teacher](args, 0), args.Error(1)
}

func (m *MockTeacherRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return get[bool](args, 0), args.Error(1)
}

type MockAdvisorRepository struct {
	mock.Mock
}

func (m *MockAdvisorRepository) Assign(ctx context.Context, link *domain.AdvisorStudent) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockAdvisorRepository) Unassign(ctx context.Context, teacherID, studentID int64) error {
	args := m.Called(ctx, teacherID, studentID)
	return args.Error(0)
}

func (m *MockAdvisorRepository) ListStudentIDs(ctx context.Context, teacherID int64) ([]int64, error) {
	args := m.Called(ctx, teacherID)
	return get[[]int64](args, 0), args.Error(1)
}

type MockParentRepository struct {
	mock.Mock
}

func (m *MockParentRepository) Create(ctx context.Context, parent *domain.Parent) error {
	args := m.Called(ctx, parent)
	return args.Error(0)
}

func (m *MockParentRepository) GetByID(ctx context.Context, id int64) (*domain.Parent, error) {
	args := m.Called(ctx, id)
	return get[*domain.Parent](args, 0), args.Error(1)
}

func (m *MockParentRepository) GetByUserID(ctx context.Context, userID string) (*domain.Parent, error) {
	args := m.Called(ctx, userID)
	return get[*domain.Parent](args, 0), args.Error(1)
}

func (m *MockParentRepository) Update(ctx context.Context, parent *domain.Parent) error {
	args := m.Called(ctx, parent)
	return args.Error(0)
}

func (m *MockParentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockParentRepository) List(ctx context.Context, filter domain.ParentFilter) ([]*domain.Parent, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.Parent](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockParentRepository) LinkStudent(ctx context.Context, link *domain.ParentStudent) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockParentRepository) UnlinkStudent(ctx context.Context, parentID, studentID int64) error {
	args := m.Called(ctx, parentID, studentID)
	return args.Error(0)
}

func (m *MockParentRepository) ListStudentIDs(ctx context.Context, parentID int64) ([]int64, error) {
	args := m.Called(ctx, parentID)
	return get[[]int64](args, 0), args.Error(1)
}

func (m *MockParentRepository) ListStudents(ctx context.Context, parentID int64) ([]*domain.Student, error) {
	args := m.Called(ctx, parentID)
	return get[[]*domain.Student](args, 0), args.Error(1)
}

func (m *MockParentRepository) ListUserIDsByStudent(ctx context.Context, studentID int64) ([]string, error) {
	args := m.Called(ctx, studentID)
	return get[[]string](args, 0), args.Error(1)
}

type MockAnnouncementRepository struct {
	mock.Mock
}

func (m *MockAnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAnnouncementRepository) GetByID(ctx context.Context, id int64) (*domain.Announcement, error) {
	args := m.Called(ctx, id)
	return get[*domain.Announcement](args, 0), args.Error(1)
}

func (m *MockAnnouncementRepository) Update(ctx context.Context, a *domain.Announcement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAnnouncementRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAnnouncementRepository) List(ctx context.Context, filter domain.AnnouncementFilter) ([]*domain.Announcement, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.Announcement](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockAnnouncementRepository) ListVisible(ctx context.Context, audience string, now time.Time) ([]*domain.Announcement, error) {
	args := m.Called(ctx, audience, now)
	return get[[]*domain.Announcement](args, 0), args.Error(1)
}

type MockCalendarEventRepository struct {
	mock.Mock
}

func (m *MockCalendarEventRepository) Create(ctx context.Context, e *domain.CalendarEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockCalendarEventRepository) GetByID(ctx context.Context, id int64) (*domain.CalendarEvent, error) {
	args := m.Called(ctx, id)
	return get[*domain.CalendarEvent](args, 0), args.Error(1)
}

func (m *MockCalendarEventRepository) Update(ctx context.Context, e *domain.CalendarEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockCalendarEventRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCalendarEventRepository) List(ctx context.Context, filter domain.CalendarEventFilter) ([]*domain.CalendarEvent, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.CalendarEvent](args, 0), get[int](args, 1), args.Error(2)
}

type MockClubRepository struct {
	mock.Mock
}

func (m *MockClubRepository) Create(ctx context.Context, club *domain.Club) error {
	args := m.Called(ctx, club)
	return args.Error(0)
}

func (m *MockClubRepository) GetByID(ctx context.Context, id int64) (*domain.Club, error) {
	args := m.Called(ctx, id)
	return get[*domain.Club](args, 0), args.Error(1)
}

func (m *MockClubRepository) Update(ctx context.Context, club *domain.Club) error {
	args := m.Called(ctx, club)
	return args.Error(0)
}

func (m *MockClubRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClubRepository) List(ctx context.Context, filter domain.ClubFilter) ([]*domain.Club, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.Club](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockClubRepository) CountMembers(ctx context.Context, clubID int64) (int, error) {
	args := m.Called(ctx, clubID)
	return get[int](args, 0), args.Error(1)
}

func (m *MockClubRepository) IsMember(ctx context.Context, clubID, studentID int64) (bool, error) {
	args := m.Called(ctx, clubID, studentID)
	return get[bool](args, 0), args.Error(1)
}

func (m *MockClubRepository) AddMember(ctx context.Context, membership *domain.ClubMembership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockClubRepository) RemoveMember(ctx context.Context, clubID, studentID int64) error {
	args := m.Called(ctx, clubID, studentID)
	return args.Error(0)
}

func (m *MockClubRepository) ListMembers(ctx context.Context, clubID int64) ([]*domain.ClubMembership, error) {
	args := m.Called(ctx, clubID)
	return get[[]*domain.ClubMembership](args, 0), args.Error(1)
}

type MockCoachingSessionRepository struct {
	mock.Mock
}

func (m *MockCoachingSessionRepository) Create(ctx context.Context, s *domain.CoachingSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockCoachingSessionRepository) GetByID(ctx context.Context, id int64) (*domain.CoachingSession, error) {
	args := m.Called(ctx, id)
	return get[*domain.CoachingSession](args, 0), args.Error(1)
}

func (m *MockCoachingSessionRepository) Update(ctx context.Context, s *domain.CoachingSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockCoachingSessionRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCoachingSessionRepository) List(ctx context.Context, filter domain.CoachingSessionFilter) ([]*domain.CoachingSession, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.CoachingSession](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockCoachingSessionRepository) ListOnDate(ctx context.Context, s *domain.CoachingSession) ([]*domain.CoachingSession, error) {
	args := m.Called(ctx, s)
	return get[[]*domain.CoachingSession](args, 0), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	return get[*domain.Notification](args, 0), args.Error(1)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) List(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.Notification](args, 0), get[int](args, 1), args.Error(2)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, at)
	return get[int64](args, 0), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return get[int](args, 0), args.Error(1)
}

func (m *MockNotificationRepository) ExistsSince(ctx context.Context, userID, kind string, entityID int64, since time.Time) (bool, error) {
	args := m.Called(ctx, userID, kind, entityID, since)
	return get[bool](args, 0), args.Error(1)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *domain.StudentDocument) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id int64) (*domain.StudentDocument, error) {
	args := m.Called(ctx, id)
	return get[*domain.StudentDocument](args, 0), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) List(ctx context.Context, filter domain.StudentDocumentFilter) ([]*domain.StudentDocument, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.StudentDocument](args, 0), get[int](args, 1), args.Error(2)
}

type MockCertificateRepository struct {
	mock.Mock
}

func (m *MockCertificateRepository) Create(ctx context.Context, c *domain.Certificate) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCertificateRepository) GetByID(ctx context.Context, id int64) (*domain.Certificate, error) {
	args := m.Called(ctx, id)
	return get[*domain.Certificate](args, 0), args.Error(1)
}

func (m *MockCertificateRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCertificateRepository) List(ctx context.Context, filter domain.CertificateFilter) ([]*domain.Certificate, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*domain.Certificate](args, 0), get[int](args, 1), args.Error(2)
}

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) GetUser(ctx context.Context, userID string) (*domain.UserIdentity, error) {
	args := m.Called(ctx, userID)
	return get[*domain.UserIdentity](args, 0), args.Error(1)
}

// Transactor runs fn directly and counts the units of work it was given.
type Transactor struct {
	Calls int
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}
