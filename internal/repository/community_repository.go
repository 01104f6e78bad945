package repository

import (
	"context"
	"time"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/jmoiron/sqlx"
)

var (
	announcements = table{
		name: "announcements",
		columns: []string{
			"title", "content", "target_audience", "priority", "publish_date", "expiry_date", "is_published",
			"author_id", "created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}

	calendarEvents = table{
		name: "calendar_events",
		columns: []string{
			"title", "description", "event_type", "start_date", "end_date", "is_all_day", "location",
			"academic_term_id", "created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}

	clubs = table{
		name: "clubs",
		columns: []string{
			"name", "description", "advisor_teacher_id", "max_members", "meeting_day", "is_active",
			"created_at", "updated_at",
		},
	}

	clubMembers = table{
		name:    "club_members",
		columns: []string{"club_id", "student_id", "role", "joined_at"},
	}

	notifications = table{
		name: "notifications",
		columns: []string{
			"user_id", "title", "message", "notification_type", "is_read", "read_at",
			"related_entity_type", "related_entity_id", "created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}
)

type announcementRepository struct {
	crud[domain.Announcement]
}

func NewAnnouncementRepository(db *sqlx.DB) AnnouncementRepository {
	return &announcementRepository{crud[domain.Announcement]{base{db}, announcements}}
}

func (r *announcementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	id, err := r.insert(ctx, a)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *announcementRepository) GetByID(ctx context.Context, id int64) (*domain.Announcement, error) {
	return r.get(ctx, id)
}

func (r *announcementRepository) Update(ctx context.Context, a *domain.Announcement) error {
	return r.update(ctx, a)
}

func (r *announcementRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *announcementRepository) List(ctx context.Context, filter domain.AnnouncementFilter) ([]*domain.Announcement, int, error) {
	q := newListQuery("priority DESC, publish_date DESC, id DESC").
		whereIf(filter.TargetAudience != "", "target_audience = ?", filter.TargetAudience).
		whereIf(filter.PublishedOnly, "is_published = TRUE").
		search(filter.Search, "title", "content")
	return r.list(ctx, q, filter.PageRequest)
}

func (r *announcementRepository) ListVisible(ctx context.Context, audience string, now time.Time) ([]*domain.Announcement, error) {
	q := newListQuery("priority DESC, publish_date DESC, id DESC").
		where("is_published = TRUE").
		where("publish_date <= ?", now).
		where("(expiry_date IS NULL OR expiry_date > ?)", now).
		whereIf(audience != "" && audience != domain.AudienceAll,
			"target_audience IN (?, ?)", audience, domain.AudienceAll)
	return r.all(ctx, q)
}

type calendarEventRepository struct {
	crud[domain.CalendarEvent]
}

func NewCalendarEventRepository(db *sqlx.DB) CalendarEventRepository {
	return &calendarEventRepository{crud[domain.CalendarEvent]{base{db}, calendarEvents}}
}

func (r *calendarEventRepository) Create(ctx context.Context, e *domain.CalendarEvent) error {
	id, err := r.insert(ctx, e)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *calendarEventRepository) GetByID(ctx context.Context, id int64) (*domain.CalendarEvent, error) {
	return r.get(ctx, id)
}

func (r *calendarEventRepository) Update(ctx context.Context, e *domain.CalendarEvent) error {
	return r.update(ctx, e)
}

func (r *calendarEventRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

// List returns events intersecting [From, To) when a range is given.
func (r *calendarEventRepository) List(ctx context.Context, filter domain.CalendarEventFilter) ([]*domain.CalendarEvent, int, error) {
	q := newListQuery("start_date, id").
		whereIf(filter.EventType != "", "event_type = ?", filter.EventType).
		whereIf(filter.AcademicTermID != nil, "academic_term_id = ?", deref(filter.AcademicTermID)).
		whereIf(filter.From != nil, "end_date >= ?", deref(filter.From)).
		whereIf(filter.To != nil, "start_date < ?", deref(filter.To))
	return r.list(ctx, q, filter.PageRequest)
}

type clubRepository struct {
	crud[domain.Club]
}

func NewClubRepository(db *sqlx.DB) ClubRepository {
	return &clubRepository{crud[domain.Club]{base{db}, clubs}}
}

func (r *clubRepository) Create(ctx context.Context, club *domain.Club) error {
	id, err := r.insert(ctx, club)
	if err != nil {
		return err
	}
	club.ID = id
	return nil
}

func (r *clubRepository) GetByID(ctx context.Context, id int64) (*domain.Club, error) {
	club, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if club.MemberCount, err = r.CountMembers(ctx, id); err != nil {
		return nil, err
	}
	return club, nil
}

func (r *clubRepository) Update(ctx context.Context, club *domain.Club) error {
	return r.update(ctx, club)
}

// Delete removes the club and its memberships.
func (r *clubRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.conn(ctx).ExecContext(ctx, "DELETE FROM club_members WHERE club_id = $1", id); err != nil {
		return err
	}
	return r.remove(ctx, id)
}

func (r *clubRepository) List(ctx context.Context, filter domain.ClubFilter) ([]*domain.Club, int, error) {
	q := newListQuery("name, id").
		whereIf(filter.ActiveOnly, "is_active = TRUE").
		search(filter.Search, "name", "description")

	items, total, err := r.list(ctx, q, filter.PageRequest)
	if err != nil || len(items) == 0 {
		return items, total, err
	}

	if err := r.fillMemberCounts(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *clubRepository) fillMemberCounts(ctx context.Context, items []*domain.Club) error {
	ids := make([]int64, len(items))
	for i, c := range items {
		ids[i] = c.ID
	}

	query, args, err := sqlx.In(`
		SELECT club_id, COUNT(*) AS member_count
		FROM club_members
		WHERE club_id IN (?)
		GROUP BY club_id
	`, ids)
	if err != nil {
		return err
	}

	var rows []struct {
		ClubID      int64 `db:"club_id"`
		MemberCount int   `db:"member_count"`
	}
	if err := r.conn(ctx).SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		return err
	}

	counts := make(map[int64]int, len(rows))
	for _, row := range rows {
		counts[row.ClubID] = row.MemberCount
	}
	for _, c := range items {
		c.MemberCount = counts[c.ID]
	}
	return nil
}

func (r *clubRepository) CountMembers(ctx context.Context, clubID int64) (int, error) {
	var count int
	err := r.conn(ctx).GetContext(ctx, &count, "SELECT COUNT(*) FROM club_members WHERE club_id = $1", clubID)
	return count, err
}

func (r *clubRepository) IsMember(ctx context.Context, clubID, studentID int64) (bool, error) {
	var found bool
	err := r.conn(ctx).GetContext(ctx, &found,
		"SELECT EXISTS (SELECT 1 FROM club_members WHERE club_id = $1 AND student_id = $2)", clubID, studentID)
	return found, err
}

func (r *clubRepository) AddMember(ctx context.Context, m *domain.ClubMembership) error {
	id, err := r.namedReturningID(ctx, clubMembers.insertQuery(), m)
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func (r *clubRepository) RemoveMember(ctx context.Context, clubID, studentID int64) error {
	return r.exec(ctx, "DELETE FROM club_members WHERE club_id = $1 AND student_id = $2", clubID, studentID)
}

func (r *clubRepository) ListMembers(ctx context.Context, clubID int64) ([]*domain.ClubMembership, error) {
	query := "SELECT " + clubMembers.selectList() + " FROM club_members WHERE club_id = $1 ORDER BY joined_at, id"

	items := []*domain.ClubMembership{}
	if err := r.conn(ctx).SelectContext(ctx, &items, query, clubID); err != nil {
		return nil, err
	}
	return items, nil
}

type notificationRepository struct {
	crud[domain.Notification]
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{crud[domain.Notification]{base{db}, notifications}}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	id, err := r.insert(ctx, n)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	return r.get(ctx, id)
}

func (r *notificationRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *notificationRepository) List(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, int, error) {
	q := newListQuery("created_at DESC, id DESC").
		whereIf(filter.UserID != "", "user_id = ?", filter.UserID).
		whereIf(filter.UnreadOnly, "is_read = FALSE")
	return r.list(ctx, q, filter.PageRequest)
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $2), updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE
	`
	return r.exec(ctx, query, id, at)
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $2, updated_at = $2
		WHERE user_id = $1 AND is_read = FALSE AND is_deleted = FALSE
	`

	res, err := r.conn(ctx).ExecContext(ctx, query, userID, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.conn(ctx).GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE AND is_deleted = FALSE", userID)
	return count, err
}

func (r *notificationRepository) ExistsSince(ctx context.Context, userID, kind string, entityID int64, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND notification_type = $2 AND related_entity_id = $3
				AND created_at >= $4 AND is_deleted = FALSE
		)
	`

	var found bool
	err := r.conn(ctx).GetContext(ctx, &found, query, userID, kind, entityID, since)
	return found, err
}
