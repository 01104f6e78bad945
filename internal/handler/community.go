package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/service"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/response"
)

// CommunityHandler serves announcements, the school calendar, clubs and the
// caller's notifications.
type CommunityHandler struct {
	base
	announcements *service.AnnouncementService
	events        *service.CalendarEventService
	clubs         *service.ClubService
	notifications *service.NotificationService
}

func NewCommunityHandler(
	announcements *service.AnnouncementService,
	events *service.CalendarEventService,
	clubs *service.ClubService,
	notifications *service.NotificationService,
	policies PolicyResolver,
) *CommunityHandler {
	return &CommunityHandler{
		base:          newBase(policies),
		announcements: announcements,
		events:        events,
		clubs:         clubs,
		notifications: notifications,
	}
}

func (h *CommunityHandler) Register(r *mux.Router) {
	r.HandleFunc("/announcements", h.ListAnnouncements).Methods(http.MethodGet)
	r.HandleFunc("/announcements", h.CreateAnnouncement).Methods(http.MethodPost)
	r.HandleFunc("/announcements/active", h.GetActiveAnnouncements).Methods(http.MethodGet)
	r.HandleFunc("/announcements/{id}", h.GetAnnouncement).Methods(http.MethodGet)
	r.HandleFunc("/announcements/{id}", h.UpdateAnnouncement).Methods(http.MethodPut)
	r.HandleFunc("/announcements/{id}", h.DeleteAnnouncement).Methods(http.MethodDelete)
	r.HandleFunc("/announcements/{id}/publish", h.PublishAnnouncement).Methods(http.MethodPost)
	r.HandleFunc("/announcements/{id}/unpublish", h.UnpublishAnnouncement).Methods(http.MethodPost)

	r.HandleFunc("/calendar-events", h.ListEvents).Methods(http.MethodGet)
	r.HandleFunc("/calendar-events", h.CreateEvent).Methods(http.MethodPost)
	r.HandleFunc("/calendar-events/range", h.GetEventsByRange).Methods(http.MethodGet)
	r.HandleFunc("/calendar-events/{id}", h.GetEvent).Methods(http.MethodGet)
	r.HandleFunc("/calendar-events/{id}", h.UpdateEvent).Methods(http.MethodPut)
	r.HandleFunc("/calendar-events/{id}", h.DeleteEvent).Methods(http.MethodDelete)

	r.HandleFunc("/clubs", h.ListClubs).Methods(http.MethodGet)
	r.HandleFunc("/clubs", h.CreateClub).Methods(http.MethodPost)
	r.HandleFunc("/clubs/{id}", h.GetClub).Methods(http.MethodGet)
	r.HandleFunc("/clubs/{id}", h.UpdateClub).Methods(http.MethodPut)
	r.HandleFunc("/clubs/{id}", h.DeleteClub).Methods(http.MethodDelete)
	r.HandleFunc("/clubs/{id}/members", h.ListClubMembers).Methods(http.MethodGet)
	r.HandleFunc("/clubs/{id}/members", h.AddClubMember).Methods(http.MethodPost)
	r.HandleFunc("/clubs/{id}/members/{studentId}", h.RemoveClubMember).Methods(http.MethodDelete)

	r.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	r.HandleFunc("/notifications", h.CreateNotification).Methods(http.MethodPost)
	r.HandleFunc("/notifications/unread-count", h.UnreadCount).Methods(http.MethodGet)
	r.HandleFunc("/notifications/read-all", h.MarkAllRead).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}/read", h.MarkRead).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}", h.DeleteNotification).Methods(http.MethodDelete)
}

// Announcements

func (h *CommunityHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req domain.AnnouncementRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.announcements.Create(r.Context(), CallerID(r.Context()), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, a)
}

func (h *CommunityHandler) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.announcements.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, a)
}

func (h *CommunityHandler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.AnnouncementRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.announcements.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, a)
}

func (h *CommunityHandler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.announcements.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *CommunityHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	result, err := h.announcements.List(r.Context(), domain.AnnouncementFilter{
		TargetAudience: q.Get("target_audience"),
		PublishedOnly:  queryBool(r, "published_only"),
		Search:         q.Get("search"),
		PageRequest:    page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *CommunityHandler) PublishAnnouncement(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

func (h *CommunityHandler) UnpublishAnnouncement(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *CommunityHandler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var a *domain.Announcement
	if published {
		a, err = h.announcements.Publish(r.Context(), id)
	} else {
		a, err = h.announcements.Unpublish(r.Context(), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, a)
}

func (h *CommunityHandler) GetActiveAnnouncements(w http.ResponseWriter, r *http.Request) {
	list, err := h.announcements.GetActive(r.Context(), r.URL.Query().Get("audience"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, list)
}

// Calendar events

func (h *CommunityHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.CalendarEventRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	event, err := h.events.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, event)
}

func (h *CommunityHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	event, err := h.events.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, event)
}

func (h *CommunityHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.CalendarEventRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	event, err := h.events.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, event)
}

func (h *CommunityHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.events.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *CommunityHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := domain.CalendarEventFilter{EventType: r.URL.Query().Get("event_type")}
	var err error
	if filter.AcademicTermID, err = queryInt64(r, "academic_term_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.From, err = queryDate(r, "from"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.PageRequest, err = pageParams(r); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.events.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *CommunityHandler) GetEventsByRange(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if from == nil || to == nil {
		writeError(w, r, customError.WrapValidation("from ve to zorunludur"))
		return
	}
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.events.GetByRange(r.Context(), *from, *to, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

// Clubs

func (h *CommunityHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	var req domain.ClubRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	club, err := h.clubs.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, club)
}

func (h *CommunityHandler) GetClub(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	club, err := h.clubs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, club)
}

func (h *CommunityHandler) UpdateClub(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.ClubRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	club, err := h.clubs.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, club)
}

func (h *CommunityHandler) DeleteClub(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.clubs.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *CommunityHandler) ListClubs(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.clubs.List(r.Context(), domain.ClubFilter{
		Search:      r.URL.Query().Get("search"),
		ActiveOnly:  queryBool(r, "active_only"),
		PageRequest: page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *CommunityHandler) AddClubMember(w http.ResponseWriter, r *http.Request) {
	clubID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.ClubMemberRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	member, err := h.clubs.AddMember(r.Context(), clubID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, member)
}

func (h *CommunityHandler) RemoveClubMember(w http.ResponseWriter, r *http.Request) {
	clubID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	studentID, err := pathID(r, "studentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.clubs.RemoveMember(r.Context(), clubID, studentID); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *CommunityHandler) ListClubMembers(w http.ResponseWriter, r *http.Request) {
	clubID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	members, err := h.clubs.ListMembers(r.Context(), clubID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, members)
}

// Notifications are always scoped to the caller.

func (h *CommunityHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req domain.NotificationRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.notifications.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, n)
}

func (h *CommunityHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.notifications.ListForUser(r.Context(), CallerID(r.Context()), queryBool(r, "unread_only"), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *CommunityHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.UnreadCount(r.Context(), CallerID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, map[string]int{"unread": count})
}

func (h *CommunityHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.notifications.MarkRead(r.Context(), id, CallerID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, n)
}

func (h *CommunityHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.notifications.MarkAllRead(r.Context(), CallerID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, map[string]int64{"updated": updated})
}

func (h *CommunityHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.notifications.Delete(r.Context(), id, CallerID(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}
