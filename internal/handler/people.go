package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/school-portal/internal/access"
	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/service"
	"github.com/segyhp/school-portal/pkg/response"
)

type studentVisibility interface {
	CanAccessStudent(ctx context.Context, userID string, studentID int64) (bool, error)
	GetAccessibleStudentIDs(ctx context.Context, userID string) ([]int64, bool, error)
}

// PeopleHandler serves parents, coaching sessions and advisor access.
type PeopleHandler struct {
	base
	parents       *service.ParentService
	coaching      *service.CoachingSessionService
	advisorAccess *access.AdvisorAccessService
	parentAccess  *access.ParentAccessService
}

func NewPeopleHandler(
	parents *service.ParentService,
	coaching *service.CoachingSessionService,
	advisorAccess *access.AdvisorAccessService,
	parentAccess *access.ParentAccessService,
	policies PolicyResolver,
) *PeopleHandler {
	return &PeopleHandler{
		base:          newBase(policies),
		parents:       parents,
		coaching:      coaching,
		advisorAccess: advisorAccess,
		parentAccess:  parentAccess,
	}
}

func (h *PeopleHandler) Register(r *mux.Router) {
	r.HandleFunc("/parents", h.ListParents).Methods(http.MethodGet)
	r.HandleFunc("/parents", h.CreateParent).Methods(http.MethodPost)
	r.HandleFunc("/parents/{id}", h.GetParent).Methods(http.MethodGet)
	r.HandleFunc("/parents/{id}", h.UpdateParent).Methods(http.MethodPut)
	r.HandleFunc("/parents/{id}", h.DeleteParent).Methods(http.MethodDelete)
	r.HandleFunc("/parents/{id}/students", h.GetParentStudents).Methods(http.MethodGet)
	r.HandleFunc("/parents/{id}/students", h.LinkStudent).Methods(http.MethodPost)
	r.HandleFunc("/parents/{id}/students/{studentId}", h.UnlinkStudent).Methods(http.MethodDelete)

	r.HandleFunc("/coaching-sessions", h.ListSessions).Methods(http.MethodGet)
	r.HandleFunc("/coaching-sessions", h.CreateSession).Methods(http.MethodPost)
	r.HandleFunc("/coaching-sessions/{id}", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/coaching-sessions/{id}", h.UpdateSession).Methods(http.MethodPut)
	r.HandleFunc("/coaching-sessions/{id}", h.DeleteSession).Methods(http.MethodDelete)
	r.HandleFunc("/coaching-sessions/{id}/complete", h.CompleteSession).Methods(http.MethodPost)
	r.HandleFunc("/coaching-sessions/{id}/cancel", h.CancelSession).Methods(http.MethodPost)

	r.HandleFunc("/advisors/{teacherId}/students", h.AssignAdvisee).Methods(http.MethodPost)
	r.HandleFunc("/advisors/{teacherId}/students/{studentId}", h.UnassignAdvisee).Methods(http.MethodDelete)
	r.HandleFunc("/access/advisor/students", h.visibleStudents(h.advisorAccess)).Methods(http.MethodGet)
	r.HandleFunc("/access/advisor/students/{studentId}", h.canSee(h.advisorAccess)).Methods(http.MethodGet)
	r.HandleFunc("/access/parent/students", h.visibleStudents(h.parentAccess)).Methods(http.MethodGet)
	r.HandleFunc("/access/parent/students/{studentId}", h.canSee(h.parentAccess)).Methods(http.MethodGet)
}

// Parents

func (h *PeopleHandler) CreateParent(w http.ResponseWriter, r *http.Request) {
	var req domain.ParentRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	parent, err := h.parents.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, parent)
}

func (h *PeopleHandler) GetParent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	parent, err := h.parents.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, parent)
}

func (h *PeopleHandler) UpdateParent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.ParentRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	parent, err := h.parents.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, parent)
}

func (h *PeopleHandler) DeleteParent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.parents.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *PeopleHandler) ListParents(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.parents.List(r.Context(), domain.ParentFilter{
		Search:      r.URL.Query().Get("search"),
		PageRequest: page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *PeopleHandler) LinkStudent(w http.ResponseWriter, r *http.Request) {
	parentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.LinkStudentRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	link, err := h.parents.LinkStudent(r.Context(), parentID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, link)
}

func (h *PeopleHandler) UnlinkStudent(w http.ResponseWriter, r *http.Request) {
	parentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	studentID, err := pathID(r, "studentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.parents.UnlinkStudent(r.Context(), parentID, studentID); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *PeopleHandler) GetParentStudents(w http.ResponseWriter, r *http.Request) {
	parentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	students, err := h.parents.GetStudents(r.Context(), parentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, students)
}

// Coaching sessions

func (h *PeopleHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req domain.CoachingSessionRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := h.coaching.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, session)
}

func (h *PeopleHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	session, err := h.coaching.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorize(r.Context(), session.StudentID); err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, session)
}

func (h *PeopleHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.CoachingSessionRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := h.coaching.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, session)
}

func (h *PeopleHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.coaching.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *PeopleHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	filter := domain.CoachingSessionFilter{Status: r.URL.Query().Get("status")}
	var err error
	if filter.StudentID, err = queryInt64(r, "student_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.TeacherID, err = queryInt64(r, "teacher_id"); err != nil {
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
	if err := h.scope(r.Context(), filter.StudentID); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.coaching.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

type completeSessionRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

func (h *PeopleHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req completeSessionRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := h.coaching.Complete(r.Context(), id, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, session)
}

func (h *PeopleHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	session, err := h.coaching.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, session)
}

// Advisor assignments and access queries

type adviseeRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

func (h *PeopleHandler) AssignAdvisee(w http.ResponseWriter, r *http.Request) {
	teacherID, err := pathID(r, "teacherId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req adviseeRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	link, err := h.advisorAccess.AssignStudent(r.Context(), teacherID, req.StudentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, link)
}

func (h *PeopleHandler) UnassignAdvisee(w http.ResponseWriter, r *http.Request) {
	teacherID, err := pathID(r, "teacherId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	studentID, err := pathID(r, "studentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.advisorAccess.UnassignStudent(r.Context(), teacherID, studentID); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

type visibleStudentsResponse struct {
	All        bool    `json:"all"`
	StudentIDs []int64 `json:"student_ids"`
}

func (h *PeopleHandler) visibleStudents(v studentVisibility) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, all, err := v.GetAccessibleStudentIDs(r.Context(), CallerID(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if ids == nil {
			ids = []int64{}
		}
		response.Success(w, visibleStudentsResponse{All: all, StudentIDs: ids})
	}
}

func (h *PeopleHandler) canSee(v studentVisibility) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := pathID(r, "studentId")
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok, err := v.CanAccessStudent(r.Context(), CallerID(r.Context()), studentID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Success(w, map[string]bool{"allowed": ok})
	}
}
