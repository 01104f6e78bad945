package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/service"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/response"
)

// AcademicHandler serves terms, courses, classrooms, the weekly timetable
// and class assignments.
type AcademicHandler struct {
	base
	terms       *service.AcademicTermService
	courses     *service.CourseService
	classrooms  *service.ClassroomService
	schedules   *service.ScheduleService
	assignments *service.StudentClassAssignmentService
}

func NewAcademicHandler(
	terms *service.AcademicTermService,
	courses *service.CourseService,
	classrooms *service.ClassroomService,
	schedules *service.ScheduleService,
	assignments *service.StudentClassAssignmentService,
	policies PolicyResolver,
) *AcademicHandler {
	return &AcademicHandler{
		base:        newBase(policies),
		terms:       terms,
		courses:     courses,
		classrooms:  classrooms,
		schedules:   schedules,
		assignments: assignments,
	}
}

func (h *AcademicHandler) Register(r *mux.Router) {
	r.HandleFunc("/academic-terms", h.ListTerms).Methods(http.MethodGet)
	r.HandleFunc("/academic-terms", h.CreateTerm).Methods(http.MethodPost)
	r.HandleFunc("/academic-terms/current", h.GetCurrentTerm).Methods(http.MethodGet)
	r.HandleFunc("/academic-terms/{id}", h.GetTerm).Methods(http.MethodGet)
	r.HandleFunc("/academic-terms/{id}", h.UpdateTerm).Methods(http.MethodPut)
	r.HandleFunc("/academic-terms/{id}", h.DeleteTerm).Methods(http.MethodDelete)
	r.HandleFunc("/academic-terms/{id}/set-current", h.SetCurrentTerm).Methods(http.MethodPost)

	r.HandleFunc("/courses", h.ListCourses).Methods(http.MethodGet)
	r.HandleFunc("/courses", h.CreateCourse).Methods(http.MethodPost)
	r.HandleFunc("/courses/{id}", h.GetCourse).Methods(http.MethodGet)
	r.HandleFunc("/courses/{id}", h.UpdateCourse).Methods(http.MethodPut)
	r.HandleFunc("/courses/{id}", h.DeleteCourse).Methods(http.MethodDelete)

	r.HandleFunc("/classrooms", h.ListClassrooms).Methods(http.MethodGet)
	r.HandleFunc("/classrooms", h.CreateClassroom).Methods(http.MethodPost)
	r.HandleFunc("/classrooms/available", h.GetAvailableClassrooms).Methods(http.MethodGet)
	r.HandleFunc("/classrooms/{id}", h.GetClassroom).Methods(http.MethodGet)
	r.HandleFunc("/classrooms/{id}", h.UpdateClassroom).Methods(http.MethodPut)
	r.HandleFunc("/classrooms/{id}", h.DeleteClassroom).Methods(http.MethodDelete)

	r.HandleFunc("/schedules", h.ListSchedules).Methods(http.MethodGet)
	r.HandleFunc("/schedules", h.CreateSchedule).Methods(http.MethodPost)
	r.HandleFunc("/schedules/{id}", h.GetSchedule).Methods(http.MethodGet)
	r.HandleFunc("/schedules/{id}", h.UpdateSchedule).Methods(http.MethodPut)
	r.HandleFunc("/schedules/{id}", h.DeleteSchedule).Methods(http.MethodDelete)
	r.HandleFunc("/academic-terms/{termId}/class-groups/{group}/schedules", h.GetClassGroupSchedule).Methods(http.MethodGet)
	r.HandleFunc("/teachers/{teacherId}/schedules", h.GetTeacherSchedule).Methods(http.MethodGet)

	r.HandleFunc("/class-assignments", h.ListAssignments).Methods(http.MethodGet)
	r.HandleFunc("/class-assignments", h.Assign).Methods(http.MethodPost)
	r.HandleFunc("/class-assignments/{id}", h.GetAssignment).Methods(http.MethodGet)
	r.HandleFunc("/class-assignments/{id}", h.Unassign).Methods(http.MethodDelete)
}

// Academic terms

func (h *AcademicHandler) CreateTerm(w http.ResponseWriter, r *http.Request) {
	var req domain.AcademicTermRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	term, err := h.terms.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, term)
}

func (h *AcademicHandler) GetTerm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	term, err := h.terms.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, term)
}

func (h *AcademicHandler) UpdateTerm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.AcademicTermRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	term, err := h.terms.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, term)
}

func (h *AcademicHandler) DeleteTerm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.terms.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *AcademicHandler) ListTerms(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.terms.List(r.Context(), domain.AcademicTermFilter{
		AcademicYear: r.URL.Query().Get("academic_year"),
		ActiveOnly:   queryBool(r, "active_only"),
		PageRequest:  page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *AcademicHandler) GetCurrentTerm(w http.ResponseWriter, r *http.Request) {
	term, err := h.terms.GetCurrent(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, term)
}

func (h *AcademicHandler) SetCurrentTerm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	term, err := h.terms.SetCurrent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, term)
}

// Courses

func (h *AcademicHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req domain.CourseRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	course, err := h.courses.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, course)
}

func (h *AcademicHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	course, err := h.courses.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, course)
}

func (h *AcademicHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.CourseRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	course, err := h.courses.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, course)
}

func (h *AcademicHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.courses.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *AcademicHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.courses.List(r.Context(), domain.CourseFilter{
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

// Classrooms

func (h *AcademicHandler) CreateClassroom(w http.ResponseWriter, r *http.Request) {
	var req domain.ClassroomRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	room, err := h.classrooms.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, room)
}

func (h *AcademicHandler) GetClassroom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	room, err := h.classrooms.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, room)
}

func (h *AcademicHandler) UpdateClassroom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.ClassroomRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	room, err := h.classrooms.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, room)
}

func (h *AcademicHandler) DeleteClassroom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.classrooms.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *AcademicHandler) ListClassrooms(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	minCapacity, err := queryInt(r, "min_capacity")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	result, err := h.classrooms.List(r.Context(), domain.ClassroomFilter{
		Search:      q.Get("search"),
		Building:    q.Get("building"),
		MinCapacity: minCapacity,
		ActiveOnly:  queryBool(r, "active_only"),
		PageRequest: page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

// GetAvailableClassrooms answers
// ?day_of_week=1&start_time=09:00&end_time=10:00[&on=2024-10-07][&min_capacity=30].
func (h *AcademicHandler) GetAvailableClassrooms(w http.ResponseWriter, r *http.Request) {
	q, err := availabilityQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rooms, err := h.classrooms.GetAvailable(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, rooms)
}

func availabilityQuery(r *http.Request) (domain.AvailabilityQuery, error) {
	var q domain.AvailabilityQuery
	day, err := weekday(r, "day_of_week")
	if err != nil {
		return q, err
	}
	if day == nil {
		return q, customError.WrapValidation("day_of_week zorunludur")
	}
	q.DayOfWeek = *day

	if q.StartTime, err = domain.ParseTimeOfDay(r.URL.Query().Get("start_time")); err != nil {
		return q, customError.WrapValidation(err.Error())
	}
	if q.EndTime, err = domain.ParseTimeOfDay(r.URL.Query().Get("end_time")); err != nil {
		return q, customError.WrapValidation(err.Error())
	}
	on, err := queryDate(r, "on")
	if err != nil {
		return q, err
	}
	if on != nil {
		q.On = *on
	}
	q.MinCapacity, err = queryInt(r, "min_capacity")
	return q, err
}

func weekday(r *http.Request, name string) (*time.Weekday, error) {
	if r.URL.Query().Get(name) == "" {
		return nil, nil
	}
	n, err := queryInt(r, name)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > 6 {
		return nil, customError.WrapValidation(fmt.Sprintf("%s 0 ile 6 arasında olmalıdır", name))
	}
	d := time.Weekday(n)
	return &d, nil
}

// Weekly schedules

func (h *AcademicHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req domain.WeeklyScheduleRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	lesson, err := h.schedules.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, lesson)
}

func (h *AcademicHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	lesson, err := h.schedules.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, lesson)
}

func (h *AcademicHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.WeeklyScheduleRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	lesson, err := h.schedules.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, lesson)
}

func (h *AcademicHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.schedules.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *AcademicHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	filter := domain.WeeklyScheduleFilter{ClassGroup: r.URL.Query().Get("class_group")}
	var err error
	if filter.AcademicTermID, err = queryInt64(r, "academic_term_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.TeacherID, err = queryInt64(r, "teacher_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.ClassroomID, err = queryInt64(r, "classroom_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.DayOfWeek, err = weekday(r, "day_of_week"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.PageRequest, err = pageParams(r); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.schedules.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *AcademicHandler) GetClassGroupSchedule(w http.ResponseWriter, r *http.Request) {
	termID, err := pathID(r, "termId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.schedules.GetByClassGroup(r.Context(), termID, mux.Vars(r)["group"], page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *AcademicHandler) GetTeacherSchedule(w http.ResponseWriter, r *http.Request) {
	teacherID, err := pathID(r, "teacherId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.schedules.GetByTeacher(r.Context(), teacherID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

// Class assignments

func (h *AcademicHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req domain.StudentClassAssignmentRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	assignment, err := h.assignments.Assign(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, assignment)
}

func (h *AcademicHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	assignment, err := h.assignments.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorize(r.Context(), assignment.StudentID); err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, assignment)
}

func (h *AcademicHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.assignments.Unassign(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *AcademicHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	filter := domain.StudentClassAssignmentFilter{ClassGroup: r.URL.Query().Get("class_group")}
	var err error
	if filter.StudentID, err = queryInt64(r, "student_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.AcademicTermID, err = queryInt64(r, "academic_term_id"); err != nil {
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
	result, err := h.assignments.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}
