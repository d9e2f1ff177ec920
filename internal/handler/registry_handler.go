package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-registry-api/internal/middleware"
	"github.com/noah-isme/degree-registry-api/internal/models"
	"github.com/noah-isme/degree-registry-api/internal/service"
	appErrors "github.com/noah-isme/degree-registry-api/pkg/errors"
	"github.com/noah-isme/degree-registry-api/pkg/response"
)

type registryService interface {
	RegisterProfessor(ctx context.Context, caller models.Principal, req service.RegisterProfessorRequest) (*models.Professor, error)
	RegisterStudent(ctx context.Context, caller models.Principal, req service.RegisterStudentRequest) (*models.Student, error)
	RegisterCourse(ctx context.Context, caller models.Principal, req service.RegisterCourseRequest) (*models.Course, error)
	RegisterClass(ctx context.Context, caller models.Principal, req service.RegisterClassRequest) (*service.RegisterClassResponse, error)
	EnrollStudent(ctx context.Context, caller models.Principal, classID int64, req service.EnrollStudentRequest) (*service.EnrollmentStatus, error)
	IsStudentEnrolled(ctx context.Context, classID, studentID int64) *service.EnrollmentStatus
	AssignDegree(ctx context.Context, caller models.Principal, classID int64, req service.AssignDegreeRequest) (*models.DegreeRecord, error)
	AlterDegree(ctx context.Context, caller models.Principal, classID, studentID int64, req service.AlterDegreeRequest) (*models.DegreeRecord, error)
	SeeDegree(ctx context.Context, classID, studentID int64) (*models.DegreeView, error)
	SeeAllDegreesClass(ctx context.Context, caller models.Principal, classID int64) (*models.ClassDegrees, bool, error)
	ClassRoster(ctx context.Context, caller models.Principal, classID int64) (*models.ClassRoster, error)
	ExportClassDegrees(ctx context.Context, caller models.Principal, classID int64, format string) (*service.ExportFile, error)
	Professor(ctx context.Context, principal models.Principal) (*models.Professor, error)
	Student(ctx context.Context, studentID int64) (*models.Student, error)
	Course(ctx context.Context, code string) (*models.Course, error)
	Class(ctx context.Context, classID int64) (*models.Class, error)
	Classes(ctx context.Context) []models.Class
	Stats(ctx context.Context) models.RegistryStats
	Journal(ctx context.Context, afterSeq int64, limit int) ([]models.JournalEntry, error)
}

// RegistryHandler exposes participant, catalogue and journal endpoints.
type RegistryHandler struct {
	service registryService
}

// NewRegistryHandler constructs RegistryHandler.
func NewRegistryHandler(service registryService) *RegistryHandler {
	return &RegistryHandler{service: service}
}

// RegisterProfessor godoc
// @Summary Register caller as professor
// @Tags Professors
// @Accept json
// @Produce json
// @Param payload body service.RegisterProfessorRequest true "Professor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /professors [post]
func (h *RegistryHandler) RegisterProfessor(c *gin.Context) {
	var req service.RegisterProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	professor, err := h.service.RegisterProfessor(c.Request.Context(), callerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, professor)
}

// Me godoc
// @Summary Current professor profile
// @Tags Professors
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /professors/me [get]
func (h *RegistryHandler) Me(c *gin.Context) {
	professor, err := h.service.Professor(c.Request.Context(), callerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor)
}

// GetProfessor godoc
// @Summary Get professor
// @Tags Professors
// @Produce json
// @Param principal path string true "Professor principal"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /professors/{principal} [get]
func (h *RegistryHandler) GetProfessor(c *gin.Context) {
	professor, err := h.service.Professor(c.Request.Context(), models.Principal(c.Param("principal")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor)
}

// RegisterStudent godoc
// @Summary Register caller as student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.RegisterStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *RegistryHandler) RegisterStudent(c *gin.Context) {
	var req service.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.service.RegisterStudent(c.Request.Context(), callerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// GetStudent godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentId} [get]
func (h *RegistryHandler) GetStudent(c *gin.Context) {
	studentID, err := idParam(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.service.Student(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// RegisterCourse godoc
// @Summary Register course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.RegisterCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *RegistryHandler) RegisterCourse(c *gin.Context) {
	var req service.RegisterCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.service.RegisterCourse(c.Request.Context(), callerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// GetCourse godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{code} [get]
func (h *RegistryHandler) GetCourse(c *gin.Context) {
	course, err := h.service.Course(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Journal godoc
// @Summary List committed commands
// @Tags Journal
// @Produce json
// @Param after query int false "Return entries with a greater sequence"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /journal [get]
func (h *RegistryHandler) Journal(c *gin.Context) {
	after, err := strconv.ParseInt(c.DefaultQuery("after", "0"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid after"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid limit"))
		return
	}
	entries, err := h.service.Journal(c.Request.Context(), after, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"count": len(entries)}
	if n := len(entries); n > 0 {
		meta["next_after"] = entries[n-1].Seq
	}
	response.JSON(c, http.StatusOK, entries, meta)
}

// Stats godoc
// @Summary Registry statistics
// @Tags Journal
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *RegistryHandler) Stats(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Stats(c.Request.Context()))
}

// RegisterClass godoc
// @Summary Open class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.RegisterClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes [post]
func (h *RegistryHandler) RegisterClass(c *gin.Context) {
	var req service.RegisterClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	created, err := h.service.RegisterClass(c.Request.Context(), callerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// ListClasses godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *RegistryHandler) ListClasses(c *gin.Context) {
	classes := h.service.Classes(c.Request.Context())
	response.JSON(c, http.StatusOK, classes, map[string]interface{}{"count": len(classes)})
}

// GetClass godoc
// @Summary Get class
// @Tags Classes
// @Produce json
// @Param classId path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{classId} [get]
func (h *RegistryHandler) GetClass(c *gin.Context) {
	classID, err := idParam(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.service.Class(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// Roster godoc
// @Summary Class roster
// @Tags Classes
// @Produce json
// @Param classId path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classes/{classId}/roster [get]
func (h *RegistryHandler) Roster(c *gin.Context) {
	classID, err := idParam(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	roster, err := h.service.ClassRoster(c.Request.Context(), callerFromContext(c), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster)
}

// Enroll godoc
// @Summary Enroll student in class
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param classId path int true "Class ID"
// @Param payload body service.EnrollStudentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{classId}/enrollments [post]
func (h *RegistryHandler) Enroll(c *gin.Context) {
	classID, err := idParam(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	status, err := h.service.EnrollStudent(c.Request.Context(), callerFromContext(c), classID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, status)
}

// EnrollmentStatus godoc
// @Summary Check enrollment
// @Tags Enrollments
// @Produce json
// @Param classId path int true "Class ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/enrollments/{studentId} [get]
func (h *RegistryHandler) EnrollmentStatus(c *gin.Context) {
	classID, err := idParam(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := idParam(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.IsStudentEnrolled(c.Request.Context(), classID, studentID))
}

// AssignDegree godoc
// @Summary Assign degree
// @Tags Degrees
// @Accept json
// @Produce json
// @Param classId path int true "Class ID"
// @Param payload body service.AssignDegreeRequest true "Degree payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classes/{classId}/degrees [post]
func (h *RegistryHandler) AssignDegree(c *gin.Context) {
	classID, err := idParam(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AssignDegreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.AssignDegree(c.Request.Context(), callerFromContext(c), classID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// AlterDegree godoc
// @Summary Alter degree
// @Tags Degrees
// @Accept json
// @Produce json
// @Param classId path int true "Class ID"
// @Param studentId path int true "Student ID"
// @Param payload body service.AlterDegreeRequest true "Degree payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classes/{classId}/degrees/{studentId} [put]
func (h *RegistryHandler) AlterDegree(c *gin.Context) {
	classID, err := idParam(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := idParam(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AlterDegreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.AlterDegree(c.Request.Context(), callerFromContext(c), classID, studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// SeeDegree godoc
// @Summary Get degree
// @Tags Degrees
// @Produce json
// @Param classId path int true "Class ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{classId}/degrees/{studentId} [get]
func (h *RegistryHandler) SeeDegree(c *gin.Context) {
	classID, err := idParam(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := idParam(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.SeeDegree(c.Request.Context(), classID, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// SeeAllDegrees godoc
// @Summary List class degrees
// @Tags Degrees
// @Produce json
// @Param classId path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{classId}/degrees [get]
func (h *RegistryHandler) SeeAllDegrees(c *gin.Context) {
	classID, err := idParam(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	degrees, hit, err := h.service.SeeAllDegreesClass(c.Request.Context(), callerFromContext(c), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, degrees, middleware.ExtractMeta(c))
}

// ExportDegrees godoc
// @Summary Export class roster
// @Tags Degrees
// @Produce octet-stream
// @Param classId path int true "Class ID"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classes/{classId}/degrees/export [get]
func (h *RegistryHandler) ExportDegrees(c *gin.Context) {
	classID, err := idParam(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.ExportClassDegrees(c.Request.Context(), callerFromContext(c), classID, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Register mounts the registry routes on an authenticated group.
func (h *RegistryHandler) Register(group *gin.RouterGroup) {
	group.POST("/professors", h.RegisterProfessor)
	group.GET("/professors/me", h.Me)
	group.GET("/professors/:principal", h.GetProfessor)

	group.POST("/students", h.RegisterStudent)
	group.GET("/students/:studentId", h.GetStudent)

	group.POST("/courses", h.RegisterCourse)
	group.GET("/courses/:code", h.GetCourse)

	group.POST("/classes", h.RegisterClass)
	group.GET("/classes", h.ListClasses)
	group.GET("/classes/:classId", h.GetClass)
	group.GET("/classes/:classId/roster", h.Roster)
	group.POST("/classes/:classId/enrollments", h.Enroll)
	group.GET("/classes/:classId/enrollments/:studentId", h.EnrollmentStatus)
	group.POST("/classes/:classId/degrees", h.AssignDegree)
	group.GET("/classes/:classId/degrees", h.SeeAllDegrees)
	group.GET("/classes/:classId/degrees/export", h.ExportDegrees)
	group.GET("/classes/:classId/degrees/:studentId", h.SeeDegree)
	group.PUT("/classes/:classId/degrees/:studentId", h.AlterDegree)

	group.GET("/journal", h.Journal)
	group.GET("/stats", h.Stats)
}
