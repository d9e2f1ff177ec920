package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/degree-registry-api/internal/models"
	appErrors "github.com/noah-isme/degree-registry-api/pkg/errors"
	"github.com/noah-isme/degree-registry-api/pkg/export"
)

type registryStore interface {
	RegisterProfessor(ctx context.Context, caller models.Principal, displayName string) error
	RegisterStudent(ctx context.Context, caller models.Principal, studentID int64, displayName string) error
	RegisterCourse(ctx context.Context, caller models.Principal, name, code string) error
	RegisterClass(ctx context.Context, caller models.Principal, code string) (int64, error)
	EnrollStudent(ctx context.Context, caller models.Principal, classID, studentID int64) error
	AssignDegree(ctx context.Context, caller models.Principal, classID, studentID, value int64) error
	AlterDegree(ctx context.Context, caller models.Principal, classID, studentID, value int64) error

	IsStudentEnrolled(classID, studentID int64) bool
	SeeDegree(classID, studentID int64) (models.DegreeView, error)
	SeeAllDegreesClass(caller models.Principal, classID int64) (models.ClassDegrees, error)
	ClassVersion(caller models.Principal, classID int64) (int64, error)
	ClassRoster(caller models.Principal, classID int64) (models.ClassRoster, error)
	Professor(principal models.Principal) (models.Professor, error)
	Student(studentID int64) (models.Student, error)
	Course(code string) (models.Course, error)
	Class(classID int64) (models.Class, error)
	Classes() []models.Class
	Stats() models.RegistryStats
}

type journalReader interface {
	List(ctx context.Context, afterSeq int64, limit int) ([]models.JournalEntry, error)
}

const (
	defaultJournalPage = 100
	maxJournalPage     = 500
)

// RegisterProfessorRequest registers the caller as a professor.
type RegisterProfessorRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=128"`
}

// RegisterStudentRequest registers the caller under a student id.
type RegisterStudentRequest struct {
	StudentID   int64  `json:"student_id" validate:"required,gt=0"`
	DisplayName string `json:"display_name" validate:"required,max=128"`
}

// RegisterCourseRequest registers a course.
type RegisterCourseRequest struct {
	Name string `json:"name" validate:"required,max=128"`
	Code string `json:"code" validate:"required,max=32"`
}

// RegisterClassRequest opens a class of a course.
type RegisterClassRequest struct {
	CourseCode string `json:"course_code" validate:"required,max=32"`
}

// RegisterClassResponse carries the assigned class id.
type RegisterClassResponse struct {
	ClassID int64 `json:"class_id"`
}

// EnrollStudentRequest enrolls a student in a class.
type EnrollStudentRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

// EnrollmentStatus answers whether a student is enrolled.
type EnrollmentStatus struct {
	ClassID   int64 `json:"class_id"`
	StudentID int64 `json:"student_id"`
	Enrolled  bool  `json:"enrolled"`
}

// AssignDegreeRequest assigns the first degree of a student.
type AssignDegreeRequest struct {
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	Value     *int64 `json:"value" validate:"required"`
}

// AlterDegreeRequest replaces an existing degree.
type AlterDegreeRequest struct {
	Value *int64 `json:"value" validate:"required"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// RegistryService exposes registry commands and queries to transport layers,
// adding request validation, logging, metrics and caching.
type RegistryService struct {
	store     registryStore
	journal   journalReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistryService constructs RegistryService.
func NewRegistryService(store registryStore, journal journalReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryService{store: store, journal: journal, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// RegisterProfessor registers the caller as a professor.
func (s *RegistryService) RegisterProfessor(ctx context.Context, caller models.Principal, req RegisterProfessorRequest) (*models.Professor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid professor payload")
	}
	err := s.run(models.CommandRegisterProfessor, caller, func() error {
		return s.store.RegisterProfessor(ctx, caller, req.DisplayName)
	})
	if err != nil {
		return nil, err
	}
	return &models.Professor{Principal: caller, DisplayName: req.DisplayName}, nil
}

// RegisterStudent registers the caller under a student id.
func (s *RegistryService) RegisterStudent(ctx context.Context, caller models.Principal, req RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	err := s.run(models.CommandRegisterStudent, caller, func() error {
		return s.store.RegisterStudent(ctx, caller, req.StudentID, req.DisplayName)
	})
	if err != nil {
		return nil, err
	}
	return &models.Student{StudentID: req.StudentID, Principal: caller, DisplayName: req.DisplayName}, nil
}

// RegisterCourse registers a course on behalf of a professor.
func (s *RegistryService) RegisterCourse(ctx context.Context, caller models.Principal, req RegisterCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	err := s.run(models.CommandRegisterCourse, caller, func() error {
		return s.store.RegisterCourse(ctx, caller, req.Name, req.Code)
	})
	if err != nil {
		return nil, err
	}
	return &models.Course{Name: req.Name, Code: req.Code}, nil
}

// RegisterClass opens a class and returns its id.
func (s *RegistryService) RegisterClass(ctx context.Context, caller models.Principal, req RegisterClassRequest) (*RegisterClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	var classID int64
	err := s.run(models.CommandRegisterClass, caller, func() error {
		var err error
		classID, err = s.store.RegisterClass(ctx, caller, req.CourseCode)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &RegisterClassResponse{ClassID: classID}, nil
}

// EnrollStudent enrolls a student of the caller in a class.
func (s *RegistryService) EnrollStudent(ctx context.Context, caller models.Principal, classID int64, req EnrollStudentRequest) (*EnrollmentStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	err := s.run(models.CommandEnrollStudent, caller, func() error {
		return s.store.EnrollStudent(ctx, caller, classID, req.StudentID)
	})
	if err != nil {
		return nil, err
	}
	return &EnrollmentStatus{ClassID: classID, StudentID: req.StudentID, Enrolled: true}, nil
}

// IsStudentEnrolled answers the membership question without erroring.
func (s *RegistryService) IsStudentEnrolled(ctx context.Context, classID, studentID int64) *EnrollmentStatus {
	return &EnrollmentStatus{ClassID: classID, StudentID: studentID, Enrolled: s.store.IsStudentEnrolled(classID, studentID)}
}

// AssignDegree assigns the first degree of an enrolled student.
func (s *RegistryService) AssignDegree(ctx context.Context, caller models.Principal, classID int64, req AssignDegreeRequest) (*models.DegreeRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid degree payload")
	}
	err := s.run(models.CommandAssignDegree, caller, func() error {
		return s.store.AssignDegree(ctx, caller, classID, req.StudentID, *req.Value)
	})
	if err != nil {
		return nil, err
	}
	return &models.DegreeRecord{ClassID: classID, StudentID: req.StudentID, Value: *req.Value, LastModifiedBy: caller}, nil
}

// AlterDegree replaces an existing degree.
func (s *RegistryService) AlterDegree(ctx context.Context, caller models.Principal, classID, studentID int64, req AlterDegreeRequest) (*models.DegreeRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid degree payload")
	}
	err := s.run(models.CommandAlterDegree, caller, func() error {
		return s.store.AlterDegree(ctx, caller, classID, studentID, *req.Value)
	})
	if err != nil {
		return nil, err
	}
	return &models.DegreeRecord{ClassID: classID, StudentID: studentID, Value: *req.Value, LastModifiedBy: caller}, nil
}

// SeeDegree returns a single degree.
func (s *RegistryService) SeeDegree(ctx context.Context, classID, studentID int64) (*models.DegreeView, error) {
	view, err := s.store.SeeDegree(classID, studentID)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// SeeAllDegreesClass lists the graded students of a class owned by caller and
// reports whether the listing came from cache. Cached listings are keyed by
// the class version, which the registry checks ownership for and which is
// stamped on every listing under the same lock as its contents.
func (s *RegistryService) SeeAllDegreesClass(ctx context.Context, caller models.Principal, classID int64) (*models.ClassDegrees, bool, error) {
	version, err := s.store.ClassVersion(caller, classID)
	if err != nil {
		return nil, false, err
	}

	var cached models.ClassDegrees
	if hit, _ := s.cache.Get(ctx, s.cache.ClassDegreesKey(classID, version), &cached); hit {
		return &cached, true, nil
	}

	result, err := s.store.SeeAllDegreesClass(caller, classID)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, s.cache.ClassDegreesKey(classID, result.Version), result, 0); err == nil && result.Version > 0 {
		_ = s.cache.Invalidate(ctx, s.cache.ClassDegreesKey(classID, result.Version-1))
	}
	return &result, false, nil
}

// ClassRoster lists every enrollment of a class owned by caller.
func (s *RegistryService) ClassRoster(ctx context.Context, caller models.Principal, classID int64) (*models.ClassRoster, error) {
	roster, err := s.store.ClassRoster(caller, classID)
	if err != nil {
		return nil, err
	}
	return &roster, nil
}

// ExportClassDegrees renders the class roster of a class owned by caller.
func (s *RegistryService) ExportClassDegrees(ctx context.Context, caller models.Principal, classID int64, rawFormat string) (*ExportFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}
	roster, err := s.store.ClassRoster(caller, classID)
	if err != nil {
		return nil, err
	}
	body, err := export.RendererFor(format).Render(rosterDataset(roster))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("class-%d-degrees.%s", classID, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

// Professor returns a registered professor.
func (s *RegistryService) Professor(ctx context.Context, principal models.Principal) (*models.Professor, error) {
	professor, err := s.store.Professor(principal)
	if err != nil {
		return nil, err
	}
	return &professor, nil
}

// Student returns a registered student.
func (s *RegistryService) Student(ctx context.Context, studentID int64) (*models.Student, error) {
	student, err := s.store.Student(studentID)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Course returns a registered course.
func (s *RegistryService) Course(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.store.Course(code)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Class returns a registered class.
func (s *RegistryService) Class(ctx context.Context, classID int64) (*models.Class, error) {
	class, err := s.store.Class(classID)
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// Classes lists every class.
func (s *RegistryService) Classes(ctx context.Context) []models.Class {
	return s.store.Classes()
}

// Stats summarises the registry.
func (s *RegistryService) Stats(ctx context.Context) models.RegistryStats {
	return s.store.Stats()
}

// Journal pages through committed commands.
func (s *RegistryService) Journal(ctx context.Context, afterSeq int64, limit int) ([]models.JournalEntry, error) {
	if afterSeq < 0 {
		afterSeq = 0
	}
	if limit <= 0 {
		limit = defaultJournalPage
	}
	if limit > maxJournalPage {
		limit = maxJournalPage
	}
	entries, err := s.journal.List(ctx, afterSeq, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list journal")
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	return entries, nil
}

func (s *RegistryService) run(command string, caller models.Principal, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.RecordCommand(command, err, time.Since(start))
	if err != nil {
		s.logger.Debug("command rejected", zap.String("command", command), zap.String("principal", caller.String()), zap.Error(err))
		return err
	}
	s.logger.Info("command committed", zap.String("command", command), zap.String("principal", caller.String()))
	return nil
}

var rosterHeaders = []string{"student_id", "display_name", "degree", "last_modified_by"}

func rosterDataset(roster models.ClassRoster) export.Dataset {
	rows := make([]map[string]string, 0, len(roster.Students))
	for _, entry := range roster.Students {
		row := map[string]string{
			"student_id":   strconv.FormatInt(entry.StudentID, 10),
			"display_name": entry.DisplayName,
		}
		if entry.Degree != nil {
			row["degree"] = strconv.FormatInt(*entry.Degree, 10)
		}
		if entry.LastModifiedBy != nil {
			row["last_modified_by"] = entry.LastModifiedBy.String()
		}
		rows = append(rows, row)
	}
	return export.Dataset{
		Title:   fmt.Sprintf("%s %s - class %d", roster.Course.Code, roster.Course.Name, roster.Class.ClassID),
		Headers: rosterHeaders,
		Rows:    rows,
	}
}
