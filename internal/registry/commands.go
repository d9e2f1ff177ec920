package registry

import (
	"context"

	"github.com/noah-isme/degree-registry-api/internal/models"
	appErrors "github.com/noah-isme/degree-registry-api/pkg/errors"
)

// RegisterProfessor records the caller as a professor. Registering again
// replaces the display name.
func (r *Registry) RegisterProfessor(ctx context.Context, caller models.Principal, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerProfessor(ctx, caller, displayName)
}

func (r *Registry) registerProfessor(ctx context.Context, caller models.Principal, displayName string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	payload := models.RegisterProfessorPayload{DisplayName: displayName}
	return r.commit(ctx, caller, models.CommandRegisterProfessor, payload, func() {
		r.professors[caller] = models.Professor{Principal: caller, DisplayName: displayName}
	})
}

// RegisterStudent records studentID as owned by the caller. A studentID held
// by another principal is rejected; the same principal may re-register to
// replace the display name.
func (r *Registry) RegisterStudent(ctx context.Context, caller models.Principal, studentID int64, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerStudent(ctx, caller, studentID, displayName)
}

func (r *Registry) registerStudent(ctx context.Context, caller models.Principal, studentID int64, displayName string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if existing, ok := r.students[studentID]; ok && existing.Principal != caller {
		return appErrors.Clone(appErrors.ErrAlreadyExists, "student id already taken")
	}
	payload := models.RegisterStudentPayload{StudentID: studentID, DisplayName: displayName}
	return r.commit(ctx, caller, models.CommandRegisterStudent, payload, func() {
		r.students[studentID] = models.Student{StudentID: studentID, Principal: caller, DisplayName: displayName}
	})
}

// RegisterCourse creates or replaces the course keyed by code.
func (r *Registry) RegisterCourse(ctx context.Context, caller models.Principal, name, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerCourse(ctx, caller, name, code)
}

func (r *Registry) registerCourse(ctx context.Context, caller models.Principal, name, code string) error {
	if err := r.requireProfessor(caller); err != nil {
		return err
	}
	payload := models.RegisterCoursePayload{Name: name, Code: code}
	return r.commit(ctx, caller, models.CommandRegisterCourse, payload, func() {
		r.courses[code] = models.Course{Name: name, Code: code}
	})
}

// RegisterClass opens a class of the course identified by code and returns
// the new class id. Ids start at 1 and are never reused.
func (r *Registry) RegisterClass(ctx context.Context, caller models.Principal, code string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerClass(ctx, caller, code)
}

func (r *Registry) registerClass(ctx context.Context, caller models.Principal, code string) (int64, error) {
	if err := r.requireProfessor(caller); err != nil {
		return 0, err
	}
	if _, ok := r.courses[code]; !ok {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "unknown course")
	}
	classID := r.lastClassID + 1
	payload := models.RegisterClassPayload{CourseCode: code, ClassID: classID}
	err := r.commit(ctx, caller, models.CommandRegisterClass, payload, func() {
		r.lastClassID = classID
		r.classes[classID] = models.Class{ClassID: classID, CourseCode: code, Owner: caller}
	})
	if err != nil {
		return 0, err
	}
	return classID, nil
}

// EnrollStudent enrolls studentID in classID. Only the principal that
// registered the student may enroll it, and only once per class.
func (r *Registry) EnrollStudent(ctx context.Context, caller models.Principal, classID, studentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enrollStudent(ctx, caller, classID, studentID)
}

func (r *Registry) enrollStudent(ctx context.Context, caller models.Principal, classID, studentID int64) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if _, ok := r.classes[classID]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "unknown class")
	}
	student, ok := r.students[studentID]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "unknown student")
	}
	if student.Principal != caller {
		return appErrors.Clone(appErrors.ErrNotAuthorized, "only the student may enroll itself")
	}
	key := models.EnrollmentKey{ClassID: classID, StudentID: studentID}
	if _, ok := r.enrollments[key]; ok {
		return appErrors.Clone(appErrors.ErrAlreadyExists, "student already enrolled")
	}
	order := r.lastOrder + 1
	payload := models.EnrollStudentPayload{ClassID: classID, StudentID: studentID}
	return r.commit(ctx, caller, models.CommandEnrollStudent, payload, func() {
		r.lastOrder = order
		r.enrollments[key] = models.Enrollment{ClassID: classID, StudentID: studentID, Order: order}
		r.classEnrollments[classID] = append(r.classEnrollments[classID], studentID)
		r.classVersions[classID]++
	})
}

// AssignDegree creates the degree record of an enrolled student. It never
// overwrites; use AlterDegree for that.
func (r *Registry) AssignDegree(ctx context.Context, caller models.Principal, classID, studentID, value int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.assignDegree(ctx, caller, classID, studentID, value)
}

func (r *Registry) assignDegree(ctx context.Context, caller models.Principal, classID, studentID, value int64) error {
	if _, err := r.ownedClass(caller, classID); err != nil {
		return err
	}
	if err := checkDegree(value); err != nil {
		return err
	}
	key := models.EnrollmentKey{ClassID: classID, StudentID: studentID}
	if _, ok := r.enrollments[key]; !ok {
		return appErrors.Clone(appErrors.ErrInvalidState, "student not enrolled")
	}
	if _, ok := r.degrees[key]; ok {
		return appErrors.Clone(appErrors.ErrAlreadyExists, "degree already assigned")
	}
	payload := models.DegreePayload{ClassID: classID, StudentID: studentID, Value: value}
	return r.commit(ctx, caller, models.CommandAssignDegree, payload, func() {
		r.degrees[key] = models.DegreeRecord{ClassID: classID, StudentID: studentID, Value: value, LastModifiedBy: caller}
		r.classVersions[classID]++
	})
}

// AlterDegree overwrites an existing degree record.
func (r *Registry) AlterDegree(ctx context.Context, caller models.Principal, classID, studentID, value int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alterDegree(ctx, caller, classID, studentID, value)
}

func (r *Registry) alterDegree(ctx context.Context, caller models.Principal, classID, studentID, value int64) error {
	if _, err := r.ownedClass(caller, classID); err != nil {
		return err
	}
	if err := checkDegree(value); err != nil {
		return err
	}
	key := models.EnrollmentKey{ClassID: classID, StudentID: studentID}
	if _, ok := r.degrees[key]; !ok {
		return appErrors.Clone(appErrors.ErrInvalidState, "no existing degree record")
	}
	payload := models.DegreePayload{ClassID: classID, StudentID: studentID, Value: value}
	return r.commit(ctx, caller, models.CommandAlterDegree, payload, func() {
		r.degrees[key] = models.DegreeRecord{ClassID: classID, StudentID: studentID, Value: value, LastModifiedBy: caller}
		r.classVersions[classID]++
	})
}

func (r *Registry) requireProfessor(caller models.Principal) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if _, ok := r.professors[caller]; !ok {
		return appErrors.Clone(appErrors.ErrNotAuthorized, "caller is not a professor")
	}
	return nil
}

// ownedClass returns the class when caller owns it.
func (r *Registry) ownedClass(caller models.Principal, classID int64) (models.Class, error) {
	class, ok := r.classes[classID]
	if !ok {
		return models.Class{}, appErrors.Clone(appErrors.ErrNotFound, "unknown class")
	}
	if !caller.Valid() || class.Owner != caller {
		return models.Class{}, appErrors.Clone(appErrors.ErrNotAuthorized, "caller does not own class")
	}
	return class, nil
}
