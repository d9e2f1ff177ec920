package registry

import (
	"sort"

	"github.com/noah-isme/degree-registry-api/internal/models"
	appErrors "github.com/noah-isme/degree-registry-api/pkg/errors"
)

// IsStudentEnrolled reports whether the enrollment exists. Unknown classes or
// students simply yield false.
func (r *Registry) IsStudentEnrolled(classID, studentID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.enrollments[models.EnrollmentKey{ClassID: classID, StudentID: studentID}]
	return ok
}

// SeeDegree returns the stored degree of a student in a class.
func (r *Registry) SeeDegree(classID, studentID int64) (models.DegreeView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.degrees[models.EnrollmentKey{ClassID: classID, StudentID: studentID}]
	if !ok {
		return models.DegreeView{}, appErrors.Clone(appErrors.ErrNotFound, "no degree record")
	}
	return models.DegreeView{Value: record.Value, LastModifiedBy: record.LastModifiedBy}, nil
}

// SeeAllDegreesClass lists every graded student of the class in enrollment
// order. Students without a degree are omitted. Only the owner may list.
func (r *Registry) SeeAllDegreesClass(caller models.Principal, classID int64) (models.ClassDegrees, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, err := r.ownedClass(caller, classID); err != nil {
		return models.ClassDegrees{}, err
	}
	result := models.ClassDegrees{ClassID: classID, Version: r.classVersions[classID], StudentIDs: []int64{}, Values: []int64{}}
	for _, studentID := range r.classEnrollments[classID] {
		record, ok := r.degrees[models.EnrollmentKey{ClassID: classID, StudentID: studentID}]
		if !ok {
			continue
		}
		result.StudentIDs = append(result.StudentIDs, studentID)
		result.Values = append(result.Values, record.Value)
	}
	return result, nil
}

// ClassVersion returns the current version of a class owned by caller. A
// listing carrying this version reflects every committed command on the class.
func (r *Registry) ClassVersion(caller models.Principal, classID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, err := r.ownedClass(caller, classID); err != nil {
		return 0, err
	}
	return r.classVersions[classID], nil
}

// ClassRoster lists every enrollment of the class, graded or not. Only the
// owner may read it.
func (r *Registry) ClassRoster(caller models.Principal, classID int64) (models.ClassRoster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	class, err := r.ownedClass(caller, classID)
	if err != nil {
		return models.ClassRoster{}, err
	}
	roster := models.ClassRoster{Class: class, Course: r.courses[class.CourseCode], Students: []models.RosterEntry{}}
	for _, studentID := range r.classEnrollments[classID] {
		key := models.EnrollmentKey{ClassID: classID, StudentID: studentID}
		entry := models.RosterEntry{
			StudentID:   studentID,
			DisplayName: r.students[studentID].DisplayName,
			Order:       r.enrollments[key].Order,
		}
		if record, ok := r.degrees[key]; ok {
			value, by := record.Value, record.LastModifiedBy
			entry.Degree = &value
			entry.LastModifiedBy = &by
		}
		roster.Students = append(roster.Students, entry)
	}
	return roster, nil
}

// Professor returns the professor registered for principal.
func (r *Registry) Professor(principal models.Principal) (models.Professor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	professor, ok := r.professors[principal]
	if !ok {
		return models.Professor{}, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
	}
	return professor, nil
}

// Student returns the student registered under studentID.
func (r *Registry) Student(studentID int64) (models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	student, ok := r.students[studentID]
	if !ok {
		return models.Student{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

// Course returns the course registered under code.
func (r *Registry) Course(code string) (models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	course, ok := r.courses[code]
	if !ok {
		return models.Course{}, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

// Class returns the class registered under classID.
func (r *Registry) Class(classID int64) (models.Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	class, ok := r.classes[classID]
	if !ok {
		return models.Class{}, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return class, nil
}

// Classes returns all classes ordered by id.
func (r *Registry) Classes() []models.Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	classes := make([]models.Class, 0, len(r.classes))
	for _, class := range r.classes {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ClassID < classes[j].ClassID })
	return classes
}

// Stats returns table sizes and the last committed sequence.
func (r *Registry) Stats() models.RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return models.RegistryStats{
		Professors:  len(r.professors),
		Students:    len(r.students),
		Courses:     len(r.courses),
		Classes:     len(r.classes),
		Enrollments: len(r.enrollments),
		Degrees:     len(r.degrees),
		LastSeq:     r.seq,
	}
}
