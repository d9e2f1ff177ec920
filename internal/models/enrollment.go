package models

// Enrollment relates a student to a class. Order is assigned from a
// registry-wide counter at enrollment time.
type Enrollment struct {
	ClassID   int64 `json:"class_id"`
	StudentID int64 `json:"student_id"`
	Order     int64 `json:"order"`
}

// EnrollmentKey identifies an enrollment or a degree record.
type EnrollmentKey struct {
	ClassID   int64
	StudentID int64
}
