package models

// Class is an offering of a course owned by the professor that created it.
type Class struct {
	ClassID    int64     `json:"class_id"`
	CourseCode string    `json:"course_code"`
	Owner      Principal `json:"owner"`
}
