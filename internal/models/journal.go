package models

import (
	"encoding/json"
	"time"
)

// Command names recorded in the journal.
const (
	CommandRegisterProfessor = "REGISTER_PROFESSOR"
	CommandRegisterStudent   = "REGISTER_STUDENT"
	CommandRegisterCourse    = "REGISTER_COURSE"
	CommandRegisterClass     = "REGISTER_CLASS"
	CommandEnrollStudent     = "ENROLL_STUDENT"
	CommandAssignDegree      = "ASSIGN_DEGREE"
	CommandAlterDegree       = "ALTER_DEGREE"
)

// JournalEntry is a committed registry command.
type JournalEntry struct {
	ID        string          `db:"id" json:"id"`
	Seq       int64           `db:"seq" json:"seq"`
	Command   string          `db:"command" json:"command"`
	Principal Principal       `db:"principal" json:"principal"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	AppliedAt time.Time       `db:"applied_at" json:"applied_at"`
}

// RegisterProfessorPayload is the journal payload for CommandRegisterProfessor.
type RegisterProfessorPayload struct {
	DisplayName string `json:"display_name"`
}

// RegisterStudentPayload is the journal payload for CommandRegisterStudent.
type RegisterStudentPayload struct {
	StudentID   int64  `json:"student_id"`
	DisplayName string `json:"display_name"`
}

// RegisterCoursePayload is the journal payload for CommandRegisterCourse.
type RegisterCoursePayload struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// RegisterClassPayload is the journal payload for CommandRegisterClass.
type RegisterClassPayload struct {
	CourseCode string `json:"course_code"`
	ClassID    int64  `json:"class_id"`
}

// EnrollStudentPayload is the journal payload for CommandEnrollStudent.
type EnrollStudentPayload struct {
	ClassID   int64 `json:"class_id"`
	StudentID int64 `json:"student_id"`
}

// DegreePayload is the journal payload for CommandAssignDegree and CommandAlterDegree.
type DegreePayload struct {
	ClassID   int64 `json:"class_id"`
	StudentID int64 `json:"student_id"`
	Value     int64 `json:"value"`
}
