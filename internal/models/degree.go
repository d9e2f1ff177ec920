package models

// Degree bounds, inclusive.
const (
	MinDegree int64 = 0
	MaxDegree int64 = 1000
)

// DegreeRecord stores a student's score within a class.
type DegreeRecord struct {
	ClassID        int64     `json:"class_id"`
	StudentID      int64     `json:"student_id"`
	Value          int64     `json:"value"`
	LastModifiedBy Principal `json:"last_modified_by"`
}

// DegreeView is the result of looking up a single degree.
type DegreeView struct {
	Value          int64     `json:"value"`
	LastModifiedBy Principal `json:"last_modified_by"`
}

// ClassDegrees lists graded students of a class. StudentIDs and Values are
// position-aligned. Version is the class version the listing was read at.
type ClassDegrees struct {
	ClassID    int64   `json:"class_id"`
	Version    int64   `json:"version"`
	StudentIDs []int64 `json:"student_ids"`
	Values     []int64 `json:"values"`
}

// RosterEntry is one enrolled student of a class with the degree, if any.
type RosterEntry struct {
	StudentID      int64      `json:"student_id"`
	DisplayName    string     `json:"display_name"`
	Order          int64      `json:"order"`
	Degree         *int64     `json:"degree,omitempty"`
	LastModifiedBy *Principal `json:"last_modified_by,omitempty"`
}

// ClassRoster describes every enrollment of a class.
type ClassRoster struct {
	Class    Class         `json:"class"`
	Course   Course        `json:"course"`
	Students []RosterEntry `json:"students"`
}

// RegistryStats summarises table sizes.
type RegistryStats struct {
	Professors  int   `json:"professors"`
	Students    int   `json:"students"`
	Courses     int   `json:"courses"`
	Classes     int   `json:"classes"`
	Enrollments int   `json:"enrollments"`
	Degrees     int   `json:"degrees"`
	LastSeq     int64 `json:"last_seq"`
}
