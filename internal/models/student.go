package models

// Student links an externally assigned student id to the principal that
// registered it.
type Student struct {
	StudentID   int64     `json:"student_id"`
	Principal   Principal `json:"principal"`
	DisplayName string    `json:"display_name"`
}
