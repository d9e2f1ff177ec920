package models

// Professor is a principal allowed to register courses and classes.
type Professor struct {
	Principal   Principal `json:"principal"`
	DisplayName string    `json:"display_name"`
}
