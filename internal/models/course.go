package models

// Course is a catalogue entry keyed by its code.
type Course struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
