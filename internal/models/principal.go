package models

// Principal identifies an authenticated caller. The registry only compares
// principals for equality.
type Principal string

// Valid reports whether the principal carries an identity.
func (p Principal) Valid() bool {
	return p != ""
}

// String implements fmt.Stringer.
func (p Principal) String() string {
	return string(p)
}
