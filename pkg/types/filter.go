package types

// Filter selects requirements for display. Text is matched
// case-insensitively as a substring of the id, the plain-text description,
// the parent id and the other displayed columns. Type empty or TypeAll
// matches every type.
type Filter struct {
	Text string
	Type RequirementType
}

// IsZero reports whether f matches everything.
func (f Filter) IsZero() bool {
	return f.Text == "" && f.AllTypes()
}

// AllTypes reports whether f leaves the type unrestricted.
func (f Filter) AllTypes() bool {
	return f.Type == "" || f.Type == TypeAll
}
