package types

import "strings"

// RequirementType is the category of a requirement. Labels outside the
// known set are kept verbatim so that files written by older versions load
// without loss; IsLegacy reports them.
type RequirementType string

// Requirement types.
const (
	TypeSystem        RequirementType = "System"
	TypeFunctional    RequirementType = "Functional"
	TypePerformance   RequirementType = "Performance"
	TypeInterface     RequirementType = "Interface"
	TypeEnvironmental RequirementType = "Environmental"
	TypeDesign        RequirementType = "Design"
	TypeSafety        RequirementType = "Safety"

	// TypeAll is the filter value that matches every type. It is never
	// stored on a requirement.
	TypeAll RequirementType = "All"
)

// RequirementTypes lists the known types in display order.
var RequirementTypes = []RequirementType{
	TypeSystem,
	TypeFunctional,
	TypePerformance,
	TypeInterface,
	TypeEnvironmental,
	TypeDesign,
	TypeSafety,
}

// IsLegacy reports whether t is not one of the known types.
func (t RequirementType) IsLegacy() bool {
	for _, k := range RequirementTypes {
		if t == k {
			return false
		}
	}
	return true
}

// Status is the lifecycle state of a requirement.
type Status string

// Requirement statuses.
const (
	StatusDraft    Status = "Draft"
	StatusTBD      Status = "TBD"
	StatusTBC      Status = "TBC"
	StatusVerified Status = "Verified"
	StatusClosed   Status = "Closed"
	StatusObsolete Status = "Obsolete"
)

// Statuses lists the known statuses in display order.
var Statuses = []Status{
	StatusDraft,
	StatusTBD,
	StatusTBC,
	StatusVerified,
	StatusClosed,
	StatusObsolete,
}

// IsLegacy reports whether s is not one of the known statuses.
func (s Status) IsLegacy() bool {
	for _, k := range Statuses {
		if s == k {
			return false
		}
	}
	return true
}

// Status categories used by exporters to distinguish rows visually.
const (
	CategoryVerified = "verified"
	CategoryPending  = "pending"
	CategoryClosed   = "closed"
	CategoryDraft    = "draft"
	CategoryOther    = "other"
)

// Category groups s into one of the Category constants. Legacy labels are
// matched by substring ("Verified by test" is verified).
func (s Status) Category() string {
	switch s {
	case StatusVerified:
		return CategoryVerified
	case StatusTBD, StatusTBC:
		return CategoryPending
	case StatusClosed, StatusObsolete:
		return CategoryClosed
	case StatusDraft:
		return CategoryDraft
	}
	label := string(s)
	switch {
	case strings.Contains(label, "Verified"):
		return CategoryVerified
	case strings.Contains(label, "TBD"), strings.Contains(label, "TBC"):
		return CategoryPending
	case strings.Contains(label, "Closed"):
		return CategoryClosed
	}
	return CategoryOther
}

// Method is the verification method of a requirement.
type Method string

// Verification methods.
const (
	MethodTest           Method = "Test"
	MethodAnalysis       Method = "Analysis"
	MethodInspection     Method = "Inspection"
	MethodReviewOfDesign Method = "Review of Design"
	MethodSimilarity     Method = "Similarity"
)

// Methods lists the known verification methods in display order.
var Methods = []Method{
	MethodTest,
	MethodAnalysis,
	MethodInspection,
	MethodReviewOfDesign,
	MethodSimilarity,
}

// IsLegacy reports whether m is not one of the known methods.
func (m Method) IsLegacy() bool {
	for _, k := range Methods {
		if m == k {
			return false
		}
	}
	return true
}

// ParseType returns the known type matching s case-insensitively.
// Returns ErrUnknownLabel if s is not a known type.
func ParseType(s string) (RequirementType, error) {
	for _, k := range RequirementTypes {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", &ValidationError{Field: "type", Value: s, Reason: ErrUnknownLabel}
}

// ParseStatus returns the known status matching s case-insensitively.
func ParseStatus(s string) (Status, error) {
	for _, k := range Statuses {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", &ValidationError{Field: "status", Value: s, Reason: ErrUnknownLabel}
}

// ParseMethod returns the known method matching s case-insensitively.
func ParseMethod(s string) (Method, error) {
	for _, k := range Methods {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", &ValidationError{Field: "method", Value: s, Reason: ErrUnknownLabel}
}
