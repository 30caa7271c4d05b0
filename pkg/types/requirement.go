package types

import (
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// TimestampLayout is the format of LastModified in the data file.
const TimestampLayout = "2006-01-02 15:04:05"

// Requirement is a single specification item. ID is unique within its
// project; ParentID, when not empty, names another requirement of the same
// project, possibly in a different subsystem.
type Requirement struct {
	ID          string          `json:"id" validate:"required,nowhitespace"`
	Type        RequirementType `json:"type"`
	Description string          `json:"desc"` // Markup; see textnorm for the plain form.
	ParentID    string          `json:"parent_id" validate:"omitempty,nowhitespace"`
	Value       string          `json:"value"`
	Unit        string          `json:"unit"`
	Status      Status          `json:"status"`
	Method      Method          `json:"method"`

	LastModified time.Time `json:"last_modified"`

	// NeedsReview is set by the engine when another requirement's edit
	// rewrote or cleared this requirement's parent link. It is cleared when
	// this requirement is itself edited.
	NeedsReview bool `json:"needs_review"`
}

// Requirement field defaults applied to records that omit them.
const (
	DefaultType   = TypeSystem
	DefaultStatus = StatusDraft
	DefaultMethod = MethodAnalysis
)

// ApplyDefaults fills empty Type, Status and Method.
func (r *Requirement) ApplyDefaults() {
	if r.Type == "" {
		r.Type = DefaultType
	}
	if r.Status == "" {
		r.Status = DefaultStatus
	}
	if r.Method == "" {
		r.Method = DefaultMethod
	}
}

// IsRoot reports whether r has no parent.
func (r *Requirement) IsRoot() bool { return r.ParentID == "" }

// Clone returns a copy of r.
func (r *Requirement) Clone() *Requirement {
	c := *r
	return &c
}

var requirementValidate *validator.Validate

func init() {
	requirementValidate = validator.New()
	_ = requirementValidate.RegisterValidation("nowhitespace", validateNoWhitespace)
}

func validateNoWhitespace(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// ValidateFields checks the record-local rules: a non-empty id without
// whitespace and a parent id without whitespace. Rules that depend on the
// rest of the project (uniqueness, parent existence, cycles) are enforced
// by the store. Returns a *ValidationError.
func (r *Requirement) ValidateFields() error {
	if r.ParentID != "" && r.ParentID == r.ID {
		return &ValidationError{Field: "parent_id", Value: r.ParentID, Reason: ErrSelfParent}
	}
	err := requirementValidate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !asValidationErrors(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "requirement", Reason: err}
	}
	fe := fieldErrs[0]
	ve := &ValidationError{Value: fe.Value().(string)}
	switch fe.Field() {
	case "ID":
		ve.Field = "id"
	default:
		ve.Field = "parent_id"
	}
	switch fe.Tag() {
	case "required":
		ve.Reason = ErrEmptyID
	default:
		ve.Reason = ErrWhitespaceID
	}
	return ve
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}
