package types

import (
	"errors"
	"fmt"
)

// Engine error categories. Every error returned by the engine matches one
// of these with errors.Is.
var (
	ErrDuplicateName = errors.New("name already exists")
	ErrValidation    = errors.New("validation failed")
	ErrCycleDetected = errors.New("parent link would create a cycle")
	ErrLoad          = errors.New("load failed")
	ErrSave          = errors.New("save failed")
)

// Lookup errors.
var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrSubsystemNotFound   = errors.New("subsystem not found")
	ErrRequirementNotFound = errors.New("requirement not found")
)

// Validation reasons carried by ValidationError.
var (
	ErrEmptyID        = errors.New("id must not be empty")
	ErrWhitespaceID   = errors.New("id must not contain whitespace")
	ErrDuplicateID    = errors.New("id already exists in project")
	ErrSelfParent     = errors.New("requirement cannot be its own parent")
	ErrDanglingParent = errors.New("parent id does not exist in project")
	ErrInvalidName    = errors.New("name must not be empty")
	ErrUnknownLabel   = errors.New("unknown label")
	ErrInvalidPrefix  = errors.New("id prefix must be a letter followed by letters or digits")
)

// ValidationError reports a rejected field value. It matches both
// ErrValidation and its Reason with errors.Is.
type ValidationError struct {
	Field  string
	Value  string
	Reason error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Reason}
}

// CycleError reports that making ParentID the parent of ID would make ID
// its own ancestor.
type CycleError struct {
	ID       string
	ParentID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s -> %s", ErrCycleDetected, e.ID, e.ParentID)
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// LoadError reports a data file that could not be read or decoded. The
// in-memory graph is never replaced when a load fails.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// SaveError reports an I/O failure while writing the data file. The
// in-memory graph keeps the change and the caller may retry.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() []error { return []error{ErrSave, e.Err} }

// DuplicateNameError reports a project or subsystem name clash.
type DuplicateNameError struct {
	Kind string // "project" or "subsystem"
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Name, ErrDuplicateName)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }
