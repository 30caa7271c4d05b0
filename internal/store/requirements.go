package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/satreq/internal/trace"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// AddRequirement appends a requirement to a subsystem. The id must be
// unique in the project and the parent, when set, must exist and must not
// lead back to the new id. LastModified is stamped and NeedsReview
// cleared.
func (s *Store) AddRequirement(project, subsystem string, data types.Requirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, sub, err := s.subsystem(project, subsystem)
	if err != nil {
		return err
	}
	r := data
	r.ApplyDefaults()
	if err := checkLabels(&r, nil); err != nil {
		return err
	}
	if err := r.ValidateFields(); err != nil {
		return err
	}
	idx := trace.NewIndex(p)
	if idx.Has(r.ID) {
		return &types.ValidationError{Field: "id", Value: r.ID, Reason: types.ErrDuplicateID}
	}
	if err := checkParent(idx, r.ID, r.ID, r.ParentID); err != nil {
		return err
	}

	r.LastModified = s.stamp()
	r.NeedsReview = false
	sub.Requirements = append(sub.Requirements, &r)
	s.logger.Debug("requirement added",
		zap.String("project", project), zap.String("subsystem", subsystem), zap.String("id", r.ID))
	return s.persist()
}

// UpdateRequirement replaces the requirement targetID in place. When the
// id changes, every requirement whose parent was targetID is repointed to
// the new id and flagged for review. The edited requirement itself is no
// longer flagged.
func (s *Store) UpdateRequirement(project, subsystem, targetID string, data types.Requirement) (types.Impact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, sub, err := s.subsystem(project, subsystem)
	if err != nil {
		return types.Impact{}, err
	}
	pos := sub.Index(targetID)
	if pos < 0 {
		return types.Impact{}, notFound(project, subsystem, targetID)
	}
	prev := sub.Requirements[pos]

	r := data
	r.ApplyDefaults()
	if err := checkLabels(&r, prev); err != nil {
		return types.Impact{}, err
	}
	if err := r.ValidateFields(); err != nil {
		return types.Impact{}, err
	}
	renamed := r.ID != targetID
	idx := trace.NewIndex(p)
	if renamed && idx.Has(r.ID) {
		return types.Impact{}, &types.ValidationError{Field: "id", Value: r.ID, Reason: types.ErrDuplicateID}
	}
	if err := checkParent(idx, targetID, r.ID, r.ParentID); err != nil {
		return types.Impact{}, err
	}

	r.LastModified = s.stamp()
	r.NeedsReview = false
	sub.Requirements[pos] = &r

	if !renamed {
		return s.impact(types.OpUpdateRequirement, project, targetID, nil), s.persist()
	}
	affected := trace.Repoint(p, targetID, r.ID)
	s.logger.Info("requirement renamed",
		zap.String("project", project), zap.String("from", targetID), zap.String("to", r.ID))
	return s.impact(types.OpRenameRequirement, project, targetID, affected), s.persist()
}

// DeleteRequirement removes a requirement. Its children lose their parent
// link and are flagged for review in the same step.
func (s *Store) DeleteRequirement(project, subsystem, id string) (types.Impact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, sub, err := s.subsystem(project, subsystem)
	if err != nil {
		return types.Impact{}, err
	}
	pos := sub.Index(id)
	if pos < 0 {
		return types.Impact{}, notFound(project, subsystem, id)
	}
	sub.Requirements = append(sub.Requirements[:pos], sub.Requirements[pos+1:]...)
	affected := trace.Orphan(p, map[string]struct{}{id: {}})

	im := s.impact(types.OpDeleteRequirement, project, id, affected)
	return im, s.persist()
}

// Reorder swaps a requirement with its neighbor. Moving past either end
// of the list does nothing.
func (s *Store) Reorder(project, subsystem, id string, dir types.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sub, err := s.subsystem(project, subsystem)
	if err != nil {
		return err
	}
	pos := sub.Index(id)
	if pos < 0 {
		return notFound(project, subsystem, id)
	}
	var other int
	switch dir {
	case types.Up:
		other = pos - 1
	case types.Down:
		other = pos + 1
	default:
		return fmt.Errorf("unknown direction %d", dir)
	}
	if other < 0 || other >= len(sub.Requirements) {
		return nil
	}
	reqs := sub.Requirements
	reqs[pos], reqs[other] = reqs[other], reqs[pos]
	return s.persist()
}

// checkParent validates parentID for the requirement currently known as
// targetID that will be stored as newID.
func checkParent(idx *trace.Index, targetID, newID, parentID string) error {
	if parentID == "" {
		return nil
	}
	if parentID == targetID {
		// Renaming X to Y with parent X would leave Y under its own old id.
		return &types.CycleError{ID: newID, ParentID: parentID}
	}
	if !idx.Has(parentID) {
		return &types.ValidationError{Field: "parent_id", Value: parentID, Reason: types.ErrDanglingParent}
	}
	if trace.HasCycle(idx, targetID, parentID) {
		return &types.CycleError{ID: newID, ParentID: parentID}
	}
	return nil
}

// checkLabels rejects unknown type, status and method labels. A legacy
// label already carried by prev may be kept.
func checkLabels(r, prev *types.Requirement) error {
	if r.Type.IsLegacy() && (prev == nil || r.Type != prev.Type) {
		return &types.ValidationError{Field: "type", Value: string(r.Type), Reason: types.ErrUnknownLabel}
	}
	if r.Status.IsLegacy() && (prev == nil || r.Status != prev.Status) {
		return &types.ValidationError{Field: "status", Value: string(r.Status), Reason: types.ErrUnknownLabel}
	}
	if r.Method.IsLegacy() && (prev == nil || r.Method != prev.Method) {
		return &types.ValidationError{Field: "method", Value: string(r.Method), Reason: types.ErrUnknownLabel}
	}
	return nil
}

func notFound(project, subsystem, id string) error {
	return fmt.Errorf("%w: %q in %s/%s", types.ErrRequirementNotFound, id, project, subsystem)
}
