package store

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/satreq/internal/persist"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// memGateway records saves and can be made to fail.
type memGateway struct {
	saved   *types.Graph
	saves   int
	failErr error
	loadErr error
}

func (m *memGateway) Save(g *types.Graph) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.saves++
	m.saved = g.Clone()
	return nil
}

func (m *memGateway) Load() (*types.Graph, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.saved == nil {
		return nil, &types.LoadError{Path: m.Path(), Err: os.ErrNotExist}
	}
	return m.saved.Clone(), nil
}

func (m *memGateway) Path() string { return "mem.json" }

var fixedNow = time.Date(2026, 10, 19, 8, 15, 42, 123456789, time.Local)

func newStore(t *testing.T) (*Store, *memGateway) {
	t.Helper()
	gw := &memGateway{}
	s := New(nil, gw, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, s.CreateProject("Sentinel-6", types.StandardSubsystems))
	return s, gw
}

func reqIDs(reqs []*types.Requirement) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.ID
	}
	return out
}

func get(t *testing.T, s *Store, id string) *types.Requirement {
	t.Helper()
	loc, err := s.GetRequirement("Sentinel-6", id)
	require.NoError(t, err)
	return loc.Requirement
}

func TestRenameCascadeScenario(t *testing.T) {
	s, gw := newStore(t)

	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-001"}))
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-002", ParentID: "SYS-001"}))

	im, err := s.UpdateRequirement("Sentinel-6", "Mission", "SYS-001", types.Requirement{ID: "SYS-001A"})
	require.NoError(t, err)
	assert.Equal(t, types.OpRenameRequirement, im.Op)
	assert.Equal(t, []string{"SYS-002"}, im.Affected)
	_, err = uuid.Parse(im.ChangeID)
	assert.NoError(t, err)

	child := get(t, s, "SYS-002")
	assert.Equal(t, "SYS-001A", child.ParentID)
	assert.True(t, child.NeedsReview)
	assert.False(t, get(t, s, "SYS-001A").NeedsReview)

	persisted := gw.saved.Project("Sentinel-6").Subsystem("Mission").Requirements
	assert.Equal(t, "SYS-001A", persisted[0].ID, "write-through")
	assert.Equal(t, "SYS-001A", persisted[1].ParentID)
}

func TestDeleteSubsystemScenario(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-001A"}))
	require.NoError(t, s.AddRequirement("Sentinel-6", "Payload", types.Requirement{ID: "SYS-002", ParentID: "SYS-001A"}))

	im, err := s.DeleteSubsystem("Sentinel-6", "Mission")
	require.NoError(t, err)
	assert.Equal(t, []string{"SYS-002"}, im.Affected)

	child := get(t, s, "SYS-002")
	assert.Equal(t, "", child.ParentID)
	assert.True(t, child.NeedsReview)

	subs, err := s.ListSubsystems("Sentinel-6")
	require.NoError(t, err)
	assert.NotContains(t, subs, "Mission")
	_, err = s.GetRequirement("Sentinel-6", "SYS-001A")
	assert.ErrorIs(t, err, types.ErrRequirementNotFound)
}

func TestCycleRejected(t *testing.T) {
	s, gw := newStore(t)
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "A"}))
	require.NoError(t, s.AddRequirement("Sentinel-6", "AOCS", types.Requirement{ID: "B", ParentID: "A"}))
	before := s.Snapshot()
	saves := gw.saves

	_, err := s.UpdateRequirement("Sentinel-6", "Mission", "A", types.Requirement{ID: "A", ParentID: "B"})
	require.ErrorIs(t, err, types.ErrCycleDetected)
	var ce *types.CycleError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "A", ce.ID)
	assert.Equal(t, "B", ce.ParentID)

	assert.Equal(t, before, s.Snapshot(), "graph unchanged")
	assert.Equal(t, saves, gw.saves, "nothing persisted")
}

func TestRenameWithParentOnOldID(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "X"}))
	_, err := s.UpdateRequirement("Sentinel-6", "Mission", "X", types.Requirement{ID: "Y", ParentID: "X"})
	assert.ErrorIs(t, err, types.ErrCycleDetected)
}

func TestAddRequirementValidation(t *testing.T) {
	tests := []struct {
		name   string
		data   types.Requirement
		reason error
	}{
		{"empty id", types.Requirement{ID: ""}, types.ErrEmptyID},
		{"space in id", types.Requirement{ID: "SYS 003"}, types.ErrWhitespaceID},
		{"tab in id", types.Requirement{ID: "SYS-003\t"}, types.ErrWhitespaceID},
		{"duplicate in other subsystem", types.Requirement{ID: "PAY-001"}, types.ErrDuplicateID},
		{"self parent", types.Requirement{ID: "SYS-003", ParentID: "SYS-003"}, types.ErrSelfParent},
		{"dangling parent", types.Requirement{ID: "SYS-003", ParentID: "SYS-404"}, types.ErrDanglingParent},
		{"unknown type", types.Requirement{ID: "SYS-003", Type: "Operational"}, types.ErrUnknownLabel},
		{"unknown status", types.Requirement{ID: "SYS-003", Status: "Under review"}, types.ErrUnknownLabel},
		{"unknown method", types.Requirement{ID: "SYS-003", Method: "Demonstration"}, types.ErrUnknownLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, gw := newStore(t)
			require.NoError(t, s.AddRequirement("Sentinel-6", "Payload", types.Requirement{ID: "PAY-001"}))
			before := s.Snapshot()
			saves := gw.saves

			err := s.AddRequirement("Sentinel-6", "Mission", tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrValidation)
			assert.ErrorIs(t, err, tt.reason)
			assert.Equal(t, before, s.Snapshot())
			assert.Equal(t, saves, gw.saves)
		})
	}
}

func TestAddRequirementAdoptingOrphanCycle(t *testing.T) {
	g := &types.Graph{Projects: []*types.Project{{
		Name: "P",
		Subsystems: []*types.Subsystem{{Name: "Mission", Requirements: []*types.Requirement{
			{ID: "B", ParentID: "X"},
		}}},
	}}}
	s := New(g, nil)
	err := s.AddRequirement("P", "Mission", types.Requirement{ID: "X", ParentID: "B"})
	assert.ErrorIs(t, err, types.ErrCycleDetected)
}

func TestAddRequirementDefaultsAndStamp(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.AddRequirement("Sentinel-6", "EPS", types.Requirement{
		ID: "EPS-001", Description: "<p>Battery capacity</p>", NeedsReview: true,
	}))
	r := get(t, s, "EPS-001")
	assert.Equal(t, types.TypeSystem, r.Type)
	assert.Equal(t, types.StatusDraft, r.Status)
	assert.Equal(t, types.MethodAnalysis, r.Method)
	assert.False(t, r.NeedsReview)
	assert.Equal(t, fixedNow.Truncate(time.Second), r.LastModified)

	reqs, err := s.ListRequirements("Sentinel-6", "EPS")
	require.NoError(t, err)
	require.Len(t, reqs, 1)
}

func TestUpdateRequirement(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-001"}))
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-002"}))
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-003"}))

	t.Run("in place keeps position", func(t *testing.T) {
		im, err := s.UpdateRequirement("Sentinel-6", "Mission", "SYS-002", types.Requirement{
			ID: "SYS-002", ParentID: "SYS-001", Status: types.StatusVerified, Value: "42",
		})
		require.NoError(t, err)
		assert.Equal(t, types.OpUpdateRequirement, im.Op)
		assert.Empty(t, im.Affected)

		reqs, err := s.ListRequirements("Sentinel-6", "Mission")
		require.NoError(t, err)
		assert.Equal(t, "SYS-002", reqs[1].ID)
		assert.Equal(t, "42", reqs[1].Value)
		assert.Equal(t, types.StatusVerified, reqs[1].Status)
	})

	t.Run("rename onto existing id", func(t *testing.T) {
		_, err := s.UpdateRequirement("Sentinel-6", "Mission", "SYS-003", types.Requirement{ID: "SYS-001"})
		assert.ErrorIs(t, err, types.ErrDuplicateID)
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := s.UpdateRequirement("Sentinel-6", "Mission", "SYS-999", types.Requirement{ID: "SYS-999"})
		assert.ErrorIs(t, err, types.ErrRequirementNotFound)
	})

	t.Run("target in other subsystem", func(t *testing.T) {
		_, err := s.UpdateRequirement("Sentinel-6", "EPS", "SYS-001", types.Requirement{ID: "SYS-001"})
		assert.ErrorIs(t, err, types.ErrRequirementNotFound)
	})

	t.Run("edit clears own review flag", func(t *testing.T) {
		_, err := s.UpdateRequirement("Sentinel-6", "Mission", "SYS-001", types.Requirement{ID: "SYS-001X"})
		require.NoError(t, err)
		require.True(t, get(t, s, "SYS-002").NeedsReview)

		_, err = s.UpdateRequirement("Sentinel-6", "Mission", "SYS-002", types.Requirement{ID: "SYS-002", ParentID: "SYS-001X"})
		require.NoError(t, err)
		assert.False(t, get(t, s, "SYS-002").NeedsReview)
	})
}

func TestUpdateKeepsLegacyLabels(t *testing.T) {
	g := &types.Graph{Projects: []*types.Project{{
		Name: "P",
		Subsystems: []*types.Subsystem{{Name: "Mission", Requirements: []*types.Requirement{
			{ID: "R1", Type: "Operational", Status: "Under review", Method: types.MethodTest},
		}}},
	}}}
	s := New(g, nil)

	_, err := s.UpdateRequirement("P", "Mission", "R1", types.Requirement{
		ID: "R1", Type: "Operational", Status: "Under review", Method: types.MethodTest, Value: "5",
	})
	require.NoError(t, err)

	_, err = s.UpdateRequirement("P", "Mission", "R1", types.Requirement{
		ID: "R1", Type: "Mission", Status: "Under review", Method: types.MethodTest,
	})
	assert.ErrorIs(t, err, types.ErrUnknownLabel)
}

func TestDeleteRequirementOrphansChildren(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-001"}))
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-002", ParentID: "SYS-001"}))
	require.NoError(t, s.AddRequirement("Sentinel-6", "AOCS", types.Requirement{ID: "AOCS-001", ParentID: "SYS-001"}))
	require.NoError(t, s.AddRequirement("Sentinel-6", "AOCS", types.Requirement{ID: "AOCS-002", ParentID: "AOCS-001"}))

	preview, err := s.PreviewChildren("Sentinel-6", "SYS-001")
	require.NoError(t, err)
	assert.Equal(t, types.ChildPreview{Count: 2, Sample: []string{"SYS-002", "AOCS-001"}}, preview)

	im, err := s.DeleteRequirement("Sentinel-6", "Mission", "SYS-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"SYS-002", "AOCS-001"}, im.Affected)

	for _, id := range im.Affected {
		r := get(t, s, id)
		assert.Empty(t, r.ParentID)
		assert.True(t, r.NeedsReview)
	}
	assert.Equal(t, "AOCS-001", get(t, s, "AOCS-002").ParentID)
	assert.False(t, get(t, s, "AOCS-002").NeedsReview)

	_, err = s.DeleteRequirement("Sentinel-6", "Mission", "SYS-001")
	assert.ErrorIs(t, err, types.ErrRequirementNotFound)
}

func TestPreviewChildrenSample(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "ROOT"}))
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.AddRequirement("Sentinel-6", "TCS", types.Requirement{ID: fmt.Sprintf("TCS-%03d", i), ParentID: "ROOT"}))
	}
	preview, err := s.PreviewChildren("Sentinel-6", "ROOT")
	require.NoError(t, err)
	assert.Equal(t, 5, preview.Count)
	assert.Equal(t, []string{"TCS-001", "TCS-002", "TCS-003"}, preview.Sample)

	children, err := s.FindChildren("Sentinel-6", "ROOT")
	require.NoError(t, err)
	require.Len(t, children, 5)
	assert.Equal(t, "TCS", children[0].Subsystem)
}

func TestReorder(t *testing.T) {
	s, _ := newStore(t)
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, s.AddRequirement("Sentinel-6", "OBDH", types.Requirement{ID: id}))
	}
	order := func() []string {
		reqs, err := s.ListRequirements("Sentinel-6", "OBDH")
		require.NoError(t, err)
		var ids []string
		for _, r := range reqs {
			ids = append(ids, r.ID)
		}
		return ids
	}

	require.NoError(t, s.Reorder("Sentinel-6", "OBDH", "C", types.Up))
	assert.Equal(t, []string{"A", "C", "B"}, order())
	require.NoError(t, s.Reorder("Sentinel-6", "OBDH", "A", types.Up))
	assert.Equal(t, []string{"A", "C", "B"}, order(), "top boundary is a no-op")
	require.NoError(t, s.Reorder("Sentinel-6", "OBDH", "B", types.Down))
	assert.Equal(t, []string{"A", "C", "B"}, order(), "bottom boundary is a no-op")
	require.NoError(t, s.Reorder("Sentinel-6", "OBDH", "A", types.Down))
	assert.Equal(t, []string{"C", "A", "B"}, order())

	assert.ErrorIs(t, s.Reorder("Sentinel-6", "OBDH", "Z", types.Up), types.ErrRequirementNotFound)
}

func TestProjectOperations(t *testing.T) {
	s, _ := newStore(t)

	assert.ErrorIs(t, s.CreateProject("Sentinel-6", nil), types.ErrDuplicateName)
	assert.ErrorIs(t, s.CreateProject("  ", nil), types.ErrInvalidName)
	assert.ErrorIs(t, s.CreateProject("Dup", []string{"EPS", "EPS"}), types.ErrDuplicateName)
	assert.Equal(t, []string{"Sentinel-6"}, s.ListProjects(), "failed create leaves nothing behind")

	require.NoError(t, s.CreateProject("CubeSat", []string{"Propulsion"}))
	assert.Equal(t, []string{"Sentinel-6", "CubeSat"}, s.ListProjects())

	require.NoError(t, s.AddRequirement("CubeSat", "Propulsion", types.Requirement{ID: "SYS-001"}))
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-001"}), "ids are project scoped")

	assert.ErrorIs(t, s.RenameProject("CubeSat", "Sentinel-6"), types.ErrDuplicateName)
	require.NoError(t, s.RenameProject("CubeSat", "CubeSat"))
	require.NoError(t, s.RenameProject("CubeSat", "CubeSat-2"))
	assert.Equal(t, []string{"Sentinel-6", "CubeSat-2"}, s.ListProjects())
	ids, err := s.AllIDs("CubeSat-2")
	require.NoError(t, err)
	assert.Contains(t, ids, "SYS-001")

	assert.ErrorIs(t, s.RenameProject("Nope", "X"), types.ErrProjectNotFound)
	assert.ErrorIs(t, s.DeleteProject("Nope"), types.ErrProjectNotFound)
	require.NoError(t, s.DeleteProject("CubeSat-2"))
	assert.Equal(t, []string{"Sentinel-6"}, s.ListProjects())
}

func TestSubsystemOperations(t *testing.T) {
	s, _ := newStore(t)

	assert.ErrorIs(t, s.AddSubsystem("Sentinel-6", "EPS"), types.ErrDuplicateName)
	require.NoError(t, s.AddSubsystem("Sentinel-6", "Ground Segment"))
	require.NoError(t, s.AddRequirement("Sentinel-6", "TCS", types.Requirement{ID: "TCS-001"}))

	assert.ErrorIs(t, s.RenameSubsystem("Sentinel-6", "TCS", "EPS"), types.ErrDuplicateName)
	require.NoError(t, s.RenameSubsystem("Sentinel-6", "TCS", "Thermal"))

	subs, err := s.ListSubsystems("Sentinel-6")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mission", "Payload", "AOCS", "EPS", "Thermal", "COMMS", "OBDH", "Structure", "Ground Segment"}, subs)

	reqs, err := s.ListRequirements("Sentinel-6", "Thermal")
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	_, err = s.ListRequirements("Sentinel-6", "TCS")
	assert.ErrorIs(t, err, types.ErrSubsystemNotFound)
	_, err = s.DeleteSubsystem("Sentinel-6", "TCS")
	assert.ErrorIs(t, err, types.ErrSubsystemNotFound)
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s, gw := newStore(t)
	s.logger = zap.New(core)

	gw.failErr = &types.SaveError{Path: "mem.json", Err: errors.New("disk full")}
	err := s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-001"})
	require.ErrorIs(t, err, types.ErrSave)
	assert.Equal(t, 1, logs.Len())

	_, err = s.GetRequirement("Sentinel-6", "SYS-001")
	require.NoError(t, err, "in-memory change kept")
	assert.Empty(t, gw.saved.Project("Sentinel-6").Subsystem("Mission").Requirements)

	gw.failErr = nil
	require.NoError(t, s.Save())
	assert.Len(t, gw.saved.Project("Sentinel-6").Subsystem("Mission").Requirements, 1)
}

func TestSaveFailureWrapsPlainErrors(t *testing.T) {
	s, gw := newStore(t)
	gw.failErr = errors.New("boom")
	err := s.AddSubsystem("Sentinel-6", "Propulsion")
	assert.ErrorIs(t, err, types.ErrSave)
	var se *types.SaveError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "mem.json", se.Path)
}

func TestReload(t *testing.T) {
	s, gw := newStore(t)
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-001"}))

	gw.loadErr = &types.LoadError{Path: "mem.json", Err: errors.New("bad json")}
	require.ErrorIs(t, s.Reload(), types.ErrLoad)
	assert.Equal(t, []string{"Sentinel-6"}, s.ListProjects(), "failed load keeps memory")

	gw.loadErr = nil
	gw.saved = types.NewGraph()
	require.NoError(t, s.Reload())
	assert.Empty(t, s.ListProjects())
}

func TestOpen(t *testing.T) {
	s, err := Open(&memGateway{})
	require.NoError(t, err)
	assert.Empty(t, s.ListProjects(), "missing file starts empty")

	_, err = Open(&memGateway{loadErr: &types.LoadError{Path: "x", Err: errors.New("bad")}})
	assert.ErrorIs(t, err, types.ErrLoad)
}

func TestProposeNextID(t *testing.T) {
	s, _ := newStore(t)
	id, err := s.ProposeNextID("Sentinel-6")
	require.NoError(t, err)
	assert.Equal(t, "SYS-001", id)

	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-007"}))
	id, err = s.ProposeNextID("Sentinel-6")
	require.NoError(t, err)
	assert.Equal(t, "SYS-008", id)

	custom := New(s.Snapshot(), nil, WithIDPrefix("S6"))
	id, err = custom.ProposeNextID("Sentinel-6")
	require.NoError(t, err)
	assert.Equal(t, "S6-001", id)

	_, err = s.ProposeNextID("Nope")
	assert.ErrorIs(t, err, types.ErrProjectNotFound)
}

func TestSearch(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.AddRequirement("Sentinel-6", "Payload", types.Requirement{
		ID: "PAY-001", Type: types.TypePerformance, Description: "<p>Radar altimeter <b>thrust</b>-free</p>",
	}))
	require.NoError(t, s.AddRequirement("Sentinel-6", "AOCS", types.Requirement{
		ID: "AOCS-001", Type: types.TypePerformance, Description: "Thruster pulse width",
	}))
	hits, err := s.Search("Sentinel-6", types.Filter{Text: "thrust", Type: types.TypePerformance})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Payload", hits[0].Subsystem)
	assert.Equal(t, "AOCS", hits[1].Subsystem)

	hits[0].Requirement.ID = "changed"
	_, err = s.GetRequirement("Sentinel-6", "PAY-001")
	assert.NoError(t, err)

	_, err = s.Search("Nope", types.Filter{})
	assert.ErrorIs(t, err, types.ErrProjectNotFound)
}

func TestFilterRequirements(t *testing.T) {
	s, _ := newStore(t)
	for _, r := range []types.Requirement{
		{ID: "AOCS-001", Type: types.TypePerformance, Description: "<p>Thruster pulse width</p>"},
		{ID: "AOCS-002", Type: types.TypeFunctional, Description: "<p>Safe mode on thruster failure</p>"},
		{ID: "AOCS-003", Type: types.TypePerformance, Description: "<p>Pointing stability</p>"},
	} {
		require.NoError(t, s.AddRequirement("Sentinel-6", "AOCS", r))
	}
	require.NoError(t, s.AddRequirement("Sentinel-6", "Payload", types.Requirement{
		ID: "PAY-001", Type: types.TypePerformance, Description: "thruster plume keep-out",
	}))

	got, err := s.FilterRequirements("Sentinel-6", "AOCS", types.Filter{Text: "THRUSTER"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AOCS-001", "AOCS-002"}, reqIDs(got))

	got, err = s.FilterRequirements("Sentinel-6", "AOCS", types.Filter{Text: "thruster", Type: types.TypePerformance})
	require.NoError(t, err)
	assert.Equal(t, []string{"AOCS-001"}, reqIDs(got))

	got, err = s.FilterRequirements("Sentinel-6", "AOCS", types.Filter{Type: types.TypeAll})
	require.NoError(t, err)
	assert.Equal(t, []string{"AOCS-001", "AOCS-002", "AOCS-003"}, reqIDs(got))

	_, err = s.FilterRequirements("Sentinel-6", "Nope", types.Filter{})
	assert.ErrorIs(t, err, types.ErrSubsystemNotFound)
}

func TestCheckAndRepairOrphans(t *testing.T) {
	g := &types.Graph{Projects: []*types.Project{{
		Name: "Legacy",
		Subsystems: []*types.Subsystem{{Name: "Mission", Requirements: []*types.Requirement{
			{ID: "SYS-001"},
			{ID: "SYS-002", ParentID: "SYS-000"},
			{ID: "SYS-003", ParentID: "SYS-001"},
		}}},
	}}}
	gw := &memGateway{}
	s := New(g, gw)

	issues, err := s.Check("Legacy")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, types.IssueDanglingParent, issues[0].Kind)
	assert.Equal(t, "SYS-002", issues[0].ID)

	im, err := s.RepairOrphans("Legacy")
	require.NoError(t, err)
	assert.Equal(t, []string{"SYS-002"}, im.Affected)
	assert.Equal(t, 1, gw.saves)

	loc, err := s.GetRequirement("Legacy", "SYS-002")
	require.NoError(t, err)
	assert.Empty(t, loc.Requirement.ParentID)
	assert.True(t, loc.Requirement.NeedsReview)

	im, err = s.RepairOrphans("Legacy")
	require.NoError(t, err)
	assert.Empty(t, im.Affected)
	assert.Equal(t, 1, gw.saves, "nothing to repair, nothing written")
}

func TestReadAccessorsReturnCopies(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-001"}))

	reqs, err := s.ListRequirements("Sentinel-6", "Mission")
	require.NoError(t, err)
	reqs[0].ID = "mutated"

	snap := s.Snapshot()
	snap.Projects[0].Name = "mutated"

	assert.Equal(t, "SYS-001", get(t, s, "SYS-001").ID)
	assert.Equal(t, []string{"Sentinel-6"}, s.ListProjects())
}

// Random add/update sequences never break id uniqueness: each call either
// succeeds with unique ids or fails without changing the graph.
func TestUniquenessUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New(nil, nil)
	require.NoError(t, s.CreateProject("P", []string{"Mission", "Payload", "EPS"}))
	subs := []string{"Mission", "Payload", "EPS"}
	pool := []string{"SYS-001", "SYS-002", "SYS-003", "SYS-004", "SYS-005", "SYS-006"}
	pick := func() string { return pool[rng.Intn(len(pool))] }

	for i := 0; i < 400; i++ {
		before := s.Snapshot()
		sub := subs[rng.Intn(len(subs))]
		parent := ""
		if rng.Intn(2) == 0 {
			parent = pick()
		}
		var err error
		if rng.Intn(2) == 0 {
			err = s.AddRequirement("P", sub, types.Requirement{ID: pick(), ParentID: parent})
		} else {
			_, err = s.UpdateRequirement("P", sub, pick(), types.Requirement{ID: pick(), ParentID: parent})
		}

		seen := make(map[string]bool)
		s.Snapshot().Project("P").Walk(func(_ *types.Subsystem, r *types.Requirement) bool {
			require.False(t, seen[r.ID], "duplicate id %s after step %d", r.ID, i)
			seen[r.ID] = true
			return true
		})
		if err != nil {
			require.Equal(t, before, s.Snapshot(), "failed call mutated the graph at step %d", i)
		}
		issues, cerr := s.Check("P")
		require.NoError(t, cerr)
		require.Empty(t, issues, "step %d", i)
	}
}

func TestWithFileGateway(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reqs.json")
	s, err := Open(persist.NewFile(path), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	require.NoError(t, s.CreateProject("Sentinel-6", types.StandardSubsystems))
	require.NoError(t, s.AddRequirement("Sentinel-6", "Mission", types.Requirement{ID: "SYS-001", Description: "<p>Global coverage</p>"}))
	require.NoError(t, s.AddRequirement("Sentinel-6", "Payload", types.Requirement{ID: "PAY-001", ParentID: "SYS-001"}))

	reopened, err := Open(persist.NewFile(path))
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
}
