package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/satreq/pkg/types"
)

func propulsionReqs() []*types.Requirement {
	return []*types.Requirement{
		{ID: "SYS-001", Type: types.TypePerformance, Description: "<p>Pointing accuracy below 0.1 deg</p>"},
		{ID: "SYS-002", Type: types.TypePerformance, Description: "<p>Main engine <b>thrust</b> above 400 N</p>"},
		{ID: "SYS-003", Type: types.TypeFunctional, Description: "The thrust vector shall be commandable"},
		{ID: "SYS-004", Type: types.TypeInterface, Description: "Thruster valve connector", ParentID: "SYS-002"},
		{ID: "SYS-005", Type: types.TypeSafety, Description: "Inhibit thrust during launch"},
	}
}

func ids(reqs []*types.Requirement) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.ID
	}
	return out
}

func TestApplyTypeAndText(t *testing.T) {
	got := Apply(propulsionReqs(), types.Filter{Text: "thrust", Type: types.TypePerformance})
	require.Len(t, got, 1)
	assert.Equal(t, "SYS-002", got[0].ID)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter types.Filter
		want   []string
	}{
		{
			name:   "zero filter shows all in order",
			filter: types.Filter{},
			want:   []string{"SYS-001", "SYS-002", "SYS-003", "SYS-004", "SYS-005"},
		},
		{
			name:   "All type matches every type",
			filter: types.Filter{Type: types.TypeAll},
			want:   []string{"SYS-001", "SYS-002", "SYS-003", "SYS-004", "SYS-005"},
		},
		{
			name:   "text is case-insensitive",
			filter: types.Filter{Text: "THRUST"},
			want:   []string{"SYS-002", "SYS-003", "SYS-004", "SYS-005"},
		},
		{
			name:   "markup is not searchable",
			filter: types.Filter{Text: "<b>"},
			want:   []string{},
		},
		{
			name:   "text across tag boundary",
			filter: types.Filter{Text: "engine thrust"},
			want:   []string{"SYS-002"},
		},
		{
			name:   "parent id matches",
			filter: types.Filter{Text: "sys-002"},
			want:   []string{"SYS-002", "SYS-004"},
		},
		{
			name:   "type column matches",
			filter: types.Filter{Text: "safety"},
			want:   []string{"SYS-005"},
		},
		{
			name:   "type only",
			filter: types.Filter{Type: types.TypeFunctional},
			want:   []string{"SYS-003"},
		},
		{
			name:   "description words separated by a space",
			filter: types.Filter{Text: "vector shall"},
			want:   []string{"SYS-003"},
		},
		{
			name:   "no match",
			filter: types.Filter{Text: "battery"},
			want:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(propulsionReqs(), tt.filter)))
		})
	}
}

func TestMatchUsesTextAsGiven(t *testing.T) {
	spaced := &types.Requirement{ID: "SYS-001", Type: types.TypeSystem, Status: types.StatusDraft,
		Method: types.MethodAnalysis, Description: "<p>Ocean topography</p>"}
	single := &types.Requirement{ID: "SYS-002", Type: types.TypeSystem, Status: types.StatusDraft,
		Method: types.MethodAnalysis, Description: "<p>Altimetry</p>"}

	assert.True(t, Match(types.Filter{Text: " "}, spaced))
	assert.False(t, Match(types.Filter{Text: " "}, single))
	assert.False(t, Match(types.Filter{Text: " SYS-002"}, single))
}

func TestProject(t *testing.T) {
	p := &types.Project{
		Name: "Sentinel-6",
		Subsystems: []*types.Subsystem{
			{Name: "Mission", Requirements: []*types.Requirement{
				{ID: "SYS-001", Type: types.TypeSystem, Description: "Ocean topography mission"},
			}},
			{Name: "Propulsion", Requirements: propulsionReqs()[:2]},
		},
	}
	hits := Project(p, types.Filter{Text: "SYS-00"})
	require.Len(t, hits, 3)
	assert.Equal(t, "Mission", hits[0].Subsystem)
	assert.Equal(t, "Propulsion", hits[1].Subsystem)
	assert.Equal(t, "SYS-002", hits[2].Requirement.ID)

	assert.Empty(t, Project(p, types.Filter{Text: "battery"}))
}
