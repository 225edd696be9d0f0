package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netgraph-backend/domain/core/valueobjects"
)

var matchTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestMatch_DefaultLibrary(t *testing.T) {
	m := NewMatcher(nil, nil)

	out, err := m.Match("graph-1", sampleResult(), DefaultLibrary(), matchTime)
	require.NoError(t, err)
	require.Len(t, out, 3)

	// Ordered by descending priority.
	assert.Equal(t, "community-large-dominant", out[0].TemplateID)
	assert.Equal(t, "engagement-bridge-person", out[1].TemplateID)
	assert.Equal(t, "growth-maturity-low", out[2].TemplateID)

	assert.Equal(t,
		"90% of your connections belong to a single community of 9 accounts. "+
			"Most of what you see likely originates there.",
		out[0].Description,
	)
	assert.Equal(t, CategoryCommunity, out[0].Category)
	assert.Equal(t, ConfidenceHigh, out[0].Confidence)
	assert.Equal(t, valueobjects.GraphID("graph-1"), out[0].GraphID)
	assert.Equal(t, matchTime, out[0].CreatedAt)

	assert.Equal(t, "Alex connects your circles", out[1].Title)
	assert.Equal(t, ConfidenceLow, out[1].Confidence)
}

func TestMatch_OrderingTieBreaksOnID(t *testing.T) {
	m := NewMatcher(nil, nil)
	always := []Condition{{Field: "nodeCount", Operator: OpGt, Value: 0}}

	templates := []InsightTemplate{
		{ID: "zeta", Category: CategoryNetwork, Priority: 50, Title: "z", Description: "z", Conditions: always},
		{ID: "alpha", Category: CategoryNetwork, Priority: 50, Title: "a", Description: "a", Conditions: always},
		{ID: "top", Category: CategoryNetwork, Priority: 90, Title: "t", Description: "t", Conditions: always},
	}

	out, err := m.Match("graph-1", sampleResult(), templates, matchTime)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "top", out[0].TemplateID)
	assert.Equal(t, "alpha", out[1].TemplateID)
	assert.Equal(t, "zeta", out[2].TemplateID)
}

func TestMatch_SkipsUnresolvableRequiredVariables(t *testing.T) {
	m := NewMatcher(nil, nil)

	// topInfluencerName is only derivable when influencers exist.
	templates := []InsightTemplate{{
		ID:                "needs-influencer",
		Category:          CategoryEngagement,
		Priority:          50,
		Title:             "{{topInfluencerName}} leads",
		Description:       "whatever",
		Conditions:        []Condition{{Field: "nodeCount", Operator: OpGt, Value: 0}},
		RequiredVariables: []string{"topInfluencerName"},
	}}

	out, err := m.Match("graph-1", sampleResult(), templates, matchTime)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMatch_ConfidenceTiers(t *testing.T) {
	m := NewMatcher(nil, nil)

	tests := []struct {
		name string
		cond Condition
		want Confidence
	}{
		{
			name: "wide margin",
			cond: Condition{Field: "nodeCount", Operator: OpGt, Value: 0},
			want: ConfidenceHigh,
		},
		{
			name: "near the boundary",
			cond: Condition{Field: "density", Operator: OpGte, Value: 0.045},
			want: ConfidenceMedium,
		},
		{
			name: "middling margin",
			cond: Condition{Field: "nodeCount", Operator: OpLte, Value: 12},
			want: ConfidenceLow,
		},
		{
			name: "exact match has no margin",
			cond: Condition{Field: "nodeCount", Operator: OpEq, Value: 10},
			want: ConfidenceHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			templates := []InsightTemplate{{
				ID:          "tier-check",
				Category:    CategoryNetwork,
				Priority:    50,
				Title:       "t",
				Description: "d",
				Conditions:  []Condition{tt.cond},
			}}
			out, err := m.Match("graph-1", sampleResult(), templates, matchTime)
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0].Confidence)
		})
	}
}

func TestMatch_BetweenAndIn(t *testing.T) {
	m := NewMatcher(nil, nil)

	templates := []InsightTemplate{
		{
			ID: "in-range", Category: CategoryNetwork, Priority: 50, Title: "t", Description: "d",
			Conditions: []Condition{{Field: "nodeCount", Operator: OpBetween, Values: []float64{5, 20}}},
		},
		{
			ID: "out-of-range", Category: CategoryNetwork, Priority: 50, Title: "t", Description: "d",
			Conditions: []Condition{{Field: "nodeCount", Operator: OpBetween, Values: []float64{50, 100}}},
		},
		{
			ID: "in-set", Category: CategoryNetwork, Priority: 40, Title: "t", Description: "d",
			Conditions: []Condition{{Field: "nodeCount", Operator: OpIn, Values: []float64{3, 10, 17}}},
		},
	}

	out, err := m.Match("graph-1", sampleResult(), templates, matchTime)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "in-range", out[0].TemplateID)
	assert.Equal(t, "in-set", out[1].TemplateID)
}

func TestMatch_Deterministic(t *testing.T) {
	m := NewMatcher(nil, nil)

	first, err := m.Match("graph-1", sampleResult(), DefaultLibrary(), matchTime)
	require.NoError(t, err)
	second, err := m.Match("graph-1", sampleResult(), DefaultLibrary(), matchTime)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].TemplateID, second[i].TemplateID)
		assert.Equal(t, first[i].Title, second[i].Title)
		assert.Equal(t, first[i].Description, second[i].Description)
		assert.Equal(t, first[i].Confidence, second[i].Confidence)
	}
}

func TestMatch_NilResult(t *testing.T) {
	m := NewMatcher(nil, nil)
	_, err := m.Match("graph-1", nil, DefaultLibrary(), matchTime)
	assert.Error(t, err)
}
