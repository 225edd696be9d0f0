package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netgraph-backend/domain/core/aggregates"
)

func sampleResult() *aggregates.AnalysisResult {
	return &aggregates.AnalysisResult{
		Communities: []aggregates.Community{
			{ID: 0, Size: 9, Percentage: 90, InternalDensity: 0.4},
			{ID: 1, Size: 1, Percentage: 10},
		},
		BridgeNodes: []aggregates.RankedNode{
			{NodeID: "n1", DisplayName: "Alex", Score: 0.31},
		},
		Density:   0.05,
		NodeCount: 10,
		DegreeDistribution: aggregates.DegreeDistribution{
			MaxIn: 7,
		},
	}
}

func TestResolvePath(t *testing.T) {
	result := sampleResult()

	tests := []struct {
		name string
		path string
		want interface{}
		ok   bool
	}{
		{name: "top-level float", path: "density", want: 0.05, ok: true},
		{name: "top-level int", path: "nodeCount", want: 10, ok: true},
		{name: "slice index", path: "communities.0.percentage", want: 90.0, ok: true},
		{name: "second element", path: "communities.1.size", want: 1, ok: true},
		{name: "nested struct", path: "degreeDistribution.maxIn", want: 7, ok: true},
		{name: "ranked node string", path: "bridgeNodes.0.displayName", want: "Alex", ok: true},
		{name: "index out of range", path: "communities.5.size", ok: false},
		{name: "unknown field", path: "nonsense", ok: false},
		{name: "field beyond scalar", path: "density.foo", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, err := compilePath(tt.path)
			require.NoError(t, err)
			got, ok := resolvePath(result, steps)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCompilePath_Invalid(t *testing.T) {
	for _, path := range []string{"", "a..b", "communities.-1"} {
		_, err := compilePath(path)
		assert.Error(t, err, path)
	}
}

func TestAsFloat(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{in: 3.5, want: 3.5, ok: true},
		{in: 7, want: 7, ok: true},
		{in: int64(9), want: 9, ok: true},
		{in: true, want: 1, ok: true},
		{in: "nope", ok: false},
	}
	for _, tt := range tests {
		got, ok := asFloat(tt.in)
		assert.Equal(t, tt.ok, ok)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
