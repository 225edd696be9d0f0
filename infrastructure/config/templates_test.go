package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netgraph-backend/domain/insights"
	pkgerrors "netgraph-backend/pkg/errors"
)

const validLibrary = `
templates:
  - id: dense-network
    category: NETWORK
    priority: 60
    title: "Tightly knit network"
    description: "{{edgeCount|number}} ties across {{nodeCount|number}} accounts."
    conditions:
      - field: density
        operator: gte
        value: 0.1
  - id: mid-sized
    category: GROWTH
    priority: 40
    title: "Mid-sized network"
    description: "A network of {{nodeCount|number}} accounts."
    conditions:
      - field: nodeCount
        operator: between
        values: [50, 500]
`

func writeLibrary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTemplates(t *testing.T) {
	templates, err := LoadTemplates(writeLibrary(t, validLibrary))
	require.NoError(t, err)
	require.Len(t, templates, 2)

	assert.Equal(t, "dense-network", templates[0].ID)
	assert.Equal(t, insights.CategoryNetwork, templates[0].Category)
	assert.Equal(t, 60, templates[0].Priority)
	require.Len(t, templates[0].Conditions, 1)
	assert.Equal(t, insights.OpGte, templates[0].Conditions[0].Operator)
	assert.Equal(t, 0.1, templates[0].Conditions[0].Value)

	assert.Equal(t, []float64{50, 500}, templates[1].Conditions[0].Values)
}

func TestLoadTemplates_MissingFile(t *testing.T) {
	_, err := LoadTemplates(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestLoadTemplates_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "templates: [}"},
		{name: "empty library", content: "templates: []"},
		{
			name: "missing id",
			content: `
templates:
  - category: NETWORK
    title: t
    description: d
    conditions:
      - {field: density, operator: gte, value: 0.1}
`,
		},
		{
			name: "duplicate id",
			content: `
templates:
  - id: dup
    category: NETWORK
    title: t
    description: d
    conditions:
      - {field: density, operator: gte, value: 0.1}
  - id: dup
    category: NETWORK
    title: t
    description: d
    conditions:
      - {field: density, operator: lt, value: 0.1}
`,
		},
		{
			name: "unknown category",
			content: `
templates:
  - id: bad-category
    category: WEATHER
    title: t
    description: d
    conditions:
      - {field: density, operator: gte, value: 0.1}
`,
		},
		{
			name: "unknown operator",
			content: `
templates:
  - id: bad-operator
    category: NETWORK
    title: t
    description: d
    conditions:
      - {field: density, operator: near, value: 0.1}
`,
		},
		{
			name: "between needs two values",
			content: `
templates:
  - id: bad-between
    category: NETWORK
    title: t
    description: d
    conditions:
      - {field: nodeCount, operator: between, values: [5]}
`,
		},
		{
			name: "in needs values",
			content: `
templates:
  - id: bad-in
    category: NETWORK
    title: t
    description: d
    conditions:
      - {field: nodeCount, operator: in}
`,
		},
		{
			name: "no conditions",
			content: `
templates:
  - id: unconditional
    category: NETWORK
    title: t
    description: d
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTemplates(writeLibrary(t, tt.content))
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}

func TestStaticTemplateProvider_DefaultsToBuiltinLibrary(t *testing.T) {
	p := NewStaticTemplateProvider(nil)
	assert.Equal(t, insights.DefaultLibrary(), p.Templates())
}

func TestStaticTemplateProvider_CopiesOnRead(t *testing.T) {
	p := NewStaticTemplateProvider([]insights.InsightTemplate{{
		ID: "only", Category: insights.CategoryNetwork, Title: "t", Description: "d",
		Conditions: []insights.Condition{{Field: "density", Operator: insights.OpGte, Value: 0.1}},
	}})

	first := p.Templates()
	first[0].ID = "mutated"
	assert.Equal(t, "only", p.Templates()[0].ID)
}

func TestWatchingTemplateProvider_LoadsAndCloses(t *testing.T) {
	path := writeLibrary(t, validLibrary)

	p, err := NewWatchingTemplateProvider(path, nil)
	require.NoError(t, err)
	defer p.Close()

	assert.Len(t, p.Templates(), 2)
}

func TestWatchingTemplateProvider_RejectsInvalidLibrary(t *testing.T) {
	path := writeLibrary(t, "templates: []")
	_, err := NewWatchingTemplateProvider(path, nil)
	assert.Error(t, err)
}
