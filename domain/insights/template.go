// Package insights turns computed analysis results into deterministic,
// explainable natural-language insights by matching a condition-based
// template library.
package insights

import (
	"time"

	"netgraph-backend/domain/core/valueobjects"
)

// Category groups templates by the aspect of the network they describe.
type Category string

const (
	CategoryNetwork    Category = "NETWORK"
	CategoryCommunity  Category = "COMMUNITY"
	CategoryEngagement Category = "ENGAGEMENT"
	CategoryGrowth     Category = "GROWTH"
)

// Confidence expresses how far the matched conditions cleared their
// thresholds. It is a deterministic function of the condition margins.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Operator is a comparison applied to a resolved field value.
type Operator string

const (
	OpEq      Operator = "eq"
	OpGte     Operator = "gte"
	OpLte     Operator = "lte"
	OpGt      Operator = "gt"
	OpLt      Operator = "lt"
	OpBetween Operator = "between"
	OpIn      Operator = "in"
)

// Condition compares a dot-path into the analysis result against a
// threshold. Between uses Values[0]..Values[1]; In matches any of Values.
type Condition struct {
	Field    string    `yaml:"field"`
	Operator Operator  `yaml:"operator"`
	Value    float64   `yaml:"value"`
	Values   []float64 `yaml:"values,omitempty"`
}

// InsightTemplate is one rule in the library. A template matches only if
// every condition is true; higher Priority wins ordering, ties broken by
// ID for reproducible output.
type InsightTemplate struct {
	ID                string      `yaml:"id"`
	Category          Category    `yaml:"category"`
	Title             string      `yaml:"title"`
	Description       string      `yaml:"description"`
	Conditions        []Condition `yaml:"conditions"`
	Priority          int         `yaml:"priority"`
	RequiredVariables []string    `yaml:"requiredVariables,omitempty"`
}

// GeneratedInsight is one rendered insight for a graph.
type GeneratedInsight struct {
	ID          valueobjects.InsightID `json:"id"`
	GraphID     valueobjects.GraphID   `json:"graphId"`
	TemplateID  string                 `json:"templateId"`
	Category    Category               `json:"category"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Confidence  Confidence             `json:"confidence"`
	CreatedAt   time.Time              `json:"createdAt"`
}
