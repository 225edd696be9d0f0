package insights

import (
	"math"
	"sort"
	"time"

	"netgraph-backend/domain/config"
	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/valueobjects"
	pkgerrors "netgraph-backend/pkg/errors"

	"go.uber.org/zap"
)

// Matcher evaluates the template library against an analysis result and
// renders the matching insights. Given the same result and library, the
// output list is identical and identically ordered on every run.
type Matcher struct {
	cfg          *config.DomainConfig
	interpolator *Interpolator
	logger       *zap.Logger
}

// NewMatcher creates a matcher.
func NewMatcher(cfg *config.DomainConfig, logger *zap.Logger) *Matcher {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		cfg:          cfg,
		interpolator: NewInterpolator(),
		logger:       logger,
	}
}

// Match evaluates every template and returns the rendered insights sorted
// by descending priority, ties broken by template ID. Templates whose
// required variables cannot be resolved are skipped, not failed.
func (m *Matcher) Match(
	graphID valueobjects.GraphID,
	result *aggregates.AnalysisResult,
	templates []InsightTemplate,
	now time.Time,
) ([]GeneratedInsight, error) {
	if result == nil {
		return nil, pkgerrors.NewValidationError("analysis result cannot be nil")
	}

	vars := deriveVariables(result)
	resolve := func(name string) (interface{}, bool) {
		if v, ok := vars[name]; ok {
			return v, true
		}
		steps, err := compilePath(name)
		if err != nil {
			return nil, false
		}
		return resolvePath(result, steps)
	}

	matched := make([]InsightTemplate, 0)
	margins := make(map[string][]float64)
	for _, tmpl := range templates {
		ok, condMargins, err := m.evaluate(tmpl, result)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, tmpl)
			margins[tmpl.ID] = condMargins
		}
	}

	sort.Slice(matched, func(a, b int) bool {
		if matched[a].Priority != matched[b].Priority {
			return matched[a].Priority > matched[b].Priority
		}
		return matched[a].ID < matched[b].ID
	})

	out := make([]GeneratedInsight, 0, len(matched))
	for _, tmpl := range matched {
		if !m.variablesResolvable(tmpl, resolve) {
			m.logger.Debug("skipping template with unresolvable variables",
				zap.String("template_id", tmpl.ID),
			)
			continue
		}
		title, ok, err := m.interpolator.Render(tmpl.Title, resolve)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		description, ok, err := m.interpolator.Render(tmpl.Description, resolve)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, GeneratedInsight{
			ID:          valueobjects.NewInsightID(),
			GraphID:     graphID,
			TemplateID:  tmpl.ID,
			Category:    tmpl.Category,
			Title:       title,
			Description: description,
			Confidence:  m.confidence(margins[tmpl.ID]),
			CreatedAt:   now,
		})
	}
	return out, nil
}

// evaluate checks every condition of a template. The returned margins are
// the relative distances by which threshold-style conditions were cleared.
func (m *Matcher) evaluate(tmpl InsightTemplate, result *aggregates.AnalysisResult) (bool, []float64, error) {
	margins := make([]float64, 0, len(tmpl.Conditions))
	for _, cond := range tmpl.Conditions {
		steps, err := compilePath(cond.Field)
		if err != nil {
			return false, nil, err
		}
		raw, ok := resolvePath(result, steps)
		if !ok {
			return false, nil, nil
		}
		value, ok := asFloat(raw)
		if !ok {
			return false, nil, nil
		}

		pass, margin := evaluateCondition(cond, value)
		if !pass {
			return false, nil, nil
		}
		if !math.IsNaN(margin) {
			margins = append(margins, margin)
		}
	}
	return true, margins, nil
}

// evaluateCondition returns whether the condition holds plus its relative
// margin. Exact-match operators have no meaningful margin and return NaN.
func evaluateCondition(cond Condition, value float64) (bool, float64) {
	switch cond.Operator {
	case OpEq:
		return math.Abs(value-cond.Value) < 1e-9, math.NaN()
	case OpGte:
		return value >= cond.Value, relativeMargin(value-cond.Value, cond.Value)
	case OpGt:
		return value > cond.Value, relativeMargin(value-cond.Value, cond.Value)
	case OpLte:
		return value <= cond.Value, relativeMargin(cond.Value-value, cond.Value)
	case OpLt:
		return value < cond.Value, relativeMargin(cond.Value-value, cond.Value)
	case OpBetween:
		if len(cond.Values) != 2 {
			return false, math.NaN()
		}
		lo, hi := cond.Values[0], cond.Values[1]
		if value < lo || value > hi {
			return false, math.NaN()
		}
		span := hi - lo
		if span <= 0 {
			return true, math.NaN()
		}
		nearest := math.Min(value-lo, hi-value)
		return true, nearest / span
	case OpIn:
		for _, v := range cond.Values {
			if math.Abs(value-v) < 1e-9 {
				return true, math.NaN()
			}
		}
		return false, math.NaN()
	default:
		return false, math.NaN()
	}
}

// relativeMargin scales a cleared distance by the threshold magnitude.
func relativeMargin(distance, threshold float64) float64 {
	scale := math.Abs(threshold)
	if scale < 1 {
		scale = 1
	}
	return distance / scale
}

// confidence maps condition margins to a tier: HIGH when every margin
// clears the configured high fraction, MEDIUM when any condition sits near
// its boundary, LOW otherwise.
func (m *Matcher) confidence(margins []float64) Confidence {
	if len(margins) == 0 {
		return ConfidenceHigh
	}
	allHigh := true
	anyNear := false
	for _, margin := range margins {
		if margin < m.cfg.ConfidenceHighMargin {
			allHigh = false
		}
		if margin < m.cfg.ConfidenceLowMargin {
			anyNear = true
		}
	}
	switch {
	case allHigh:
		return ConfidenceHigh
	case anyNear:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func (m *Matcher) variablesResolvable(tmpl InsightTemplate, resolve func(string) (interface{}, bool)) bool {
	for _, name := range tmpl.RequiredVariables {
		if _, ok := resolve(name); !ok {
			return false
		}
	}
	return true
}

// deriveVariables exposes the friendly variable names templates reference
// in addition to raw dot-paths.
func deriveVariables(result *aggregates.AnalysisResult) map[string]interface{} {
	vars := map[string]interface{}{
		"nodeCount":             result.NodeCount,
		"edgeCount":             result.EdgeCount,
		"communityCount":        len(result.Communities),
		"bridgeCount":           len(result.BridgeNodes),
		"density":               result.Density,
		"averageDegree":         result.AverageDegree,
		"reciprocity":           result.Reciprocity,
		"reciprocityPercentage": result.Reciprocity * 100,
		"echoChamberScore":      result.EchoChamberScore,
		"networkMaturity":       result.NetworkMaturity,
		"modularity":            result.Modularity,
	}
	if largest := result.LargestCommunity(); largest != nil {
		vars["largestCommunityPercentage"] = largest.Percentage
		vars["largestCommunitySize"] = largest.Size
	}
	if len(result.TopInfluencers) > 0 {
		vars["topInfluencerName"] = result.TopInfluencers[0].DisplayName
	}
	if len(result.BridgeNodes) > 0 {
		vars["topBridgeName"] = result.BridgeNodes[0].DisplayName
	}
	return vars
}
