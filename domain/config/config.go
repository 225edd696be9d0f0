// Package config holds domain-level configuration for business rules and
// algorithm parameters, kept separate from infrastructure configuration.
package config

// DomainConfig carries the tier limits and algorithm parameters the domain
// services consult. All analysis is exact; the limits cap the graph sizes
// the exact algorithms are asked to handle.
type DomainConfig struct {
	// Tier limits
	MaxNodesPerGraph int
	MaxEdgesPerGraph int

	// Influence ranking (power iteration)
	PageRankDamping  float64
	PageRankEpsilon  float64
	PageRankMaxIters int

	// Community detection
	LouvainMaxPasses int

	// Insight confidence margins, as fractions of the condition threshold.
	ConfidenceHighMargin float64
	ConfidenceLowMargin  float64
}

// DefaultDomainConfig returns the standard-tier configuration.
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerGraph:     10000,
		MaxEdgesPerGraph:     100000,
		PageRankDamping:      0.85,
		PageRankEpsilon:      1e-6,
		PageRankMaxIters:     100,
		LouvainMaxPasses:     10,
		ConfidenceHighMargin: 0.25,
		ConfidenceLowMargin:  0.10,
	}
}
