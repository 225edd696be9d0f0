package insights

// DefaultLibrary returns the built-in template library. Deployments can
// replace or extend it with a YAML library file; the matcher treats both
// identically.
func DefaultLibrary() []InsightTemplate {
	return []InsightTemplate{
		{
			ID:       "community-large-dominant",
			Category: CategoryCommunity,
			Priority: 90,
			Title:    "One community dominates your network",
			Description: "{{largestCommunityPercentage}}% of your connections belong to a single community " +
				"of {{largestCommunitySize|number}} {{largestCommunitySize|plural:account}}. " +
				"Most of what you see likely originates there.",
			Conditions: []Condition{
				{Field: "communities.0.percentage", Operator: OpGte, Value: 40},
				{Field: "nodeCount", Operator: OpGt, Value: 0},
			},
			RequiredVariables: []string{"largestCommunityPercentage", "largestCommunitySize"},
		},
		{
			ID:       "community-fragmented",
			Category: CategoryCommunity,
			Priority: 70,
			Title:    "Your network is fragmented",
			Description: "Your connections split into {{communityCount|number}} distinct " +
				"{{communityCount|plural:community}}, none covering more than " +
				"{{largestCommunityPercentage}}% of the network.",
			Conditions: []Condition{
				{Field: "communities.0.percentage", Operator: OpLt, Value: 25},
				{Field: "nodeCount", Operator: OpGte, Value: 10},
			},
			RequiredVariables: []string{"communityCount", "largestCommunityPercentage"},
		},
		{
			ID:       "network-echo-chamber",
			Category: CategoryNetwork,
			Priority: 85,
			Title:    "Strong echo-chamber tendency",
			Description: "On average {{echoChamberScore}}% of each connection's interactions stay " +
				"inside its own community. Cross-community exposure is limited.",
			Conditions: []Condition{
				{Field: "echoChamberScore", Operator: OpGte, Value: 75},
			},
			RequiredVariables: []string{"echoChamberScore"},
		},
		{
			ID:       "network-dense",
			Category: CategoryNetwork,
			Priority: 60,
			Title:    "Tightly knit network",
			Description: "With {{edgeCount|number}} ties across {{nodeCount|number}} " +
				"{{nodeCount|plural:account}}, your network is denser than most: many of your " +
				"connections also know each other.",
			Conditions: []Condition{
				{Field: "density", Operator: OpGte, Value: 0.1},
				{Field: "nodeCount", Operator: OpGte, Value: 5},
			},
		},
		{
			ID:       "network-sparse",
			Category: CategoryNetwork,
			Priority: 40,
			Title:    "Loosely connected network",
			Description: "Your {{nodeCount|number}} connections share only {{edgeCount|number}} ties " +
				"between them. Your network behaves more like separate circles than one group.",
			Conditions: []Condition{
				{Field: "density", Operator: OpLt, Value: 0.02},
				{Field: "nodeCount", Operator: OpGte, Value: 20},
			},
		},
		{
			ID:       "engagement-reciprocal",
			Category: CategoryEngagement,
			Priority: 65,
			Title:    "Mutual relationships dominate",
			Description: "{{reciprocityPercentage}}% of your ties go both ways. Your network is built on " +
				"mutual relationships rather than one-way follows.",
			Conditions: []Condition{
				{Field: "reciprocity", Operator: OpGte, Value: 0.6},
				{Field: "edgeCount", Operator: OpGt, Value: 0},
			},
		},
		{
			ID:       "engagement-one-way",
			Category: CategoryEngagement,
			Priority: 55,
			Title:    "Mostly one-way connections",
			Description: "Only {{reciprocityPercentage}}% of your ties are mutual. You follow, or are " +
				"followed, far more than you connect both ways.",
			Conditions: []Condition{
				{Field: "reciprocity", Operator: OpLt, Value: 0.3},
				{Field: "edgeCount", Operator: OpGte, Value: 10},
			},
		},
		{
			ID:       "engagement-bridge-person",
			Category: CategoryEngagement,
			Priority: 80,
			Title:    "{{topBridgeName}} connects your circles",
			Description: "{{topBridgeName}} sits on more shortest paths between your communities than " +
				"anyone else. Losing that tie would split your network apart.",
			Conditions: []Condition{
				{Field: "bridgeNodes.0.score", Operator: OpGt, Value: 0.1},
			},
			RequiredVariables: []string{"topBridgeName"},
		},
		{
			ID:       "growth-maturity-high",
			Category: CategoryGrowth,
			Priority: 50,
			Title:    "A mature, settled network",
			Description: "Your network maturity score is {{networkMaturity}} out of 100: balanced " +
				"communities and strong ties suggest an established circle.",
			Conditions: []Condition{
				{Field: "networkMaturity", Operator: OpGte, Value: 70},
			},
		},
		{
			ID:       "growth-maturity-low",
			Category: CategoryGrowth,
			Priority: 45,
			Title:    "A network still taking shape",
			Description: "Your network maturity score is {{networkMaturity}} out of 100. Expect its " +
				"structure to shift as you add connections.",
			Conditions: []Condition{
				{Field: "networkMaturity", Operator: OpLt, Value: 30},
				{Field: "nodeCount", Operator: OpGt, Value: 0},
			},
		},
	}
}
